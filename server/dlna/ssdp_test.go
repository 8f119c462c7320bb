package dlna

import (
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAdvertisementsProducesFiveEntries(t *testing.T) {
	id := uuid.New()
	ads := advertisements(id)
	assert.Len(t, ads, 5)

	usn := "uuid:" + id.String()
	assert.Equal(t, usn, ads[0].nt)
	assert.Equal(t, usn, ads[0].usn)
	assert.Equal(t, "upnp:rootdevice", ads[1].nt)
	assert.Equal(t, usn+"::upnp:rootdevice", ads[1].usn)
	assert.Equal(t, deviceType, ads[2].nt)
	assert.Equal(t, contentDirectoryType, ads[3].nt)
	assert.Equal(t, connectionManagerType, ads[4].nt)
}

func TestHeaderExtractionIsCaseInsensitive(t *testing.T) {
	msg := "M-SEARCH * HTTP/1.1\r\nHOST: 239.255.255.250:1900\r\nman: \"ssdp:discover\"\r\nst: ssdp:all\r\n\r\n"
	assert.Equal(t, `"ssdp:discover"`, header(msg, "MAN"))
	assert.Equal(t, "ssdp:all", header(msg, "ST"))
	assert.Equal(t, "", header(msg, "Missing"))
}

func TestHandlePacketIgnoresNonMSearch(t *testing.T) {
	e := newSSDPEngine(uuid.New(), 8200, "Test")
	e.ifaces = []ssdpInterface{{name: "eth0", ip: net.ParseIP("192.168.1.10").To4(), mask: net.CIDRMask(24, 32)}}
	// No conn bound, so a send attempt would nil-panic — verifying the
	// non-M-SEARCH path returns before ever reaching a send keeps this a
	// pure unit test.
	e.handlePacket(nil, []byte("NOTIFY * HTTP/1.1\r\n\r\n"), &net.UDPAddr{IP: net.ParseIP("192.168.1.20")})
}

func TestHandlePacketIgnoresMSearchWithoutDiscoverMAN(t *testing.T) {
	e := newSSDPEngine(uuid.New(), 8200, "Test")
	e.ifaces = []ssdpInterface{{name: "eth0", ip: net.ParseIP("192.168.1.10").To4(), mask: net.CIDRMask(24, 32)}}
	msg := "M-SEARCH * HTTP/1.1\r\nMAN: \"something-else\"\r\nST: ssdp:all\r\n\r\n"
	e.handlePacket(nil, []byte(msg), &net.UDPAddr{IP: net.ParseIP("192.168.1.20")})
}

func TestLocationForPicksMatchingSubnet(t *testing.T) {
	e := newSSDPEngine(uuid.New(), 8200, "Test")
	e.ifaces = []ssdpInterface{
		{name: "eth0", ip: net.ParseIP("192.168.1.10").To4(), mask: net.CIDRMask(24, 32)},
		{name: "eth1", ip: net.ParseIP("10.0.0.5").To4(), mask: net.CIDRMask(24, 32)},
	}

	loc := e.locationFor(net.ParseIP("10.0.0.99"))
	assert.Equal(t, "http://10.0.0.5:8200/device.xml", loc)
}

func TestLocationForFallsBackToFirstInterface(t *testing.T) {
	e := newSSDPEngine(uuid.New(), 8200, "Test")
	e.ifaces = []ssdpInterface{
		{name: "eth0", ip: net.ParseIP("192.168.1.10").To4(), mask: net.CIDRMask(24, 32)},
	}

	loc := e.locationFor(net.ParseIP("172.16.0.5"))
	assert.Equal(t, "http://192.168.1.10:8200/device.xml", loc)
}

func TestServerStringIncludesServerName(t *testing.T) {
	e := newSSDPEngine(uuid.New(), 8200, "My Server")
	assert.Contains(t, e.serverString(), "My Server")
	assert.Contains(t, e.serverString(), "udlna/1.0")
}
