package dlna

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"

	"github.com/google/uuid"

	"github.com/udlna/udlna/log"
)

const (
	ssdpAddr         = "239.255.255.250"
	ssdpPort         = 1900
	ssdpv6Addr       = "ff02::c"
	cacheMaxAge      = 900
	readvertiseEvery = 900 * time.Second
	burstCount       = 3
	burstPause       = 150 * time.Millisecond
	shutdownDeadline = 1 * time.Second
)

// ssdpInterface is one non-loopback IPv4 interface discovered at
// startup, kept around for subnet-match LOCATION selection.
type ssdpInterface struct {
	name string
	ip   net.IP
	mask net.IPMask
}

// advertisement is one (NT, USN) pair from the five-entry set the
// engine advertises for a given device UUID.
type advertisement struct {
	nt  string
	usn string
}

func advertisements(deviceUUID uuid.UUID) []advertisement {
	id := "uuid:" + deviceUUID.String()
	return []advertisement{
		{nt: id, usn: id},
		{nt: "upnp:rootdevice", usn: id + "::upnp:rootdevice"},
		{nt: deviceType, usn: id + "::" + deviceType},
		{nt: contentDirectoryType, usn: id + "::" + contentDirectoryType},
		{nt: connectionManagerType, usn: id + "::" + connectionManagerType},
	}
}

// ssdpEngine owns the SSDP multicast sockets and advertisement
// lifecycle, independent of the HTTP stack at runtime.
type ssdpEngine struct {
	deviceUUID uuid.UUID
	httpPort   int
	serverName string

	ifaces []ssdpInterface

	pc    *ipv4.PacketConn // IPv4 multicast receive/send, one socket
	conn  *net.UDPConn
	conn6 *net.UDPConn // best-effort IPv6 listener, nil if unavailable

	done chan struct{}
	wg   sync.WaitGroup
}

func newSSDPEngine(deviceUUID uuid.UUID, httpPort int, serverName string) *ssdpEngine {
	return &ssdpEngine{
		deviceUUID: deviceUUID,
		httpPort:   httpPort,
		serverName: serverName,
		done:       make(chan struct{}),
	}
}

// reusePortControl sets SO_REUSEADDR (and, where supported, SO_REUSEPORT)
// before bind, so multiple SSDP-aware processes can share the port —
// and so our own IPv4/IPv6 sockets don't collide on some platforms.
func reusePortControl(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// start discovers interfaces, binds the receive sockets, and sends the
// startup advertisement burst. A bind failure (e.g. another UPnP
// daemon holding the port) is the one fatal condition here; a total
// absence of usable interfaces is logged and the engine exits quietly,
// leaving HTTP serving unaffected.
func (e *ssdpEngine) start(ctx context.Context) error {
	ifaces, err := activeIPv4Interfaces()
	if err != nil {
		log.Warn(ctx, "cannot enumerate network interfaces, SSDP disabled", "error", err)
		close(e.done)
		return nil
	}
	if len(ifaces) == 0 {
		log.Warn(ctx, "no non-loopback IPv4 interfaces found, SSDP disabled")
		close(e.done)
		return nil
	}
	e.ifaces = ifaces

	lc := net.ListenConfig{Control: reusePortControl}
	pconn, err := lc.ListenPacket(ctx, "udp4", fmt.Sprintf(":%d", ssdpPort))
	if err != nil {
		return fmt.Errorf("bind SSDP multicast socket: %w", err)
	}
	udpConn := pconn.(*net.UDPConn)
	e.conn = udpConn
	e.pc = ipv4.NewPacketConn(udpConn)

	group := &net.UDPAddr{IP: net.ParseIP(ssdpAddr)}
	joined := 0
	for _, iface := range e.ifaces {
		netIface, err := net.InterfaceByName(iface.name)
		if err != nil {
			log.Debug(ctx, "cannot resolve interface for multicast join", "interface", iface.name, "error", err)
			continue
		}
		if err := e.pc.JoinGroup(netIface, group); err != nil {
			log.Debug(ctx, "cannot join multicast group on interface", "interface", iface.name, "error", err)
			continue
		}
		joined++
	}
	if joined == 0 {
		log.Warn(ctx, "could not join SSDP multicast group on any interface")
	}

	e.startIPv6Listener(ctx)

	e.wg.Add(1)
	go e.loop(ctx)

	e.burstAlive(ctx)
	return nil
}

// startIPv6Listener binds a best-effort listen-only socket on ff02::c.
// Any failure here is logged at debug and otherwise ignored — IPv6
// advertisement is out of scope, only M-SEARCH listening is attempted.
func (e *ssdpEngine) startIPv6Listener(ctx context.Context) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1)
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	pconn, err := lc.ListenPacket(ctx, "udp6", fmt.Sprintf("[::]:%d", ssdpPort))
	if err != nil {
		log.Debug(ctx, "IPv6 SSDP listener unavailable", "error", err)
		return
	}
	conn6 := pconn.(*net.UDPConn)

	if iface, err := firstMulticastInterface(); err == nil {
		pc6 := ipv6.NewPacketConn(conn6)
		group := &net.UDPAddr{IP: net.ParseIP(ssdpv6Addr)}
		if err := pc6.JoinGroup(iface, group); err != nil {
			log.Debug(ctx, "IPv6 multicast join failed", "interface", iface.Name, "error", err)
		}
	}
	e.conn6 = conn6
}

// firstMulticastInterface returns the first interface flagged for
// multicast, used as a best-effort IPv6 group-join target.
func firstMulticastInterface() (*net.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		if ifaces[i].Flags&net.FlagMulticast != 0 && ifaces[i].Flags&net.FlagUp != 0 {
			return &ifaces[i], nil
		}
	}
	return nil, fmt.Errorf("no multicast-capable interface")
}

// loop runs the 900s re-advertisement ticker and waits for shutdown.
// IPv4 and (if bound) IPv6 receive happen on their own goroutines,
// each a task that suspends only at its own socket read.
func (e *ssdpEngine) loop(ctx context.Context) {
	defer e.wg.Done()

	e.wg.Add(1)
	go e.receiveLoop(ctx, e.conn)
	if e.conn6 != nil {
		e.wg.Add(1)
		go e.receiveLoop(ctx, e.conn6)
	}

	ticker := time.NewTicker(readvertiseEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.sendByeBye(context.Background())
			close(e.done)
			return
		case <-ticker.C:
			e.burstAlive(ctx)
		}
	}
}

// receiveLoop reads datagrams off conn until ctx is cancelled. A short
// read deadline lets it notice cancellation promptly without a busy
// spin between reads.
func (e *ssdpEngine) receiveLoop(ctx context.Context, conn *net.UDPConn) {
	defer e.wg.Done()
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			continue
		}
		e.handlePacket(ctx, buf[:n], addr)
	}
}

// handlePacket parses a datagram as an M-SEARCH request and, if valid,
// dispatches responses.
func (e *ssdpEngine) handlePacket(ctx context.Context, data []byte, from *net.UDPAddr) {
	msg := string(data)
	if !strings.HasPrefix(msg, "M-SEARCH * HTTP/1.1") {
		return
	}
	man := header(msg, "MAN")
	if !strings.Contains(man, "ssdp:discover") {
		return
	}
	st := header(msg, "ST")
	if st == "" {
		return
	}
	ssdpMessagesReceived.WithLabelValues("m-search").Inc()

	for _, ad := range advertisements(e.deviceUUID) {
		if st == "ssdp:all" || st == ad.nt {
			e.sendSearchResponse(ctx, ad, from)
		}
	}
}

func header(msg, name string) string {
	prefix := strings.ToUpper(name) + ":"
	for _, line := range strings.Split(msg, "\r\n") {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), prefix) {
			return strings.TrimSpace(line[len(prefix):])
		}
	}
	return ""
}

// locationFor picks the interface whose subnet contains from, falling
// back to the first interface — the documented known limitation for
// hosts with overlapping subnets or VPN interfaces.
func (e *ssdpEngine) locationFor(from net.IP) string {
	ip := e.ifaces[0].ip
	for _, iface := range e.ifaces {
		network := &net.IPNet{IP: iface.ip.Mask(iface.mask), Mask: iface.mask}
		if network.Contains(from) {
			ip = iface.ip
			break
		}
	}
	return fmt.Sprintf("http://%s:%d/device.xml", ip.String(), e.httpPort)
}

func (e *ssdpEngine) serverString() string {
	return "Linux UPnP/1.0 " + e.serverName + " udlna/1.0"
}

func (e *ssdpEngine) sendSearchResponse(ctx context.Context, ad advertisement, to *net.UDPAddr) {
	location := e.locationFor(to.IP)
	msg := fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"CACHE-CONTROL: max-age=%d\r\n"+
		"EXT:\r\n"+
		"LOCATION: %s\r\n"+
		"SERVER: %s\r\n"+
		"ST: %s\r\n"+
		"USN: %s\r\n"+
		"Content-Length: 0\r\n"+
		"\r\n",
		cacheMaxAge, location, e.serverString(), ad.nt, ad.usn)

	if _, err := e.conn.WriteToUDP([]byte(msg), to); err != nil {
		log.Debug(ctx, "M-SEARCH response send failed", "error", err)
		return
	}
	ssdpMessagesSent.WithLabelValues("search-response").Inc()
}

// burstAlive sends the five-message NOTIFY alive set, per interface,
// three times with a 150ms pause between bursts. All sends of burst i
// complete before burst i+1 begins.
func (e *ssdpEngine) burstAlive(ctx context.Context) {
	for i := 0; i < burstCount; i++ {
		for _, iface := range e.ifaces {
			if netIface, err := net.InterfaceByName(iface.name); err == nil {
				_ = e.pc.SetMulticastInterface(netIface)
			}
			location := fmt.Sprintf("http://%s:%d/device.xml", iface.ip.String(), e.httpPort)
			for _, ad := range advertisements(e.deviceUUID) {
				e.notify(ctx, ad, "ssdp:alive", location)
			}
		}
		if i < burstCount-1 {
			time.Sleep(burstPause)
		}
	}
}

// sendByeBye sends a single byebye per (NT, USN) per interface.
func (e *ssdpEngine) sendByeBye(ctx context.Context) {
	for _, iface := range e.ifaces {
		if netIface, err := net.InterfaceByName(iface.name); err == nil {
			_ = e.pc.SetMulticastInterface(netIface)
		}
		for _, ad := range advertisements(e.deviceUUID) {
			e.notify(ctx, ad, "ssdp:byebye", "")
		}
	}
}

func (e *ssdpEngine) notify(ctx context.Context, ad advertisement, nts, location string) {
	var msg string
	if nts == "ssdp:byebye" {
		msg = fmt.Sprintf("NOTIFY * HTTP/1.1\r\n"+
			"HOST: %s:%d\r\n"+
			"NT: %s\r\n"+
			"NTS: %s\r\n"+
			"USN: %s\r\n"+
			"\r\n",
			ssdpAddr, ssdpPort, ad.nt, nts, ad.usn)
	} else {
		msg = fmt.Sprintf("NOTIFY * HTTP/1.1\r\n"+
			"HOST: %s:%d\r\n"+
			"CACHE-CONTROL: max-age=%d\r\n"+
			"LOCATION: %s\r\n"+
			"NT: %s\r\n"+
			"NTS: %s\r\n"+
			"SERVER: %s\r\n"+
			"USN: %s\r\n"+
			"\r\n",
			ssdpAddr, ssdpPort, cacheMaxAge, location, ad.nt, nts, e.serverString(), ad.usn)
	}

	dest := &net.UDPAddr{IP: net.ParseIP(ssdpAddr), Port: ssdpPort}
	if _, err := e.conn.WriteToUDP([]byte(msg), dest); err != nil {
		log.Debug(ctx, "NOTIFY send failed", "nts", nts, "error", err)
		return
	}
	ssdpMessagesSent.WithLabelValues(nts).Inc()
}

// waitShutdown blocks until the loop has sent byebye and every
// receive goroutine has exited, or shutdownDeadline elapses.
func (e *ssdpEngine) waitShutdown() {
	deadline := time.Now().Add(shutdownDeadline)
	select {
	case <-e.done:
	case <-time.After(time.Until(deadline)):
	}

	allDone := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(allDone)
	}()
	select {
	case <-allDone:
	case <-time.After(time.Until(deadline)):
	}

	if e.conn != nil {
		_ = e.conn.Close()
	}
	if e.conn6 != nil {
		_ = e.conn6.Close()
	}
}
