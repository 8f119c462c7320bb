package dlna

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udlna/udlna/media/mime"
)

func TestGetProtocolInfoListsEverySupportedMIME(t *testing.T) {
	resp := handleGetProtocolInfo()
	for _, m := range mime.SupportedMIMEs {
		assert.Contains(t, resp.Source, "http-get:*:"+m+":*")
	}
	assert.Empty(t, resp.Sink)
	assert.Equal(t, len(mime.SupportedMIMEs), strings.Count(resp.Source, "http-get:*:"))
}

func TestGetCurrentConnectionIDsReturnsZero(t *testing.T) {
	resp := handleGetCurrentConnectionIDs()
	assert.Equal(t, "0", resp.ConnectionIDs)
}

func TestGetCurrentConnectionInfoDefaults(t *testing.T) {
	resp := handleGetCurrentConnectionInfo()
	assert.Equal(t, -1, resp.RcsID)
	assert.Equal(t, -1, resp.AVTransportID)
	assert.Equal(t, -1, resp.PeerConnectionID)
	assert.Equal(t, "Output", resp.Direction)
	assert.Equal(t, "OK", resp.Status)
}
