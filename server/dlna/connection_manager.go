package dlna

import (
	"encoding/xml"
	"strings"

	"github.com/udlna/udlna/media/mime"
)

type getProtocolInfoResponse struct {
	XMLName xml.Name `xml:"urn:schemas-upnp-org:service:ConnectionManager:1 GetProtocolInfoResponse"`
	Source  string   `xml:"Source"`
	Sink    string   `xml:"Sink"`
}

type getCurrentConnectionIDsResponse struct {
	XMLName       xml.Name `xml:"urn:schemas-upnp-org:service:ConnectionManager:1 GetCurrentConnectionIDsResponse"`
	ConnectionIDs string   `xml:"ConnectionIDs"`
}

type getCurrentConnectionInfoResponse struct {
	XMLName               xml.Name `xml:"urn:schemas-upnp-org:service:ConnectionManager:1 GetCurrentConnectionInfoResponse"`
	RcsID                 int      `xml:"RcsID"`
	AVTransportID         int      `xml:"AVTransportID"`
	ProtocolInfo          string   `xml:"ProtocolInfo"`
	PeerConnectionManager string   `xml:"PeerConnectionManager"`
	PeerConnectionID      int      `xml:"PeerConnectionID"`
	Direction             string   `xml:"Direction"`
	Status                string   `xml:"Status"`
}

// handleGetProtocolInfo lists every MIME classification can produce as
// an http-get source entry. We never act as a sink.
func handleGetProtocolInfo() *getProtocolInfoResponse {
	entries := make([]string, 0, len(mime.SupportedMIMEs))
	for _, m := range mime.SupportedMIMEs {
		entries = append(entries, "http-get:*:"+m+":*")
	}
	return &getProtocolInfoResponse{
		Source: strings.Join(entries, ","),
		Sink:   "",
	}
}

func handleGetCurrentConnectionIDs() *getCurrentConnectionIDsResponse {
	return &getCurrentConnectionIDsResponse{ConnectionIDs: "0"}
}

func handleGetCurrentConnectionInfo() *getCurrentConnectionInfoResponse {
	return &getCurrentConnectionInfoResponse{
		RcsID:                 -1,
		AVTransportID:         -1,
		ProtocolInfo:          "",
		PeerConnectionManager: "",
		PeerConnectionID:      -1,
		Direction:             "Output",
		Status:                "OK",
	}
}
