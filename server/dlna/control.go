package dlna

import (
	"encoding/xml"
	"io"
	"net/http"

	"github.com/udlna/udlna/log"
	"github.com/udlna/udlna/soap"
)

// actionFromRequest resolves the SOAP action name, preferring the
// SOAPAction header and falling back to a body scan when the header
// is absent or malformed.
func actionFromRequest(req *http.Request, body []byte) string {
	if header := req.Header.Get("SOAPAction"); header != "" {
		if action, ok := soap.ExtractActionFromHeader(header); ok {
			return action
		}
	}
	action, _ := soap.ExtractActionFallback(body)
	return action
}

// handleCDSControl dispatches SOAP requests for the ContentDirectory
// service.
func (r *Router) handleCDSControl(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeFault(w, soap.NewFault(402, "InvalidArgs"))
		return
	}

	action := actionFromRequest(req, body)
	log.Debug(req.Context(), "ContentDirectory request", "action", action)

	var inner string
	var fault *soap.UPnPError

	switch action {
	case "Browse":
		inner, fault = r.handleBrowse(body, req.Host)
	case "GetSearchCapabilities":
		inner = "<SearchCaps/>"
	case "GetSortCapabilities":
		inner = "<SortCaps/>"
	case "GetSystemUpdateID":
		inner = "<Id>1</Id>"
	default:
		log.Warn(req.Context(), "unknown ContentDirectory action", "action", action)
		fault = soap.NewFault(402, "InvalidArgs")
	}

	if fault != nil {
		writeFault(w, fault)
		return
	}
	writeResponse(w, action, soap.CDSNamespace, inner)
}

// handleCMSControl dispatches SOAP requests for the ConnectionManager
// service. Unknown actions fault with 401, distinct from the CDS 402.
func (r *Router) handleCMSControl(w http.ResponseWriter, req *http.Request) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		writeFault(w, soap.NewFault(401, "Invalid Action"))
		return
	}

	action := actionFromRequest(req, body)
	log.Debug(req.Context(), "ConnectionManager request", "action", action)

	switch action {
	case "GetProtocolInfo":
		writeMarshaled(w, handleGetProtocolInfo())
	case "GetCurrentConnectionIDs":
		writeMarshaled(w, handleGetCurrentConnectionIDs())
	case "GetCurrentConnectionInfo":
		writeMarshaled(w, handleGetCurrentConnectionInfo())
	default:
		log.Warn(req.Context(), "unknown ConnectionManager action", "action", action)
		writeFault(w, soap.NewFault(401, "Invalid Action"))
	}
}

// writeResponse wraps inner XML in a SOAP envelope for the given
// action and namespace.
func writeResponse(w http.ResponseWriter, action, namespace, inner string) {
	envelope := soap.Envelope(action, inner, namespace)
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Header().Set("Ext", "")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(envelope))
}

// writeMarshaled marshals a response struct (with its own XMLName
// carrying the full action-response namespace) directly into the SOAP
// body — used by ConnectionManager responses, whose shapes are fixed.
func writeMarshaled(w http.ResponseWriter, v interface{}) {
	inner, err := xml.Marshal(v)
	if err != nil {
		writeFault(w, soap.NewFault(501, "Action Failed"))
		return
	}
	envelope := `<?xml version="1.0" encoding="utf-8"?>` +
		`<s:Envelope xmlns:s="` + soap.EnvelopeNamespace + `" s:encodingStyle="` + soap.EncodingStyle + `">` +
		`<s:Body>` + string(inner) + `</s:Body></s:Envelope>`
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.Header().Set("Ext", "")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(envelope))
}

func writeFault(w http.ResponseWriter, fault *soap.UPnPError) {
	w.Header().Set("Content-Type", `text/xml; charset="utf-8"`)
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(soap.Fault(fault)))
}
