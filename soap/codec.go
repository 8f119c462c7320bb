// Package soap provides the pure-function building blocks shared by
// the ContentDirectory and ConnectionManager SOAP handlers: envelope
// and fault construction, parameter extraction, DIDL-Lite escaping,
// protocolInfo assembly, and pagination.
package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

const (
	EnvelopeNamespace = "http://schemas.xmlsoap.org/soap/envelope/"
	EncodingStyle     = "http://schemas.xmlsoap.org/soap/encoding/"

	CDSNamespace = "urn:schemas-upnp-org:service:ContentDirectory:1"
	CMSNamespace = "urn:schemas-upnp-org:service:ConnectionManager:1"

	// DLNAFlags is the fixed 32-hex-character DLNA.ORG_FLAGS value this
	// server advertises: 8 significant hex digits followed by 24 zero
	// digits of padding. Deviating lengths cause client-side rejection.
	DLNAFlags = "01700000000000000000000000000000"

	ContainerVideos   = "Videos"
	ContainerMusic    = "Music"
	ContainerPhotos   = "Photos"
	ContainerAllMedia = "All Media"
)

// Envelope builds a complete SOAP 1.1 response envelope wrapping inner
// for the given action name and service namespace.
func Envelope(action, inner, namespace string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	fmt.Fprintf(&b, `<s:Envelope xmlns:s=%q s:encodingStyle=%q>`, EnvelopeNamespace, EncodingStyle)
	b.WriteString("<s:Body>")
	fmt.Fprintf(&b, `<u:%sResponse xmlns:u=%q>`, action, namespace)
	b.WriteString(inner)
	fmt.Fprintf(&b, `</u:%sResponse>`, action)
	b.WriteString("</s:Body></s:Envelope>")
	return b.String()
}

// UPnPError is a SOAP fault carrying a UPnP error code/description.
type UPnPError struct {
	Code        int
	Description string
}

func (e *UPnPError) Error() string {
	return fmt.Sprintf("UPnPError %d: %s", e.Code, e.Description)
}

// NewFault constructs a UPnPError.
func NewFault(code int, description string) *UPnPError {
	return &UPnPError{Code: code, Description: description}
}

// Fault renders a complete SOAP fault body (HTTP 500, faultcode
// s:Client, faultstring UPnPError).
func Fault(err *UPnPError) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	fmt.Fprintf(&b, `<s:Envelope xmlns:s=%q s:encodingStyle=%q>`, EnvelopeNamespace, EncodingStyle)
	b.WriteString("<s:Body><s:Fault>")
	b.WriteString("<faultcode>s:Client</faultcode>")
	b.WriteString("<faultstring>UPnPError</faultstring>")
	b.WriteString(`<detail><UPnPError xmlns="urn:schemas-upnp-org:control-1-0">`)
	fmt.Fprintf(&b, "<errorCode>%d</errorCode>", err.Code)
	fmt.Fprintf(&b, "<errorDescription>%s</errorDescription>", EscapeXML(err.Description))
	b.WriteString("</UPnPError></detail>")
	b.WriteString("</s:Fault></s:Body></s:Envelope>")
	return b.String()
}

// ExtractParam does a literal tag-match extraction of <Name>...</Name>
// from a SOAP request body, returning ok=false if absent. This mirrors
// the reference parser's "no real XML parsing of parameters" approach:
// parameters are simple scalars and never contain nested markup.
func ExtractParam(body, name string) (string, bool) {
	tag := regexp.QuoteMeta(name)
	re := regexp.MustCompile(`(?is)<` + tag + `>(.*?)</` + tag + `>`)
	m := re.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractActionFallback scans a SOAP request body for the first
// "<u:ActionName" element opener, used when the SOAPAction header is
// absent or empty.
func ExtractActionFallback(body []byte) (string, bool) {
	idx := bytes.Index(body, []byte("<u:"))
	if idx < 0 {
		return "", false
	}
	rest := body[idx+3:]
	end := bytes.IndexAny(rest, " \t\r\n>")
	if end < 0 {
		return "", false
	}
	return string(rest[:end]), true
}

// ExtractActionFromHeader extracts the action name from a SOAPAction
// header value of the form `"<namespace>#<Action>"`.
func ExtractActionFromHeader(header string) (string, bool) {
	header = strings.Trim(header, `"`)
	parts := strings.SplitN(header, "#", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Paginate applies UPnP Browse pagination semantics: items starting at
// min(start, len(items)), returning requestedCount items or — when
// requestedCount is 0 — every remaining item.
func Paginate[T any](items []T, start, requestedCount int) []T {
	if start < 0 {
		start = 0
	}
	if start > len(items) {
		start = len(items)
	}
	remaining := len(items) - start
	count := remaining
	if requestedCount > 0 && requestedCount < remaining {
		count = requestedCount
	}
	return items[start : start+count]
}

// BuildProtocolInfo assembles the fourth-field protocolInfo string for
// a <res> element. When profile is nil the DLNA.ORG_PN segment is
// omitted entirely — never rendered as a wildcard.
func BuildProtocolInfo(mimeType string, profile *string) string {
	if profile != nil {
		return fmt.Sprintf("http-get:*:%s:DLNA.ORG_PN=%s;DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=%s",
			mimeType, *profile, DLNAFlags)
	}
	return fmt.Sprintf("http-get:*:%s:DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=%s", mimeType, DLNAFlags)
}

// ContentFeatures is the fixed contentFeatures.dlna.org header value
// for /media/{id} responses (distinct from BuildProtocolInfo: it omits
// DLNA.ORG_PN unconditionally, since the header describes the
// transport, not a specific item's profile).
const ContentFeatures = "DLNA.ORG_OP=01;DLNA.ORG_CI=0;DLNA.ORG_FLAGS=" + DLNAFlags

// EscapeXML escapes text for safe embedding in XML element content,
// matching encoding/xml's own escaping rules via xml.EscapeText.
func EscapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
