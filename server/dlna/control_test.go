package dlna

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCDS(t *testing.T, r *Router, action, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cds/control", strings.NewReader(body))
	req.Header.Set("SOAPAction", `"urn:schemas-upnp-org:service:ContentDirectory:1#`+action+`"`)
	rec := httptest.NewRecorder()
	r.handleCDSControl(rec, req)
	return rec
}

func postCMS(t *testing.T, r *Router, action, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/cms/control", strings.NewReader(body))
	req.Header.Set("SOAPAction", `"urn:schemas-upnp-org:service:ConnectionManager:1#`+action+`"`)
	rec := httptest.NewRecorder()
	r.handleCMSControl(rec, req)
	return rec
}

func TestCDSUnknownActionFaultsWith402(t *testing.T) {
	r := newTestRouter()
	rec := postCDS(t, r, "DoesNotExist", `<DoesNotExist></DoesNotExist>`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "<errorCode>402</errorCode>")
}

func TestCMSUnknownActionFaultsWith401(t *testing.T) {
	r := newTestRouter()
	rec := postCMS(t, r, "DoesNotExist", `<DoesNotExist></DoesNotExist>`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "<errorCode>401</errorCode>")
	assert.Contains(t, rec.Body.String(), "Invalid Action")
}

func TestCDSGetSystemUpdateIDSucceeds(t *testing.T) {
	r := newTestRouter()
	rec := postCDS(t, r, "GetSystemUpdateID", `<GetSystemUpdateID></GetSystemUpdateID>`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<Id>1</Id>")
	assert.Contains(t, rec.Body.String(), "GetSystemUpdateIDResponse")
}

func TestCMSGetProtocolInfoSucceeds(t *testing.T) {
	r := newTestRouter()
	rec := postCMS(t, r, "GetProtocolInfo", `<GetProtocolInfo></GetProtocolInfo>`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GetProtocolInfoResponse")
	assert.Contains(t, rec.Body.String(), "http-get:*:video/mp4:*")
}

func TestActionFromRequestFallsBackToBodyWhenHeaderAbsent(t *testing.T) {
	body := []byte(`<u:Browse xmlns:u="urn:schemas-upnp-org:service:ContentDirectory:1"></u:Browse>`)
	req := httptest.NewRequest(http.MethodPost, "/cds/control", strings.NewReader(string(body)))
	action := actionFromRequest(req, body)
	assert.Equal(t, "Browse", action)
}
