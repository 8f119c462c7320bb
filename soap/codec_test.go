package soap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateFullRange(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, Paginate(items, 0, 0))
	assert.Equal(t, []int{2, 3, 4}, Paginate(items, 2, 0))
	assert.Equal(t, []int{2, 3}, Paginate(items, 2, 2))
	assert.Equal(t, []int{}, Paginate(items, 10, 0))
	assert.Equal(t, []int{4}, Paginate(items, 4, 100))
}

func TestPaginateLengthInvariant(t *testing.T) {
	items := make([]int, 7)
	cases := []struct{ start, count int }{
		{0, 0}, {3, 0}, {3, 2}, {3, 100}, {100, 0}, {100, 5},
	}
	for _, tc := range cases {
		got := Paginate(items, tc.start, tc.count)
		s := tc.start
		if s > len(items) {
			s = len(items)
		}
		remaining := len(items) - s
		want := remaining
		if tc.count != 0 && tc.count < remaining {
			want = tc.count
		}
		assert.Equal(t, want, len(got))
	}
}

func TestBuildProtocolInfoWithAndWithoutProfile(t *testing.T) {
	profile := "MP3"
	withProfile := BuildProtocolInfo("audio/mpeg", &profile)
	assert.Contains(t, withProfile, "DLNA.ORG_PN=MP3")

	withoutProfile := BuildProtocolInfo("video/x-matroska", nil)
	assert.NotContains(t, withoutProfile, "DLNA.ORG_PN")
}

func TestExtractParamLiteralTagMatch(t *testing.T) {
	body := `<ObjectID>0</ObjectID><BrowseFlag>BrowseDirectChildren</BrowseFlag>`
	v, ok := ExtractParam(body, "BrowseFlag")
	require.True(t, ok)
	assert.Equal(t, "BrowseDirectChildren", v)

	_, ok = ExtractParam(body, "SortCriteria")
	assert.False(t, ok)
}

func TestExtractActionFromHeader(t *testing.T) {
	action, ok := ExtractActionFromHeader(`"urn:schemas-upnp-org:service:ContentDirectory:1#Browse"`)
	require.True(t, ok)
	assert.Equal(t, "Browse", action)

	_, ok = ExtractActionFromHeader("")
	assert.False(t, ok)
}

func TestExtractActionFallbackFromBody(t *testing.T) {
	body := []byte(`<s:Body><u:Browse xmlns:u="urn:x"><ObjectID>0</ObjectID></u:Browse></s:Body>`)
	action, ok := ExtractActionFallback(body)
	require.True(t, ok)
	assert.Equal(t, "Browse", action)
}

func TestFaultRendersErrorCode(t *testing.T) {
	body := Fault(NewFault(402, "InvalidArgs"))
	assert.Contains(t, body, "<errorCode>402</errorCode>")
	assert.Contains(t, body, "<errorDescription>InvalidArgs</errorDescription>")
	assert.Contains(t, body, "faultstring>UPnPError<")
}

func TestContainerUUIDNamesAreDistinctStrings(t *testing.T) {
	names := []string{ContainerVideos, ContainerMusic, ContainerPhotos, ContainerAllMedia}
	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n])
		seen[n] = true
	}
}
