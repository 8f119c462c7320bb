package metadata

import (
	"os"
	"strconv"

	"github.com/dhowden/tag"
	"github.com/udlna/udlna/media"
)

// extractAudio derives duration and bitrate via ffprobe. The file is
// also read with dhowden/tag, and ffprobe runs either way; the file is
// rejected only when both dhowden/tag and ffprobe fail on it.
func extractAudio(path string, mimeType string) (media.Meta, bool) {
	f, err := os.Open(path)
	if err != nil {
		return media.Meta{}, false
	}
	_, tagErr := tag.ReadFrom(f)
	f.Close()

	info, probeErr := runFFProbe(path)
	if tagErr != nil && probeErr != nil {
		return media.Meta{}, false
	}

	var meta media.Meta
	if info != nil {
		if d, ok := durationFromFormat(info); ok {
			meta.Duration = durationPtr(d)
		}
		if br, ok := bitrateFromFormat(info); ok {
			meta.Bitrate = &br
		}
	}
	return meta, true
}

func durationPtr(s string) *string { return &s }

func bitrateFromFormat(info *probeInfo) (uint32, bool) {
	raw, ok := info.Format["bit_rate"]
	if !ok {
		return 0, false
	}
	s, ok := raw.(string)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
