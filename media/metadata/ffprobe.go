package metadata

import (
	"math"
	"strconv"

	"github.com/anacrolix/ffprobe"
)

// probeInfo is a local alias so callers in this package don't need to
// import anacrolix/ffprobe directly.
type probeInfo = ffprobe.Info

// runFFProbe shells out to the ffprobe binary. Any failure — the
// binary missing, a corrupt container, a timeout — is treated as a
// soft miss: callers fall back to whatever other signal they have, or
// skip the file if that was the only signal.
func runFFProbe(path string) (*probeInfo, error) {
	return ffprobe.Run(path)
}

// durationFromFormat extracts format.duration (seconds, as a decimal
// string in ffprobe's own output) and renders it via
// FormatUPnPDuration.
func durationFromFormat(info *probeInfo) (string, bool) {
	raw, ok := info.Format["duration"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil || seconds < 0 || seconds >= 360000 {
		return "", false
	}
	whole := int(math.Trunc(seconds))
	frac := seconds - float64(whole)
	return FormatUPnPDuration(whole, frac), true
}

// resolutionAndBitrateFromStreams scans the stream list for the first
// video stream and returns its "WxH" resolution and bit rate.
func resolutionAndBitrateFromStreams(info *probeInfo) (resolution string, bitrate uint32, ok bool) {
	for _, stream := range info.Streams {
		codecType, _ := stream["codec_type"].(string)
		if codecType != "video" {
			continue
		}
		w, wOK := numericField(stream["width"])
		h, hOK := numericField(stream["height"])
		if !wOK || !hOK {
			continue
		}
		resolution = strconv.Itoa(int(w)) + "x" + strconv.Itoa(int(h))
		if br, brOK := numericField(stream["bit_rate"]); brOK {
			bitrate = uint32(br)
		}
		return resolution, bitrate, true
	}
	return "", 0, false
}

func numericField(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
