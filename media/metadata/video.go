package metadata

import "github.com/udlna/udlna/media"

// extractVideo derives duration, resolution, and bitrate via ffprobe.
// A file ffprobe cannot parse at all yields ok=false; resolution is
// best-effort (some containers ffprobe can open but not identify a
// video stream in, e.g. audio-only files misclassified by extension).
func extractVideo(path string, mimeType string) (media.Meta, bool) {
	info, err := runFFProbe(path)
	if err != nil || info == nil {
		return media.Meta{}, false
	}

	var meta media.Meta
	var any bool
	if d, ok := durationFromFormat(info); ok {
		meta.Duration = &d
		any = true
	}
	if res, br, ok := resolutionAndBitrateFromStreams(info); ok {
		meta.Resolution = &res
		if br > 0 {
			meta.Bitrate = &br
		}
		any = true
	}
	if !any {
		return media.Meta{}, false
	}
	return meta, true
}
