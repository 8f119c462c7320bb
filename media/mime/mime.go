// Package mime classifies discovered files by extension into a media
// kind and MIME type, and lists the MIME types this server can serve
// for ConnectionManager's GetProtocolInfo.
package mime

import (
	"path/filepath"
	"strings"

	"github.com/udlna/udlna/media"
)

// SupportedMIMEs lists every MIME type this server can serve. Used by
// ConnectionManager GetProtocolInfo. Subtitle MIME types are
// intentionally excluded — a DLNA ConnectionManager only advertises
// media it streams, not sidecar subtitle tracks.
var SupportedMIMEs = []string{
	// Video
	"video/mp4",
	"video/x-matroska",
	"video/x-msvideo",
	"video/quicktime",
	"video/MP2T",
	"video/mpeg",
	"video/x-ms-wmv",
	"video/x-flv",
	"video/ogg",
	"video/webm",
	"video/3gpp",
	// Audio
	"audio/mpeg",
	"audio/flac",
	"audio/wav",
	"audio/mp4",
	"audio/aac",
	"audio/ogg",
	"audio/x-ms-wma",
	"audio/aiff",
	// Image
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

var extensions = map[string]struct {
	kind media.Kind
	mime string
}{
	// Video
	"mp4":  {media.KindVideo, "video/mp4"},
	"m4v":  {media.KindVideo, "video/mp4"},
	"mkv":  {media.KindVideo, "video/x-matroska"},
	"avi":  {media.KindVideo, "video/x-msvideo"},
	"mov":  {media.KindVideo, "video/quicktime"},
	"ts":   {media.KindVideo, "video/MP2T"},
	"m2ts": {media.KindVideo, "video/MP2T"},
	"mts":  {media.KindVideo, "video/MP2T"},
	"mpg":  {media.KindVideo, "video/mpeg"},
	"mpeg": {media.KindVideo, "video/mpeg"},
	"wmv":  {media.KindVideo, "video/x-ms-wmv"},
	"flv":  {media.KindVideo, "video/x-flv"},
	"ogv":  {media.KindVideo, "video/ogg"},
	"webm": {media.KindVideo, "video/webm"},
	"3gp":  {media.KindVideo, "video/3gpp"},

	// Audio
	"mp3":  {media.KindAudio, "audio/mpeg"},
	"flac": {media.KindAudio, "audio/flac"},
	"wav":  {media.KindAudio, "audio/wav"},
	"m4a":  {media.KindAudio, "audio/mp4"},
	"aac":  {media.KindAudio, "audio/aac"},
	"ogg":  {media.KindAudio, "audio/ogg"},
	"oga":  {media.KindAudio, "audio/ogg"},
	"wma":  {media.KindAudio, "audio/x-ms-wma"},
	"opus": {media.KindAudio, "audio/ogg"},
	"aiff": {media.KindAudio, "audio/aiff"},
	"aif":  {media.KindAudio, "audio/aiff"},

	// Image
	"jpg":  {media.KindImage, "image/jpeg"},
	"jpeg": {media.KindImage, "image/jpeg"},
	"png":  {media.KindImage, "image/png"},
	"gif":  {media.KindImage, "image/gif"},
	"webp": {media.KindImage, "image/webp"},
	"bmp":  {media.KindImage, "image/bmp"},
	"tiff": {media.KindImage, "image/tiff"},
	"tif":  {media.KindImage, "image/tiff"},

	// Subtitle — recognized, classified, but excluded from the served
	// library by the scanner (not filtered here).
	"srt": {media.KindSubtitle, "text/srt"},
	"vtt": {media.KindSubtitle, "text/vtt"},
}

// Classify maps a file path's extension (case-insensitive) to a
// (Kind, MIME) pair. Returns ok=false for unrecognized extensions —
// the caller should silently skip the file, not log an error.
func Classify(path string) (kind media.Kind, mimeType string, ok bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", "", false
	}
	entry, found := extensions[ext]
	if !found {
		return "", "", false
	}
	return entry.kind, entry.mime, true
}
