package metadata

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"

	_ "github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/udlna/udlna/media"
)

// extractImage reads only the image header (via image.DecodeConfig)
// to obtain pixel dimensions — it never decodes pixel data, matching
// the "header-only" extraction discipline used for every media kind.
func extractImage(path string, mimeType string) (media.Meta, bool) {
	f, err := os.Open(path)
	if err != nil {
		return media.Meta{}, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return media.Meta{}, false
	}

	res := strconv.Itoa(cfg.Width) + "x" + strconv.Itoa(cfg.Height)
	return media.Meta{Resolution: &res}, true
}
