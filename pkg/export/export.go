// Package export renders extracted media into shareable artifacts:
// single thumbnails, contact-sheet grids, animated GIFs, and waveform
// images. It builds on pkg/frames and pkg/audio for the decoding and on
// gg / x/image for the 2D work.
package export

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/unbundle/pkg/media"
)

const jpegQuality = 90

// SaveImage writes img to path, picking the codec from the file
// extension. ".jpg"/".jpeg" encode JPEG at quality 90, ".png" (or no
// extension) encodes PNG.
func SaveImage(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: jpegQuality})
	case ".png", "":
		err = png.Encode(file, img)
	default:
		return fmt.Errorf("%w: unsupported image extension %q", media.ErrInvalidArgument, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	return nil
}
