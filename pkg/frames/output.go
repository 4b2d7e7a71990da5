package frames

import (
	"image"
)

// Frame is one extracted image with its position in the stream.
//
// Data is tightly packed with no row padding: row y starts at
// y*Width*Format.BytesPerPixel().
type Frame struct {
	// Number is the absolute frame number in the video track.
	Number int64
	Width  int
	Height int
	Format PixelFormat
	Data   []byte

	// PTS is the raw presentation timestamp in the stream's time base;
	// TimeSeconds is the same instant in seconds.
	PTS         int64
	TimeSeconds float64
	Keyframe    bool
	// PictureType is "I", "P" or "B" when the decoder reports it.
	PictureType string
}

// Image wraps the frame buffer as a stdlib image. RGBA8 and Gray8 share
// the underlying buffer; RGB8 is expanded into a fresh RGBA image.
func (f *Frame) Image() image.Image {
	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Format {
	case RGBA8:
		return &image.RGBA{Pix: f.Data, Stride: f.Width * 4, Rect: rect}
	case Gray8:
		return &image.Gray{Pix: f.Data, Stride: f.Width, Rect: rect}
	default:
		img := image.NewRGBA(rect)
		for i := 0; i < f.Width*f.Height; i++ {
			img.Pix[i*4+0] = f.Data[i*3+0]
			img.Pix[i*4+1] = f.Data[i*3+1]
			img.Pix[i*4+2] = f.Data[i*3+2]
			img.Pix[i*4+3] = 0xff
		}
		return img
	}
}
