// Package imageload decodes encoded images into straight-alpha RGBA pixels
// and applies the CPU-side blaze image flags. Backends use it to implement
// blaze.TextureLoader.
//
// Supported formats: PNG, JPEG, GIF (stdlib) and BMP, TIFF, WebP
// (golang.org/x/image).
package imageload

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/phanxgames/blaze"
)

// GPUFlags are the flags a CPU decoder cannot apply. They are returned in
// Decoded.Pending for the backend to honor or ignore.
const GPUFlags = blaze.ImageMipmaps | blaze.ImageTextureRepeats | blaze.ImageCompressToDXT |
	blaze.ImageDDSLoadDirect | blaze.ImageCoCgY | blaze.ImageTextureRectangle

// Decoded is the result of Decode.
type Decoded struct {
	Image  *image.NRGBA
	Format string // registered format name, e.g. "png"
	// Pending holds the requested flags that still need backend support.
	Pending blaze.ImageFlags
	// Premultiplied is set when ImageMultiplyAlpha was applied.
	Premultiplied bool
}

var errEmpty = errors.New("empty image data")

// Decode decodes data, forces the requested channel layout and applies
// InvertY, MultiplyAlpha, NTSCSafeRGB and PowerOfTwo.
func Decode(data []byte, channels blaze.ImageChannels, flags blaze.ImageFlags) (*Decoded, error) {
	if len(data) == 0 {
		return nil, &blaze.DecodeError{Err: errEmpty}
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &blaze.DecodeError{Err: err}
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &blaze.DecodeError{Err: errEmpty}
	}

	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(img, image.Point{}, src, b, draw.Src, nil)

	forceChannels(img, channels)

	if flags.Has(blaze.ImagePowerOfTwo) && !flags.Has(blaze.ImageTextureRectangle) {
		img = scaleToPowerOfTwo(img)
	}
	if flags.Has(blaze.ImageInvertY) {
		invertY(img)
	}
	if flags.Has(blaze.ImageNTSCSafeRGB) {
		clampNTSC(img)
	}
	premul := flags.Has(blaze.ImageMultiplyAlpha)
	if premul {
		multiplyAlpha(img)
	}

	pending := flags & GPUFlags
	if pending != 0 {
		blaze.Logger().Debug("imageload: flags left to backend", "flags", pending.String())
	}
	return &Decoded{Image: img, Format: format, Pending: pending, Premultiplied: premul}, nil
}

// DecodeConfig reports the dimensions and format of data without decoding
// the pixels.
func DecodeConfig(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, format, &blaze.DecodeError{Err: err}
	}
	return cfg, format, nil
}

func forceChannels(img *image.NRGBA, channels blaze.ImageChannels) {
	switch channels {
	case blaze.ChannelsGrayscale, blaze.ChannelsGrayscaleAlpha:
		keepAlpha := channels == blaze.ChannelsGrayscaleAlpha
		for i := 0; i < len(img.Pix); i += 4 {
			p := img.Pix[i : i+4 : i+4]
			y := luminance(p[0], p[1], p[2])
			p[0], p[1], p[2] = y, y, y
			if !keepAlpha {
				p[3] = 0xff
			}
		}
	case blaze.ChannelsRGB:
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
	}
}

// luminance uses the ITU-R 601 weights, matching color.GrayModel.
func luminance(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}

func invertY(img *image.NRGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bot := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bot)
		copy(bot, row)
	}
}

func multiplyAlpha(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		a := uint32(img.Pix[i+3])
		img.Pix[i] = uint8((uint32(img.Pix[i])*a + 127) / 255)
		img.Pix[i+1] = uint8((uint32(img.Pix[i+1])*a + 127) / 255)
		img.Pix[i+2] = uint8((uint32(img.Pix[i+2])*a + 127) / 255)
	}
}

// NTSC-safe range for 8-bit color channels.
const (
	ntscMin = 16
	ntscMax = 235
)

func clampNTSC(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i++ {
		if i%4 == 3 {
			continue
		}
		img.Pix[i] = min(max(img.Pix[i], ntscMin), ntscMax)
	}
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func scaleToPowerOfTwo(img *image.NRGBA) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pw, ph := NextPowerOfTwo(w), NextPowerOfTwo(h)
	if pw == w && ph == h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	draw.BiLinear.Scale(dst, dst.Rect, img, img.Rect, draw.Src, nil)
	return dst
}
