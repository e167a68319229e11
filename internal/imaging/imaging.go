// Package imaging prepares reference photos before they are sent for
// generation: resizing, light enhancement and quality analysis.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxWidth  = 2048
	DefaultMaxHeight = 2048
	DefaultQuality   = 92
	DefaultContrast  = 1.1

	FormatJPEG = "jpeg"
	FormatPNG  = "png"

	bypassMaxSize = 10 << 20

	// MaxPixels bounds the decoded size of an image Optimize will accept.
	MaxPixels = 64 << 20
)

// ErrTooManyPixels is returned for images whose header declares more than
// MaxPixels pixels.
var ErrTooManyPixels = errors.New("image has too many pixels")

var sharpenKernel = [9]float64{
	0, -0.2, 0,
	-0.2, 1.8, -0.2,
	0, -0.2, 0,
}

type Options struct {
	MaxWidth            int
	MaxHeight           int
	Quality             int
	Format              string
	MaintainAspectRatio bool
	EnhanceContrast     bool
	Sharpen             bool
}

func DefaultOptions() Options {
	return Options{
		MaxWidth:            DefaultMaxWidth,
		MaxHeight:           DefaultMaxHeight,
		Quality:             DefaultQuality,
		Format:              FormatJPEG,
		MaintainAspectRatio: true,
		EnhanceContrast:     true,
		Sharpen:             true,
	}
}

type Result struct {
	Data             []byte
	ContentType      string
	OriginalSize     int
	OptimizedSize    int
	CompressionRatio int
	Width            int
	Height           int
}

// Optimize decodes a JPEG, PNG or WebP image, scales it into the configured
// bounds and re-encodes it. The header is checked against MaxPixels before
// any pixel data is decoded.
func Optimize(data []byte, opts Options) (*Result, error) {
	width, height, err := Dimensions(data)
	if err != nil {
		return nil, err
	}
	if int64(width)*int64(height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, width, height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height = fitDimensions(bounds.Dx(), bounds.Dy(), opts)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	if opts.EnhanceContrast {
		adjustContrast(dst, DefaultContrast)
	}
	if opts.Sharpen {
		sharpen(dst)
	}

	var buf bytes.Buffer
	contentType := "image/jpeg"
	switch opts.Format {
	case FormatPNG:
		contentType = "image/png"
		err = png.Encode(&buf, dst)
	case FormatJPEG, "":
		quality := opts.Quality
		if quality <= 0 || quality > 100 {
			quality = DefaultQuality
		}
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality})
	default:
		return nil, fmt.Errorf("unsupported output format %q", opts.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	optimized := buf.Bytes()
	ratio := 0
	if len(data) > 0 {
		ratio = int((1 - float64(len(optimized))/float64(len(data))) * 100)
	}

	return &Result{
		Data:             optimized,
		ContentType:      contentType,
		OriginalSize:     len(data),
		OptimizedSize:    len(optimized),
		CompressionRatio: ratio,
		Width:            width,
		Height:           height,
	}, nil
}

// ShouldBypass reports whether a file is already in a form the model accepts
// as is: a PNG no larger than 10 MiB.
func ShouldBypass(contentType string, size int64) bool {
	return contentType == "image/png" && size <= bypassMaxSize
}

// Dimensions reads the image header without decoding pixels.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read image dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func fitDimensions(width, height int, opts Options) (int, int) {
	maxW, maxH := opts.MaxWidth, opts.MaxHeight
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}

	if !opts.MaintainAspectRatio {
		return min(width, maxW), min(height, maxH)
	}

	aspect := float64(width) / float64(height)
	w, h := float64(width), float64(height)
	if w > float64(maxW) {
		w = float64(maxW)
		h = w / aspect
	}
	if h > float64(maxH) {
		h = float64(maxH)
		w = h * aspect
	}

	// Even dimensions compress better with chroma subsampling.
	outW := int(w) / 2 * 2
	outH := int(h) / 2 * 2
	return max(outW, 1), max(outH, 1)
}

func adjustContrast(img *image.RGBA, contrast float64) {
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := contrast*(float64(img.Pix[i+c])-128) + 128
			img.Pix[i+c] = clamp(v)
		}
	}
}

func sharpen(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 3 || h < 3 {
		return
	}
	src := make([]uint8, len(img.Pix))
	copy(src, img.Pix)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			for c := 0; c < 3; c++ {
				var sum float64
				for ky := -1; ky <= 1; ky++ {
					for kx := -1; kx <= 1; kx++ {
						idx := (y+ky)*img.Stride + (x+kx)*4 + c
						sum += float64(src[idx]) * sharpenKernel[(ky+1)*3+(kx+1)]
					}
				}
				img.Pix[y*img.Stride+x*4+c] = clamp(sum)
			}
		}
	}
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
