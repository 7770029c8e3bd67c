package converter

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"

	_ "image/jpeg" // register JPEG decoder

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// PreprocessOptions controls a single preprocessing pass.
type PreprocessOptions struct {
	// Resize requests downscaling to fit the target envelope. Images that
	// already fit are never upscaled.
	Resize bool
	// TargetWidth and TargetHeight override the configured page envelope
	// when non-zero.
	TargetWidth  int
	TargetHeight int
	// BestCompression selects the strongest PNG compression level for the
	// re-encoded raster. Output is lossless either way.
	BestCompression bool
}

// PreprocessImage normalizes an image for PDF assembly: transparency is
// flattened onto an opaque white background, any non-RGB representation is
// converted to 8-bit RGB, and the result is re-encoded as PNG. With
// opts.Resize the image is scaled down, aspect preserved, so it fits within
// the target envelope.
func (c *Converter) PreprocessImage(data []byte, opts PreprocessOptions) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		// Validation should have caught this; treated defensively anyway.
		return nil, fmt.Errorf("could not decode image: %w", err)
	}

	img = flattenOntoWhite(img)

	if opts.Resize {
		targetW, targetH := opts.TargetWidth, opts.TargetHeight
		if targetW <= 0 {
			targetW = c.cfg.TargetWidth
		}
		if targetH <= 0 {
			targetH = c.cfg.TargetHeight
		}
		img = imaging.Fit(img, targetW, targetH, imaging.Lanczos)
	}

	level := png.DefaultCompression
	if opts.BestCompression {
		level = png.BestCompression
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(level)); err != nil {
		return nil, fmt.Errorf("could not re-encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// flattenOntoWhite composites a transparent image onto an opaque white
// background of identical dimensions, discarding the alpha channel. Opaque
// images are normalized to 8-bit NRGBA, which also folds 16-bit and
// paletted inputs into plain RGB.
func flattenOntoWhite(img image.Image) *image.NRGBA {
	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		bounds := img.Bounds()
		bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
		return imaging.Overlay(bg, img, image.Point{}, 1.0)
	}
	return imaging.Clone(img)
}
