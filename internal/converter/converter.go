// Package converter implements the image-to-PDF conversion pipeline:
// validation, preprocessing, page assembly, metadata/encryption and
// persistence of the finished document.
package converter

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoImages is returned when a conversion is requested without any input
// images.
var ErrNoImages = errors.New("no images provided")

// ErrInvalidImage is returned when an input image fails validation. The
// wrapping error names the offending file and the reason.
var ErrInvalidImage = errors.New("invalid image")

// ImageFile is a single uploaded image: raw bytes plus the declared
// filename. It lives only for the duration of one conversion.
type ImageFile struct {
	Data     []byte
	Filename string
}

// Converter runs the conversion pipeline. Construct one with New and share
// it freely: each invocation operates on its own buffers only.
type Converter struct {
	cfg *Config
}

// New creates a Converter with the given configuration. A nil cfg selects
// the defaults.
func New(cfg *Config) *Converter {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	return &Converter{cfg: cfg}
}

// ConvertSingle converts one image into a one-page PDF. The returned status
// message is "Success" on the happy path. Validation failures are reported
// as errors wrapping ErrInvalidImage with the filename and reason.
func (c *Converter) ConvertSingle(data []byte, filename string, meta Metadata, resize, compression bool) ([]byte, string, error) {
	if ok, reason := c.ValidateImage(data, filename); !ok {
		return nil, "", fmt.Errorf("%w: %s: %s", ErrInvalidImage, filename, reason)
	}

	processed, err := c.PreprocessImage(data, PreprocessOptions{Resize: resize, BestCompression: compression})
	if err != nil {
		return nil, "", fmt.Errorf("could not process %s: %w", filename, err)
	}

	pdf, err := assemblePDF([][]byte{processed})
	if err != nil {
		return nil, "", err
	}

	if !meta.IsZero() {
		pdf = applyMetadata(pdf, meta)
	}

	slog.Debug("Converted single image", "filename", filename, "pdfSize", len(pdf))
	return pdf, "Success", nil
}

// ConvertMultiple converts a batch of images into one multi-page PDF, one
// image per page, pages in input order. The batch is all-or-nothing: the
// first image that fails validation or preprocessing aborts the whole
// conversion and no partial PDF is produced.
func (c *Converter) ConvertMultiple(files []ImageFile, meta Metadata, resize, compression bool) ([]byte, string, error) {
	if len(files) == 0 {
		return nil, "", ErrNoImages
	}

	for _, f := range files {
		if ok, reason := c.ValidateImage(f.Data, f.Filename); !ok {
			return nil, "", fmt.Errorf("%w: %s: %s", ErrInvalidImage, f.Filename, reason)
		}
	}

	// Sequential on purpose: page order must match input order.
	processed := make([][]byte, 0, len(files))
	for _, f := range files {
		p, err := c.PreprocessImage(f.Data, PreprocessOptions{Resize: resize, BestCompression: compression})
		if err != nil {
			return nil, "", fmt.Errorf("could not process %s: %w", f.Filename, err)
		}
		processed = append(processed, p)
	}

	pdf, err := assemblePDF(processed)
	if err != nil {
		return nil, "", err
	}

	if !meta.IsZero() {
		pdf = applyMetadata(pdf, meta)
	}

	slog.Debug("Converted image batch", "numImages", len(files), "pdfSize", len(pdf))
	return pdf, "Success", nil
}
