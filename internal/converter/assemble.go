package converter

import (
	"bytes"
	"fmt"
	"image"

	"github.com/jung-kurt/gofpdf"
)

// assemblePDF lays out each processed image as a full page sized to the
// image's own pixel dimensions (1px = 1pt), in input order. The inputs are
// the PNG buffers produced by PreprocessImage; no further scaling happens
// here.
func assemblePDF(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	pdf := gofpdf.New("P", "pt", "A4", "") // page size overridden per image

	for i, data := range images {
		imgCfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("could not read dimensions of page %d: %w", i+1, err)
		}
		width := float64(imgCfg.Width)
		height := float64(imgCfg.Height)

		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})

		imageName := fmt.Sprintf("page%d", i)
		pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}, bytes.NewReader(data))
		pdf.ImageOptions(imageName, 0, 0, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		if pdf.Err() {
			return nil, fmt.Errorf("could not add page %d: %w", i+1, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("could not write PDF: %w", err)
	}
	return buf.Bytes(), nil
}
