package converter

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// RotateImage rotates an image by a right angle (0, 90, 180 or 270 degrees
// counter-clockwise) and returns it re-encoded as PNG.
func RotateImage(data []byte, angle int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}

	switch angle {
	case 0:
	case 90:
		img = imaging.Rotate90(img)
	case 180:
		img = imaging.Rotate180(img)
	case 270:
		img = imaging.Rotate270(img)
	default:
		return nil, fmt.Errorf("unsupported rotation angle %d, must be 0, 90, 180 or 270", angle)
	}

	return encodePNG(img)
}

// CropImage removes the given pixel margins from each side of the image and
// returns it re-encoded as PNG. Margins are clamped to the image bounds; a
// crop that would leave no pixels returns the image uncropped.
func CropImage(data []byte, left, top, right, bottom int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode image: %w", err)
	}

	// image.Rect canonicalizes swapped corners, which would turn an empty
	// crop into a partial one. Compare the edges before building the Rect.
	bounds := img.Bounds()
	x0 := bounds.Min.X + max(0, left)
	y0 := bounds.Min.Y + max(0, top)
	x1 := bounds.Max.X - max(0, right)
	y1 := bounds.Max.Y - max(0, bottom)
	if x0 < x1 && y0 < y1 {
		img = imaging.Crop(img, image.Rect(x0, y0, x1, y1))
	}

	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("could not encode image: %w", err)
	}
	return buf.Bytes(), nil
}
