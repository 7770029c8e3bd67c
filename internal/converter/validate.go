package converter

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// ValidateImage checks that data is a well-formed image in a supported
// format and within the configured size limit. It performs a full decode,
// not just a header sniff, so truncated or corrupt files are rejected.
//
// Failures are reported as (false, reason) rather than an error; control
// flow stays with the caller.
func (c *Converter) ValidateImage(data []byte, filename string) (bool, string) {
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return false, fmt.Sprintf("not a decodable image: %v", err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if !c.cfg.SupportedFormats[ext] {
		return false, fmt.Sprintf("Unsupported format: %s", ext)
	}

	if int64(len(data)) > c.cfg.MaxFileSize {
		return false, "File size exceeds maximum allowed"
	}

	return true, "Valid"
}
