package api

import (
	"errors"
	"strings"
)

const maxFilenameLength = 255

const allowedFilenameChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789._- "

// sanitizeFilename strips every character outside a conservative allow-list
// (which excludes path separators) from a caller-supplied filename, so it
// can safely be joined onto the output directory.
func sanitizeFilename(name string) (string, error) {
	if name == "" {
		return "", errors.New("filename cannot be empty")
	}
	if len(name) > maxFilenameLength {
		return "", errors.New("filename too long")
	}

	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(allowedFilenameChars, r) {
			b.WriteRune(r)
		}
	}
	sanitized := b.String()
	if sanitized == "" || strings.Trim(sanitized, ". ") == "" {
		return "", errors.New("filename contains invalid characters")
	}
	return sanitized, nil
}

// ensurePDFExt appends ".pdf" unless the name already carries it.
func ensurePDFExt(name string) string {
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		return name + ".pdf"
	}
	return name
}
