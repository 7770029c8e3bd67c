package converter

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Metadata carries the optional document attributes for a conversion. A
// non-empty Password implies the output is to be encrypted.
type Metadata struct {
	Title    string
	Author   string
	Password string
}

// IsZero reports whether no attribute is set.
func (m Metadata) IsZero() bool {
	return m.Title == "" && m.Author == "" && m.Password == ""
}

// DocumentInfo holds attributes read back from an assembled PDF.
type DocumentInfo struct {
	Title     string
	Author    string
	PageCount int
}

// applyMetadata re-saves the PDF with Title/Author document properties and,
// when a password is set, encrypts it. This step is best-effort: any failure
// is logged as a warning and the unmodified input is returned, so a metadata
// problem never fails a conversion.
func applyMetadata(pdf []byte, meta Metadata) []byte {
	out := pdf

	props := map[string]string{}
	if meta.Title != "" {
		props["Title"] = meta.Title
	}
	if meta.Author != "" {
		props["Author"] = meta.Author
	}
	if len(props) > 0 {
		var buf bytes.Buffer
		if err := api.AddProperties(bytes.NewReader(out), &buf, props, model.NewDefaultConfiguration()); err != nil {
			slog.Warn("Could not add document properties, returning PDF unchanged", "error", err)
			return pdf
		}
		out = buf.Bytes()
	}

	if meta.Password != "" {
		encrypted, err := EncryptPDF(out, meta.Password)
		if err != nil {
			slog.Warn("Could not encrypt PDF, returning PDF unchanged", "error", err)
			return pdf
		}
		out = encrypted
	}

	return out
}

// EncryptPDF re-saves a PDF with owner and user passwords both set to
// password, using 128-bit RC4 (revision 4) encryption. Unlike the metadata
// step this operation fails hard: an explicitly requested encryption must
// not be silently dropped.
func EncryptPDF(pdf []byte, password string) ([]byte, error) {
	conf := model.NewRC4Configuration(password, password, 128)
	var buf bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(pdf), &buf, conf); err != nil {
		return nil, fmt.Errorf("could not encrypt PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadDocumentInfo returns the Title/Author properties and page count of a
// PDF. Encrypted documents require the password that was used to encrypt
// them; pass "" for unencrypted documents.
func ReadDocumentInfo(pdf []byte, password string) (DocumentInfo, error) {
	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	info, err := api.PDFInfo(bytes.NewReader(pdf), "", nil, conf)
	if err != nil {
		return DocumentInfo{}, fmt.Errorf("could not read PDF info: %w", err)
	}
	return DocumentInfo{Title: info.Title, Author: info.Author, PageCount: info.PageCount}, nil
}

// PageCount returns the number of pages in an unencrypted PDF.
func PageCount(pdf []byte) (int, error) {
	return api.PageCount(bytes.NewReader(pdf), model.NewDefaultConfiguration())
}
