// Package api exposes the conversion pipeline over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"img_to_pdf/internal/converter"

	"github.com/gorilla/mux"
)

const defaultMaxMemory = 32 << 20 // 32 MB for multipart form parsing

const serviceVersion = "1.0.0"

// Handlers bundles the HTTP handlers with their dependencies. Construct
// with NewHandlers; there is no package-level state.
type Handlers struct {
	conv  *converter.Converter
	store *converter.Storage
}

func NewHandlers(conv *converter.Converter, store *converter.Storage) *Handlers {
	return &Handlers{conv: conv, store: store}
}

func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Image to PDF Converter",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"health":           "GET /health",
			"convert_multiple": "POST /convert",
			"convert_single":   "POST /convert-single",
			"rotate":           "POST /transform/rotate",
			"crop":             "POST /transform/crop",
			"download":         "GET /download/{filename}",
			"list_files":       "GET /files",
			"delete":           "DELETE /files/{filename}",
		},
	})
}

func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Version: serviceVersion})
}

// HandleConvert converts a batch of uploaded images. In the default mode
// the batch becomes one combined multi-page PDF; with individual_files=true
// each image becomes its own single-page PDF.
func (h *Handlers) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		slog.Warn("Failed to parse multipart form", "error", err)
		writeJSONError(w, "Failed to parse request data", err.Error(), http.StatusBadRequest)
		return
	}

	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		writeJSONError(w, "No files provided", "Upload one or more images under the 'files' field.", http.StatusBadRequest)
		return
	}

	files := make([]converter.ImageFile, 0, len(uploads))
	for _, fh := range uploads {
		f, err := readUpload(fh)
		if err != nil {
			slog.Error("Failed to read uploaded file", "filename", fh.Filename, "error", err)
			writeJSONError(w, fmt.Sprintf("Failed to read uploaded file: %s", fh.Filename), nil, http.StatusInternalServerError)
			return
		}
		files = append(files, f)
	}

	meta, password, encrypt := metadataFromForm(r)
	resize := parseBoolField(r, "resize", true)
	compression := parseBoolField(r, "compression", true)
	customName := r.FormValue("filename")

	if parseBoolField(r, "individual_files", false) {
		h.convertIndividual(w, files, meta, password, encrypt, resize, compression, customName)
		return
	}

	pdf, _, err := h.conv.ConvertMultiple(files, meta, resize, compression)
	if err != nil {
		h.writeConversionError(w, err)
		return
	}

	if encrypt {
		if pdf, err = converter.EncryptPDF(pdf, passwordOrDefault(password)); err != nil {
			slog.Error("Explicit encryption failed", "error", err)
			writeJSONError(w, "Encryption failed", nil, http.StatusInternalServerError)
			return
		}
	}

	pdfFilename, err := h.outputFilename(customName, "combined")
	if err != nil {
		writeJSONError(w, "Invalid filename", err.Error(), http.StatusBadRequest)
		return
	}

	path, err := h.store.Save(pdf, pdfFilename)
	if err != nil {
		slog.Error("Failed to save PDF", "filename", pdfFilename, "error", err)
		writeJSONError(w, "Failed to save PDF", nil, http.StatusInternalServerError)
		return
	}

	pages := 0
	if !encrypt && meta.Password == "" {
		if n, err := converter.PageCount(pdf); err == nil {
			pages = n
		}
	}

	slog.Info("Converted images to PDF", "numImages", len(files), "filename", pdfFilename, "size", len(pdf))
	writeJSON(w, http.StatusOK, ConversionResponse{
		Success:   true,
		Message:   "Successfully converted images to PDF",
		FilePath:  path,
		FileSize:  len(pdf),
		PageCount: pages,
	})
}

// convertIndividual runs ConvertSingle once per image, producing N separate
// PDFs. The choice between this and a combined document is caller-side; the
// pipeline itself is unchanged.
func (h *Handlers) convertIndividual(w http.ResponseWriter, files []converter.ImageFile, meta converter.Metadata, password string, encrypt, resize, compression bool, customName string) {
	customBase := ""
	if customName != "" {
		base, err := sanitizeFilename(customName)
		if err != nil {
			writeJSONError(w, "Invalid filename", err.Error(), http.StatusBadRequest)
			return
		}
		customBase = strings.TrimSuffix(base, ".pdf")
	}

	paths := make([]string, 0, len(files))
	sizes := make([]int, 0, len(files))

	for i, f := range files {
		pdf, _, err := h.conv.ConvertSingle(f.Data, f.Filename, meta, resize, compression)
		if err != nil {
			h.writeConversionError(w, err)
			return
		}

		if encrypt {
			if pdf, err = converter.EncryptPDF(pdf, passwordOrDefault(password)); err != nil {
				slog.Error("Explicit encryption failed", "filename", f.Filename, "error", err)
				writeJSONError(w, "Encryption failed", nil, http.StatusInternalServerError)
				return
			}
		}

		// The batch index keeps names unique even when uploads share a
		// filename stem or a custom name covers the whole batch.
		var pdfFilename string
		if customBase != "" {
			pdfFilename = fmt.Sprintf("%s_%d.pdf", customBase, i+1)
		} else {
			pdfFilename = fmt.Sprintf("%s_%d_%s.pdf", filenameStem(f.Filename), i+1, timestamp())
		}

		path, err := h.store.Save(pdf, pdfFilename)
		if err != nil {
			slog.Error("Failed to save PDF", "filename", pdfFilename, "error", err)
			writeJSONError(w, "Failed to save PDF", nil, http.StatusInternalServerError)
			return
		}
		paths = append(paths, path)
		sizes = append(sizes, len(pdf))
	}

	slog.Info("Converted images to individual PDFs", "numImages", len(files), "numPDFs", len(paths))
	writeJSON(w, http.StatusOK, ConversionResponse{
		Success:   true,
		Message:   fmt.Sprintf("Successfully converted %d images to %d PDF(s)", len(files), len(paths)),
		FilePaths: paths,
		FileSizes: sizes,
	})
}

// HandleConvertSingle converts one uploaded image to a one-page PDF.
func (h *Handlers) HandleConvertSingle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		slog.Warn("Failed to parse multipart form", "error", err)
		writeJSONError(w, "Failed to parse request data", err.Error(), http.StatusBadRequest)
		return
	}

	f, ok := h.singleUpload(w, r)
	if !ok {
		return
	}

	meta, password, encrypt := metadataFromForm(r)
	resize := parseBoolField(r, "resize", true)
	compression := parseBoolField(r, "compression", true)

	pdf, _, err := h.conv.ConvertSingle(f.Data, f.Filename, meta, resize, compression)
	if err != nil {
		h.writeConversionError(w, err)
		return
	}

	if encrypt {
		if pdf, err = converter.EncryptPDF(pdf, passwordOrDefault(password)); err != nil {
			slog.Error("Explicit encryption failed", "filename", f.Filename, "error", err)
			writeJSONError(w, "Encryption failed", nil, http.StatusInternalServerError)
			return
		}
	}

	pdfFilename, err := h.outputFilename(r.FormValue("filename"), filenameStem(f.Filename))
	if err != nil {
		writeJSONError(w, "Invalid filename", err.Error(), http.StatusBadRequest)
		return
	}

	path, err := h.store.Save(pdf, pdfFilename)
	if err != nil {
		slog.Error("Failed to save PDF", "filename", pdfFilename, "error", err)
		writeJSONError(w, "Failed to save PDF", nil, http.StatusInternalServerError)
		return
	}

	slog.Info("Converted image to PDF", "filename", f.Filename, "output", pdfFilename, "size", len(pdf))
	writeJSON(w, http.StatusOK, ConversionResponse{
		Success:  true,
		Message:  "Successfully converted image to PDF",
		FilePath: path,
		FileSize: len(pdf),
	})
}

// HandleRotate rotates an uploaded image by a right angle.
func (h *Handlers) HandleRotate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		writeJSONError(w, "Failed to parse request data", err.Error(), http.StatusBadRequest)
		return
	}

	f, ok := h.singleUpload(w, r)
	if !ok {
		return
	}

	angle := 90
	if v := r.FormValue("angle"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, "Invalid angle", v, http.StatusBadRequest)
			return
		}
		angle = n
	}
	if angle != 0 && angle != 90 && angle != 180 && angle != 270 {
		writeJSONError(w, "Angle must be 0, 90, 180, or 270", nil, http.StatusBadRequest)
		return
	}

	rotated, err := converter.RotateImage(f.Data, angle)
	if err != nil {
		slog.Error("Rotation failed", "filename", f.Filename, "error", err)
		writeJSONError(w, "Rotation failed", nil, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, TransformResponse{
		Success: true,
		Message: fmt.Sprintf("Image rotated %d degrees", angle),
		Size:    len(rotated),
	})
}

// HandleCrop crops pixel margins off an uploaded image.
func (h *Handlers) HandleCrop(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
		writeJSONError(w, "Failed to parse request data", err.Error(), http.StatusBadRequest)
		return
	}

	f, ok := h.singleUpload(w, r)
	if !ok {
		return
	}

	left := parseIntField(r, "left")
	top := parseIntField(r, "top")
	right := parseIntField(r, "right")
	bottom := parseIntField(r, "bottom")

	cropped, err := converter.CropImage(f.Data, left, top, right, bottom)
	if err != nil {
		slog.Error("Cropping failed", "filename", f.Filename, "error", err)
		writeJSONError(w, "Cropping failed", nil, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, TransformResponse{
		Success: true,
		Message: "Image cropped successfully",
		Size:    len(cropped),
	})
}

// HandleDownload serves a converted PDF from the output directory.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	filename, err := sanitizeFilename(mux.Vars(r)["filename"])
	if err != nil {
		writeJSONError(w, "Invalid filename", err.Error(), http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.store.Dir(), filename)
	if _, err := os.Stat(path); err != nil {
		writeJSONError(w, "File not found", nil, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	http.ServeFile(w, r, path)
}

// HandleListFiles lists the PDFs currently available for download.
func (h *Handlers) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.List()
	if err != nil {
		slog.Error("Failed to list output directory", "error", err)
		writeJSONError(w, "Failed to list files", nil, http.StatusInternalServerError)
		return
	}

	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, FileEntry{Filename: f.Name, Size: f.Size, Created: f.ModTime})
	}
	writeJSON(w, http.StatusOK, FileListResponse{Success: true, Files: entries, Count: len(entries)})
}

// HandleDelete removes a converted PDF from the output directory.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	filename, err := sanitizeFilename(mux.Vars(r)["filename"])
	if err != nil {
		writeJSONError(w, "Invalid filename", err.Error(), http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.store.Dir(), filename)
	if _, err := os.Stat(path); err != nil {
		writeJSONError(w, "File not found", nil, http.StatusNotFound)
		return
	}

	h.store.Delete(path)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Deleted %s", filename),
	})
}

// writeConversionError maps pipeline errors onto HTTP responses. Validation
// failures carry the filename and reason back to the caller; anything else
// is reported generically with the cause logged.
func (h *Handlers) writeConversionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, converter.ErrInvalidImage):
		writeJSONError(w, "Invalid image", err.Error(), http.StatusBadRequest)
	case errors.Is(err, converter.ErrNoImages):
		writeJSONError(w, "No images provided", nil, http.StatusBadRequest)
	default:
		slog.Error("Conversion failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ConversionResponse{
			Success: false,
			Message: "Conversion failed",
		})
	}
}

// singleUpload pulls the "file" field out of an already-parsed multipart
// form, writing the error response itself when absent or unreadable.
func (h *Handlers) singleUpload(w http.ResponseWriter, r *http.Request) (converter.ImageFile, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "No file provided", "Upload an image under the 'file' field.", http.StatusBadRequest)
		return converter.ImageFile{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read uploaded file", "filename", header.Filename, "error", err)
		writeJSONError(w, fmt.Sprintf("Failed to read uploaded file: %s", header.Filename), nil, http.StatusInternalServerError)
		return converter.ImageFile{}, false
	}
	return converter.ImageFile{Data: data, Filename: header.Filename}, true
}

// outputFilename resolves the saved PDF's name: a sanitized caller-chosen
// name, or "<stem>_<timestamp>.pdf".
func (h *Handlers) outputFilename(custom, fallbackStem string) (string, error) {
	if custom == "" {
		return fmt.Sprintf("%s_%s.pdf", fallbackStem, timestamp()), nil
	}
	sanitized, err := sanitizeFilename(custom)
	if err != nil {
		return "", err
	}
	return ensurePDFExt(sanitized), nil
}

func readUpload(fh *multipart.FileHeader) (converter.ImageFile, error) {
	file, err := fh.Open()
	if err != nil {
		return converter.ImageFile{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return converter.ImageFile{}, err
	}
	return converter.ImageFile{Data: data, Filename: fh.Filename}, nil
}

// metadataFromForm builds the pipeline metadata from form fields. When the
// explicit encrypt flag is set, the password is withheld from the metadata
// and routed through the hard-failing EncryptPDF instead, so the document
// is not encrypted twice.
func metadataFromForm(r *http.Request) (meta converter.Metadata, password string, encrypt bool) {
	password = r.FormValue("password")
	encrypt = parseBoolField(r, "encrypt", false)
	meta = converter.Metadata{
		Title:  r.FormValue("title"),
		Author: r.FormValue("author"),
	}
	if !encrypt {
		meta.Password = password
	}
	return meta, password, encrypt
}

func passwordOrDefault(password string) string {
	if password == "" {
		return "default"
	}
	return password
}

func parseBoolField(r *http.Request, name string, defaultValue bool) bool {
	v := r.FormValue(name)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func parseIntField(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.FormValue(name))
	if err != nil {
		return 0
	}
	return n
}

func filenameStem(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func timestamp() string {
	return time.Now().Format("20060102_150405")
}
