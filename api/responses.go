package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ConversionResponse is the JSON envelope for conversion endpoints.
// FilePaths/FileSizes are populated instead of FilePath/FileSize when the
// caller requested one PDF per image.
type ConversionResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	FilePath     string   `json:"file_path,omitempty"`
	FilePaths    []string `json:"file_paths,omitempty"`
	FileSize     int      `json:"file_size,omitempty"`
	FileSizes    []int    `json:"file_sizes,omitempty"`
	PageCount    int      `json:"page_count,omitempty"`
	ErrorDetails string   `json:"error_details,omitempty"`
}

// TransformResponse is the JSON envelope for the image transform endpoints.
type TransformResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Size    int    `json:"size"`
}

// FileListResponse is the JSON envelope for the file listing endpoint.
type FileListResponse struct {
	Success bool        `json:"success"`
	Files   []FileEntry `json:"files"`
	Count   int         `json:"count"`
}

// FileEntry describes one downloadable PDF.
type FileEntry struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type APIErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, details interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	errResponse := APIErrorResponse{
		Error:   message,
		Details: details,
	}
	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		slog.Error("Failed to write JSON error response", "error", err)
		http.Error(w, `{"error":"Failed to serialize error message"}`, http.StatusInternalServerError)
	}
}
