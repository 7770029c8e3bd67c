package api

import (
	"bytes"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"img_to_pdf/internal/converter"

	"github.com/disintegration/imaging"
)

// newTestEnv builds a router backed by a throwaway output directory.
func newTestEnv(t *testing.T) (http.Handler, *converter.Storage) {
	t.Helper()
	store, err := converter.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	h := NewHandlers(converter.New(nil), store)
	return NewRouter(h, []string{"*"}), store
}

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(width, height, color.NRGBA{R: 255, A: 255})
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// upload is one file part of a multipart request.
type upload struct {
	field    string
	filename string
	data     []byte
}

func newMultipartRequest(t *testing.T, url string, fields map[string]string, uploads []upload) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		if err := writer.WriteField(key, val); err != nil {
			t.Fatalf("Failed to write field %s: %v", key, err)
		}
	}
	for _, u := range uploads {
		part, err := writer.CreateFormFile(u.field, u.filename)
		if err != nil {
			t.Fatalf("Failed to create form file %s: %v", u.filename, err)
		}
		if _, err := part.Write(u.data); err != nil {
			t.Fatalf("Failed to write form file %s: %v", u.filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeConversionResponse(t *testing.T, rr *httptest.ResponseRecorder) ConversionResponse {
	t.Helper()
	var resp ConversionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Could not decode response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestHandleHealth(t *testing.T) {
	router, _ := newTestEnv(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %q", resp.Status)
	}
}

func TestHandleConvert_NoFiles(t *testing.T) {
	router, _ := newTestEnv(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, newMultipartRequest(t, "/convert", map[string]string{}, nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleConvert_Combined(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/convert",
		map[string]string{"title": "Holiday"},
		[]upload{
			{"files", "one.png", testPNG(t, 100, 100)},
			{"files", "two.png", testPNG(t, 120, 80)},
		})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeConversionResponse(t, rr)
	if !resp.Success {
		t.Fatalf("Expected success, got: %+v", resp)
	}
	if resp.FilePath == "" {
		t.Fatal("Expected file_path in response")
	}
	if resp.PageCount != 2 {
		t.Errorf("Expected 2 pages, got %d", resp.PageCount)
	}
	data, err := os.ReadFile(resp.FilePath)
	if err != nil {
		t.Fatalf("Expected saved PDF on disk: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Expected saved file to start with %PDF signature")
	}
}

func TestHandleConvert_IndividualFiles(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/convert",
		map[string]string{"individual_files": "true"},
		[]upload{
			{"files", "one.png", testPNG(t, 100, 100)},
			{"files", "two.png", testPNG(t, 100, 100)},
		})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeConversionResponse(t, rr)
	if len(resp.FilePaths) != 2 || len(resp.FileSizes) != 2 {
		t.Fatalf("Expected 2 file paths and sizes, got %+v", resp)
	}
	for _, path := range resp.FilePaths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}
}

func TestHandleConvert_IndividualFilesDuplicateStems(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/convert",
		map[string]string{"individual_files": "true"},
		[]upload{
			{"files", "scan.png", testPNG(t, 100, 100)},
			{"files", "scan.png", testPNG(t, 80, 80)},
		})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeConversionResponse(t, rr)
	if len(resp.FilePaths) != 2 {
		t.Fatalf("Expected 2 file paths, got %+v", resp)
	}
	if resp.FilePaths[0] == resp.FilePaths[1] {
		t.Fatalf("Expected distinct output names for same-named uploads, got %q twice", resp.FilePaths[0])
	}
	for _, path := range resp.FilePaths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}
}

func TestHandleListFiles(t *testing.T) {
	router, store := newTestEnv(t)
	if _, err := store.Save([]byte("%PDF-1.4 test"), "report.pdf"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/files", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp FileListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if !resp.Success || resp.Count != 1 || len(resp.Files) != 1 {
		t.Fatalf("Expected one listed file, got %+v", resp)
	}
	if resp.Files[0].Filename != "report.pdf" {
		t.Errorf("Expected report.pdf, got %q", resp.Files[0].Filename)
	}
	if resp.Files[0].Size == 0 {
		t.Error("Expected a non-zero file size")
	}
}

func TestHandleConvert_IndividualFilesCustomName(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/convert",
		map[string]string{"individual_files": "true", "filename": "report"},
		[]upload{
			{"files", "one.png", testPNG(t, 100, 100)},
			{"files", "two.png", testPNG(t, 100, 100)},
		})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeConversionResponse(t, rr)
	if len(resp.FilePaths) != 2 {
		t.Fatalf("Expected 2 file paths, got %+v", resp)
	}
	for i, want := range []string{"report_1.pdf", "report_2.pdf"} {
		if got := filepath.Base(resp.FilePaths[i]); got != want {
			t.Errorf("Expected output %q, got %q", want, got)
		}
	}
}

func TestHandleConvert_UnsupportedFormat(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/convert", nil,
		[]upload{{"files", "notes.xyz", testPNG(t, 50, 50)}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "notes.xyz") {
		t.Errorf("Expected error to name the offending file, got %s", rr.Body.String())
	}
}

func TestHandleConvert_CorruptImageAbortsBatch(t *testing.T) {
	router, store := newTestEnv(t)
	req := newMultipartRequest(t, "/convert", nil,
		[]upload{
			{"files", "one.png", testPNG(t, 50, 50)},
			{"files", "two.png", []byte("not an image")},
		})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("Could not read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no partial PDF on disk, found %d entries", len(entries))
	}
}

func TestHandleConvertSingle_DownloadAndDelete(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/convert-single",
		map[string]string{"filename": "report"},
		[]upload{{"file", "photo.png", testPNG(t, 80, 80)}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeConversionResponse(t, rr)
	if !strings.HasSuffix(resp.FilePath, "report.pdf") {
		t.Fatalf("Expected custom filename report.pdf, got %s", resp.FilePath)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/report.pdf", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 on download, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Expected application/pdf, got %q", got)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected downloaded body to start with %PDF signature")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/files/report.pdf", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 on delete, got %d", rr.Code)
	}
	if _, err := os.Stat(resp.FilePath); !os.IsNotExist(err) {
		t.Error("Expected file to be gone after delete")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/report.pdf", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 after deletion, got %d", rr.Code)
	}
}

func TestHandleDownload_Missing(t *testing.T) {
	router, _ := newTestEnv(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/download/nope.pdf", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

func TestHandleRotate(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/transform/rotate",
		map[string]string{"angle": "90"},
		[]upload{{"file", "photo.png", testPNG(t, 40, 20)}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp TransformResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if !resp.Success || resp.Size == 0 {
		t.Errorf("Expected successful rotation with non-empty output, got %+v", resp)
	}
}

func TestHandleRotate_BadAngle(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/transform/rotate",
		map[string]string{"angle": "45"},
		[]upload{{"file", "photo.png", testPNG(t, 40, 20)}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleCrop(t *testing.T) {
	router, _ := newTestEnv(t)
	req := newMultipartRequest(t, "/transform/crop",
		map[string]string{"left": "10", "top": "10"},
		[]upload{{"file", "photo.png", testPNG(t, 100, 100)}})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp TransformResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Could not decode response: %v", err)
	}
	if !resp.Success || resp.Size == 0 {
		t.Errorf("Expected successful crop with non-empty output, got %+v", resp)
	}
}
