package response

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/hyperkit/core/handler"
)

// FileResponse serves a file from disk. It reports a missing file through
// handler.NotFounder so the caller can answer 404 before writing anything.
type FileResponse struct {
	path     string
	filename string
	header   http.Header
}

var (
	_ handler.Renderer   = (*FileResponse)(nil)
	_ handler.NotFounder = (*FileResponse)(nil)
)

// File creates a response that serves a static file from the filesystem.
// Content type detection and range requests are handled by http.ServeFile.
func File(path string) *FileResponse {
	return &FileResponse{path: filepath.Clean(path), header: make(http.Header)}
}

// Download is like File but forces the browser to download the file.
// If filename is empty, the base name of the path is used.
func Download(path, filename string) *FileResponse {
	f := File(path)
	if filename == "" {
		filename = filepath.Base(f.path)
	}
	f.filename = filename
	return f
}

// Path returns the cleaned file path.
func (f *FileResponse) Path() string { return f.path }

// Exists reports whether the path names a regular, readable file.
func (f *FileResponse) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}

// WithHeader sets an extra header written with the file.
func (f *FileResponse) WithHeader(key, value string) *FileResponse {
	f.header.Set(key, value)
	return f
}

// Render implements handler.Renderer.
func (f *FileResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !f.Exists() {
		http.NotFound(w, r)
		return nil
	}
	for k, vs := range f.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if f.filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.filename))
		contentType := mime.TypeByExtension(filepath.Ext(f.path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeFile(w, r, f.path)
	return nil
}
