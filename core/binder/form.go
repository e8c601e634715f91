package binder

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// DefaultMaxMemory is the default maximum memory used for parsing multipart forms (10MB).
const DefaultMaxMemory = 10 << 20 // 10 MB

// multipartFraming is the number of bytes a multipart body needs beyond its
// boundary before it can contain a single part.
const multipartFraming = 6

// DecodeBody reads the submitted body of r into a flat Values map.
//
// An application/json body is decoded as a JSON object. A multipart body must
// declare a boundary; if its Content-Length does not exceed the boundary framing,
// the form is treated as empty instead of being handed to the parser. Anything
// else is parsed as URL-encoded form data. Query string values are not included.
//
// maxMemory bounds in-memory multipart parsing; larger files spill to disk.
// A non-positive value selects DefaultMaxMemory.
func DecodeBody(r *http.Request, maxMemory int64) (Values, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
		if idx := strings.Index(mediaType, ";"); idx != -1 {
			mediaType = strings.TrimSpace(mediaType[:idx])
		}
	}

	switch {
	case mediaType == "application/json":
		return decodeJSON(r)

	case strings.HasPrefix(mediaType, "multipart/form-data"):
		boundary := params["boundary"]
		if boundary == "" || !validateBoundary(boundary) {
			return nil, ErrNoBoundary
		}
		if r.ContentLength <= int64(len(boundary)+multipartFraming) {
			return Values{}, nil
		}
		if maxMemory <= 0 {
			maxMemory = DefaultMaxMemory
		}
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
		out := Values{}
		if r.MultipartForm != nil {
			for k, vs := range r.MultipartForm.Value {
				if item := Item(vs); item != nil {
					out[k] = item
				}
			}
			addFiles(out, r.MultipartForm.File)
		}
		return out, nil

	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFailedToParseForm, err)
		}
		return FromURLValues(r.PostForm), nil
	}
}

// validateBoundary rejects boundaries that would break multipart parsing.
func validateBoundary(boundary string) bool {
	if boundary == "" || len(boundary) > 100 {
		return false
	}
	for _, r := range boundary {
		if r == '\x00' || r == '\r' || r == '\n' {
			return false
		}
	}
	return true
}

// sanitizeFilename removes path components and dangerous characters from uploaded filenames.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\x00", "")

	if filename == "." || filename == ".." || filename == "" || filename == "/" {
		filename = "unnamed"
	}
	return filename
}
