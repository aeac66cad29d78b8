package http

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/nadzzz/agentkit/internal/batch"
)

var errNoFile = errors.New("no file uploaded")

// parseUpload parses a multipart form within the configured size limit.
func (t *Transport) parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, t.maxUpload)
	if err := r.ParseMultipartForm(t.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return fmt.Errorf("upload exceeds %d MB", t.opts.MaxUploadMB)
		}
		return fmt.Errorf("reading upload: %w", err)
	}
	return nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return data, nil
}

// formDocuments reads every file of the "pdfs" field in upload order.
func formDocuments(r *http.Request) ([]batch.Document, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["pdfs"]) == 0 {
		return nil, errNoFile
	}
	var docs []batch.Document
	for _, fh := range r.MultipartForm.File["pdfs"] {
		data, err := readPart(fh)
		if err != nil {
			return nil, err
		}
		docs = append(docs, batch.Document{Name: fh.Filename, Data: data})
	}
	return docs, nil
}

// formAudio reads the "audio" field and its content type.
func formAudio(r *http.Request) ([]byte, string, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["audio"]) == 0 {
		return nil, "", errNoFile
	}
	fh := r.MultipartForm.File["audio"][0]
	data, err := readPart(fh)
	if err != nil {
		return nil, "", err
	}
	return data, partContentType(fh), nil
}

// partContentType prefers the declared type, falling back to the extension.
func partContentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/octet-stream") {
		return ct
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(fh.Filename)))
}
