package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/pricematch/internal/service"
	"github.com/JonMunkholm/pricematch/internal/store"
)

// multipartMemory is how much of a multipart form is buffered in memory;
// the rest spills to temporary files.
const multipartMemory = 32 << 20

// parseIntParam parses a non-negative integer query parameter. A missing
// parameter yields defaultVal.
func parseIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: %s=%q", service.ErrInvalidParameter, name, val)
	}
	return i, nil
}

// parsePage reads skip and limit.
func parsePage(r *http.Request) (store.Page, error) {
	skip, err := parseIntParam(r, "skip", 0)
	if err != nil {
		return store.Page{}, err
	}
	limit, err := parseIntParam(r, "limit", store.DefaultLimit)
	if err != nil {
		return store.Page{}, err
	}
	return store.Page{Skip: skip, Limit: limit}.Normalize(), nil
}

// parseID parses a positive int64 path or query value.
func parseID(name, val string) (int64, error) {
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", service.ErrInvalidParameter, name, val)
	}
	return id, nil
}

// readUpload reads the "file" part of a multipart form bounded by maxSize.
// Returns the file name and contents.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (string, []byte, error) {
	if maxSize > 0 {
		// Allow for the multipart envelope around the file.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", service.ErrNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, service.ErrNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	return header.Filename, data, nil
}
