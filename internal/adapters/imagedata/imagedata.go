// Package imagedata turns uploaded image files into inline data URLs, the
// form in which listings carry user-supplied photos.
package imagedata

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// MaxImageBytes caps a single uploaded image.
const MaxImageBytes = 5 << 20

var ErrNotImage = errors.New("imagedata: not an image")

// Encode returns a data URL for b, sniffing the content type when mime is empty.
func Encode(mime string, b []byte) (string, error) {
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(b)
	}
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// FromFiles reads every file header in order and returns their data URLs.
func FromFiles(files []*multipart.FileHeader) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := fromFile(fh)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		out = append(out, url)
	}
	return out, nil
}

func fromFile(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(b) > MaxImageBytes {
		return "", fmt.Errorf("image larger than %d bytes", MaxImageBytes)
	}
	return Encode(fh.Header.Get("Content-Type"), b)
}
