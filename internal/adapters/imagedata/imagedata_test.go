package imagedata_test

import (
	"errors"
	"strings"
	"testing"

	"realnobroker/internal/adapters/imagedata"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestEncode_SniffsPNG(t *testing.T) {
	got, err := imagedata.Encode("", pngMagic)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("unexpected data url %q", got)
	}
}

func TestEncode_KeepsDeclaredType(t *testing.T) {
	got, err := imagedata.Encode("image/jpeg; charset=binary", []byte{0xff, 0xd8, 0xff})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data url %q", got)
	}
}

func TestEncode_RejectsNonImage(t *testing.T) {
	if _, err := imagedata.Encode("", []byte("hello world")); !errors.Is(err, imagedata.ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}
