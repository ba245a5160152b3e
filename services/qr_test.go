package services

import (
	"bytes"
	"testing"
)

func TestSessionQRCode(t *testing.T) {
	png, err := SessionQRCode("http://localhost:8080/api/sessions/abc", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("not a PNG: % x", png[:8])
	}
}
