package services

import qrcode "github.com/skip2/go-qrcode"

// SessionQRCode renders link as a PNG so a session can be reopened on a phone.
func SessionQRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(link, qrcode.Medium, size)
}
