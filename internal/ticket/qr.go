package ticket

import (
	"encoding/base64"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// qrSize is the pixel width of generated QR images. 256 scans reliably
// from both screens and printed receipts.
const qrSize = 256

// VerifyURL builds the public verification link encoded into a
// ticket's QR code.
func VerifyURL(baseURL, reference string) string {
	return strings.TrimRight(baseURL, "/") + "/ticket/verify/" + reference
}

// GenerateQR encodes the given URL as a QR PNG and returns both the
// raw image bytes (embedded into the PDF receipt) and a data URL (the
// payload stored on the booking row, renderable directly by clients).
func GenerateQR(url string) (png []byte, dataURL string, err error) {
	png, err = qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, "", err
	}
	dataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return png, dataURL, nil
}
