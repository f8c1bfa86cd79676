package utils

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// RenderQRCode encodes payload as a PNG QR code.
func RenderQRCode(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// PNGDataBase64 is the form the web client embeds in <img src="data:image/png;base64,...">.
func PNGDataBase64(png []byte) string {
	return base64.StdEncoding.EncodeToString(png)
}
