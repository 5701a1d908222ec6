package auth

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

// ProvisioningQR renders an otpauth URI as a PNG for authenticator-app
// scanning.
func ProvisioningQR(provisioningURI string, size int) ([]byte, error) {
	if size == 0 {
		size = 256
	}
	if size < 128 || size > 1024 {
		return nil, errors.New("invalid size: must be between 128 and 1024")
	}

	qr, err := qrcode.New(provisioningURI, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qr.PNG(size)
}
