package services

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pquerna/otp/totp"
)

const mfaIssuer = "Homedash"

type MFAService struct{}

func NewMFAService() *MFAService {
	return &MFAService{}
}

// GenerateMFASecret creates a TOTP secret and its QR code as base64 PNG.
func (s *MFAService) GenerateMFASecret(accountName string) (secret string, qrCodeBase64 string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: accountName,
	})
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	img, err := key.Image(200, 200)
	if err != nil {
		return "", "", err
	}
	if err := png.Encode(&buf, img); err != nil {
		return "", "", err
	}

	return key.Secret(), base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *MFAService) ValidateCode(secret, code string) bool {
	return totp.Validate(code, secret)
}
