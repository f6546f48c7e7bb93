package qrcode

import (
	"encoding/json"
	"strings"

	"brokerage/config"
	"brokerage/internal/domain/service"
	"brokerage/internal/errors"

	"github.com/skip2/go-qrcode"
)

const (
	listingQRType    = "listing"
	defaultQRSize    = 256
	defaultQRQuality = "M"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// ListingQRData is the payload encoded in a listing QR code.
type ListingQRData struct {
	PublicCode string `json:"public_code"`
	Type       string `json:"type"`
}

// New builds the service from the qrcode config section.
func New(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return NewQRCodeService(defaultQRSize, defaultQRQuality)
	}

	return NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

// NewQRCodeService maps L/M/Q/H onto go-qrcode recovery levels; anything else is M.
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	var level qrcode.RecoveryLevel
	switch strings.ToUpper(errorCorrectionLevel) {
	case "L":
		level = qrcode.Low
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}
	if size <= 0 {
		size = defaultQRSize
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateListingQR renders a PNG encoding the listing's public code.
func (s *qrcodeService) GenerateListingQR(publicCode string) ([]byte, error) {
	if strings.TrimSpace(publicCode) == "" {
		return nil, errors.New("public code is required")
	}

	jsonData, err := json.Marshal(ListingQRData{PublicCode: publicCode, Type: listingQRType})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal QR code data")
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseListingQR returns the public code from scanned QR text.
func (s *qrcodeService) ParseListingQR(qrData string) (string, error) {
	var data ListingQRData
	if err := json.Unmarshal([]byte(qrData), &data); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal QR code data")
	}
	if data.Type != listingQRType {
		return "", errors.Errorf("invalid QR code type: %s", data.Type)
	}
	if strings.TrimSpace(data.PublicCode) == "" {
		return "", errors.New("QR code has no public code")
	}

	return data.PublicCode, nil
}
