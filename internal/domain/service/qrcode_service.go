package service

// QRCodeService defines the interface for QR code generation and parsing services
type QRCodeService interface {
	// GenerateListingQR renders a PNG pointing at the listing's public code.
	GenerateListingQR(publicCode string) ([]byte, error)

	// ParseListingQR extracts the public code from scanned QR data.
	ParseListingQR(qrData string) (string, error)
}
