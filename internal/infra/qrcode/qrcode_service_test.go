package qrcode

import (
	"encoding/json"
	"testing"

	"brokerage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  string
	}{
		{"Low error correction", "L", "Low"},
		{"Medium error correction", "M", "Medium"},
		{"High error correction", "q", "High"},
		{"Highest error correction", "H", "Highest"},
		{"Default error correction", "invalid", "Medium"},
	}

	levelNames := map[string]int{"Low": 0, "Medium": 1, "High": 2, "Highest": 3}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ok := NewQRCodeService(256, tt.level).(*qrcodeService)
			require.True(t, ok)
			assert.Equal(t, levelNames[tt.want], int(svc.errorCorrectionLevel))
		})
	}
}

func TestNew_FromConfig(t *testing.T) {
	svc, ok := New(&config.Config{}).(*qrcodeService)
	require.True(t, ok)
	assert.Equal(t, defaultQRSize, svc.size)

	svc, ok = New(&config.Config{QRCode: &config.QRCodeConfig{Size: 512, ErrorCorrectionLevel: "H"}}).(*qrcodeService)
	require.True(t, ok)
	assert.Equal(t, 512, svc.size)
}

func TestQRCodeService_GenerateListingQR(t *testing.T) {
	for _, size := range []int{128, 256, 512} {
		qrBytes, err := NewQRCodeService(size, "M").GenerateListingQR("PROP-001")
		require.NoError(t, err)
		require.Greater(t, len(qrBytes), len(pngMagic))
		assert.Equal(t, pngMagic, qrBytes[:4])
	}

	_, err := NewQRCodeService(256, "M").GenerateListingQR("  ")
	assert.Error(t, err)
}

func TestQRCodeService_ParseListingQR(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	encode := func(data ListingQRData) string {
		raw, err := json.Marshal(data)
		require.NoError(t, err)

		return string(raw)
	}

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{name: "valid", input: encode(ListingQRData{PublicCode: "PROP-001", Type: "listing"}), want: "PROP-001"},
		{name: "invalid json", input: "invalid json", wantErr: "failed to unmarshal QR code data"},
		{name: "wrong type", input: encode(ListingQRData{PublicCode: "PROP-001", Type: "subscription"}), wantErr: "invalid QR code type"},
		{name: "missing code", input: encode(ListingQRData{Type: "listing"}), wantErr: "no public code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := svc.ParseListingQR(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}
