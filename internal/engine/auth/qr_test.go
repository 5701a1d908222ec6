package auth

import (
	"testing"
)

func TestProvisioningQR(t *testing.T) {
	uri := "otpauth://totp/LinkVault:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=LinkVault"

	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{
			name:    "Default Size",
			size:    0,
			wantErr: false,
		},
		{
			name:    "Explicit Size",
			size:    512,
			wantErr: false,
		},
		{
			name:    "Size Too Small",
			size:    64,
			wantErr: true,
		},
		{
			name:    "Size Too Large",
			size:    5000,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProvisioningQR(uri, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("ProvisioningQR() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(got) == 0 {
				t.Errorf("ProvisioningQR() returned empty bytes")
			}
		})
	}
}
