package security

import (
	"testing"
	"time"
)

func TestDownloadGuard_ValidateURL(t *testing.T) {
	g := NewDownloadGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://cdn.example.com/plans/p-1.pdf", false},
		{"valid http", "http://files.example.com/r.md", false},
		{"empty", "", true},
		{"ftp scheme", "ftp://example.com/x", true},
		{"file scheme", "file:///etc/passwd", true},
		{"javascript scheme", "javascript:alert(1)", true},
		{"no host", "https://", true},
		{"localhost", "https://localhost/x", true},
		{"loopback ip", "https://127.0.0.1/x", true},
		{"private ip 10", "https://10.0.0.5/x", true},
		{"private ip 192", "https://192.168.1.1/x", true},
		{"private ip 172", "https://172.16.0.1/x", true},
		{"metadata ip", "http://169.254.169.254/latest/meta-data/", true},
		{"public ip", "https://93.184.216.34/x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

// APIベースURLのホストはホスト名レベルのブロックを免除される。
// 開発環境ではAPIがループバックのホスト名で動くため。
func TestDownloadGuard_TrustedHostBypassesHostnameBlock(t *testing.T) {
	g := NewDownloadGuard("localhost")

	if err := g.ValidateURL("http://localhost/plans/p-1/export"); err != nil {
		t.Errorf("trusted host must be allowed: %v", err)
	}
	if err := g.ValidateURL("http://127.0.0.1/x"); err == nil {
		t.Error("trusting a hostname must not unblock raw loopback IPs")
	}
}

func TestDownloadGuard_NewSafeClient(t *testing.T) {
	g := NewDownloadGuard()

	client := g.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient returned nil")
	}
}
