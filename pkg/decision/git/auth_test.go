package git

import (
	"os"
	"path/filepath"
	"testing"

	"arsmedica/dendron/pkg/config"
)

func TestNewAuthProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.GitAuthConfig
		wantType string
		wantErr  bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name:     "empty type defaults to none",
			cfg:      &config.GitAuthConfig{},
			wantType: "none",
		},
		{
			name:     "none",
			cfg:      &config.GitAuthConfig{Type: "none"},
			wantType: "none",
		},
		{
			name:     "token",
			cfg:      &config.GitAuthConfig{Type: "token", Token: "ghp_example"},
			wantType: "token",
		},
		{
			name:    "token without value",
			cfg:     &config.GitAuthConfig{Type: "token"},
			wantErr: true,
		},
		{
			name:     "ssh",
			cfg:      &config.GitAuthConfig{Type: "ssh", SSHKeyPath: "/home/user/.ssh/id_rsa"},
			wantType: "ssh",
		},
		{
			name:    "ssh without key path",
			cfg:     &config.GitAuthConfig{Type: "ssh"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			cfg:     &config.GitAuthConfig{Type: "oauth"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewAuthProvider(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAuthProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if provider.Type() != tt.wantType {
				t.Errorf("Type() = %q, want %q", provider.Type(), tt.wantType)
			}
		})
	}
}

func TestTokenAuth_GetAuth(t *testing.T) {
	auth, err := NewTokenAuth("secret").GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if auth == nil {
		t.Fatal("GetAuth() = nil, want basic auth")
	}

	if _, err := NewTokenAuth("").GetAuth(); err == nil {
		t.Error("GetAuth() with empty token succeeded, want error")
	}
}

func TestNoAuth_GetAuth(t *testing.T) {
	auth, err := NewNoAuth().GetAuth()
	if err != nil {
		t.Fatalf("GetAuth() error = %v", err)
	}
	if auth != nil {
		t.Errorf("GetAuth() = %v, want nil for public repositories", auth)
	}
}

func TestSSHAuth_GetAuth_Permissions(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(keyPath, []byte("not a real key"), 0644); err != nil {
		t.Fatalf("failed to write key file: %v", err)
	}

	// Group/world readable keys are rejected before parsing
	if _, err := NewSSHAuth(keyPath, "").GetAuth(); err == nil {
		t.Error("GetAuth() succeeded with world-readable key file")
	}

	if _, err := NewSSHAuth("", "").GetAuth(); err == nil {
		t.Error("GetAuth() succeeded with empty key path")
	}

	if _, err := NewSSHAuth(filepath.Join(t.TempDir(), "missing"), "").GetAuth(); err == nil {
		t.Error("GetAuth() succeeded with missing key file")
	}
}
