package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError string
	}{
		{name: "disabled", tls: TLSConfig{Mode: "disabled"}},
		{name: "empty mode", tls: TLSConfig{}},
		{name: "invalid mode", tls: TLSConfig{Mode: "invalid"}, expectError: "invalid TLS mode"},
		{
			name: "server with files",
			tls:  TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem"},
		},
		{
			name: "server with content",
			tls:  TLSConfig{Mode: "server", CertContent: "cert", KeyContent: "key", MinVersion: "1.3"},
		},
		{
			name:        "server missing key",
			tls:         TLSConfig{Mode: "server", CertFile: "cert.pem"},
			expectError: "certificate and key are required for server mode",
		},
		{
			name:        "server duplicate cert",
			tls:         TLSConfig{Mode: "server", CertFile: "cert.pem", CertContent: "cert", KeyFile: "key.pem"},
			expectError: "cannot specify both certFile and certContent",
		},
		{
			name: "mutual complete",
			tls:  TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", ClientAuthPolicy: "verify"},
		},
		{
			name:        "mutual missing ca",
			tls:         TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k"},
			expectError: "CA certificate is required",
		},
		{
			name:        "mutual duplicate ca",
			tls:         TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", CAContent: "ca"},
			expectError: "cannot specify both caFile and caContent",
		},
		{
			name:        "mutual bad policy",
			tls:         TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", ClientAuthPolicy: "maybe"},
			expectError: "invalid clientAuthPolicy",
		},
		{
			name:        "bad min version",
			tls:         TLSConfig{Mode: "server", CertFile: "c", KeyFile: "k", MinVersion: "1.0"},
			expectError: "invalid TLS minVersion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.expectError)
			}
		})
	}
}
