package server

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"interviewcoach/internal/observability"
)

// configureTLS sets up TLS configuration based on the mode
func (s *Server) configureTLS(httpServer *http.Server, om *observability.ObservabilityManager) error {
	switch s.TLSConfig.Mode {
	case "", "disabled":
		fmt.Printf("Starting server on http://%s\n", httpServer.Addr)
		fmt.Println("TLS mode: Disabled (HTTP only)")
		return nil
	case "server":
		fmt.Printf("Starting server with HTTPS (server-only TLS) on https://%s\n", httpServer.Addr)
		fmt.Println("TLS mode: Server-only (no client certificates required)")
	case "mutual":
		fmt.Printf("Starting server with mTLS (mutual TLS) on https://%s\n", httpServer.Addr)
		fmt.Println("TLS mode: Mutual (client certificates required)")
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	certManager, err := NewCertificateManager(s.TLSConfig, om.GetMetrics(), s.Logger)
	if err != nil {
		return fmt.Errorf("failed to set up TLS: %w", err)
	}
	s.CertificateManager = certManager
	httpServer.TLSConfig = s.buildTLSConfig()
	return nil
}

// buildTLSConfig creates a TLS configuration that reads certificates from the
// manager on every handshake, so reloads take effect without a restart.
func (s *Server) buildTLSConfig() *tls.Config {
	tlsConfig := &tls.Config{
		MinVersion:     tlsMinVersion(s.TLSConfig.MinVersion),
		GetCertificate: s.CertificateManager.GetServerCertificate,
		ClientAuth:     tls.NoClientCert,
	}

	if s.TLSConfig.Mode == "mutual" {
		tlsConfig.ClientAuth = clientAuthPolicy(s.TLSConfig.ClientAuthPolicy)
		tlsConfig.ClientCAs = s.CertificateManager.GetCACertPool()
		tlsConfig.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
			cfg := tlsConfig.Clone()
			cfg.GetConfigForClient = nil
			cfg.ClientCAs = s.CertificateManager.GetCACertPool()
			return cfg, nil
		}
	}

	return tlsConfig
}

func tlsMinVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
