package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"interviewcoach/internal/config"
	"interviewcoach/internal/errors"
	"interviewcoach/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// CertificateManager holds the serving certificate and client CA pool and
// swaps them in place when the files on disk change.
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	caCertPool       *x509.CertPool
	serverCertExpiry time.Time

	config  config.TLSConfig
	metrics *observability.Metrics
	logger  *errors.Logger

	stats CertificateStats
}

// CertificateStats counts reload attempts
type CertificateStats struct {
	ReloadCount        int64     `json:"reload_count"`
	ReloadFailureCount int64     `json:"reload_failure_count"`
	LastReloadTime     time.Time `json:"last_reload_time"`
	LastReloadError    string    `json:"last_reload_error,omitempty"`
}

// NewCertificateManager loads the configured certificates
func NewCertificateManager(tlsConfig config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) (*CertificateManager, error) {
	cm := &CertificateManager{config: tlsConfig, metrics: metrics, logger: logger}
	if err := cm.loadCertificates(); err != nil {
		return nil, err
	}
	return cm, nil
}

// GetServerCertificate returns the current server certificate for TLS handshakes
func (cm *CertificateManager) GetServerCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate available")
	}
	return cm.serverCert, nil
}

// GetCACertPool returns the current client CA pool
func (cm *CertificateManager) GetCACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caCertPool
}

// Reload re-reads the certificates. On failure the previous ones stay in use.
func (cm *CertificateManager) Reload() error {
	err := cm.loadCertificates()

	cm.mu.Lock()
	cm.stats.ReloadCount++
	cm.stats.LastReloadTime = time.Now()
	cm.stats.LastReloadError = ""
	if err != nil {
		cm.stats.ReloadFailureCount++
		cm.stats.LastReloadError = err.Error()
	}
	expiry := cm.serverCertExpiry
	cm.mu.Unlock()

	if cm.metrics != nil {
		cm.metrics.RecordBusinessMetric(context.Background(), observability.MetricCertReloaded, err == nil,
			attribute.String("tls.mode", cm.config.Mode))
	}
	if err != nil {
		cm.logger.LogError(err, "Failed to reload TLS certificates")
		return err
	}
	cm.logger.Info("TLS certificates reloaded", "server_cert_expiry", expiry)
	return nil
}

// CheckExpiry returns the time until the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no certificates loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// Stats returns reload counters
func (cm *CertificateManager) Stats() CertificateStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.stats
}

// WatchedFiles returns the files backing the certificates. Inline PEM content
// has nothing to watch.
func (cm *CertificateManager) WatchedFiles() []string {
	var files []string
	if cm.config.CertContent == "" && cm.config.KeyContent == "" {
		files = append(files, cm.config.CertFile, cm.config.KeyFile)
	}
	if cm.config.Mode == "mutual" && cm.config.CAContent == "" {
		files = append(files, cm.config.CAFile)
	}
	return files
}

func (cm *CertificateManager) loadCertificates() error {
	cert, err := cm.loadCertificatePair()
	if err != nil {
		return err
	}
	if len(cert.Certificate) == 0 {
		return fmt.Errorf("server certificate is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse server certificate: %w", err)
	}

	var pool *x509.CertPool
	if cm.config.Mode == "mutual" {
		if pool, err = cm.loadCACertPool(); err != nil {
			return err
		}
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.serverCert = &cert
	cm.serverCertExpiry = leaf.NotAfter
	cm.caCertPool = pool
	return nil
}

func (cm *CertificateManager) loadCertificatePair() (tls.Certificate, error) {
	switch {
	case cm.config.CertContent != "" && cm.config.KeyContent != "":
		cert, err := tls.X509KeyPair([]byte(cm.config.CertContent), []byte(cm.config.KeyContent))
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
		return cert, nil
	case cm.config.CertFile != "" && cm.config.KeyFile != "":
		cert, err := tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
		return cert, nil
	default:
		return tls.Certificate{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}
}

func (cm *CertificateManager) loadCACertPool() (*x509.CertPool, error) {
	var caCert []byte
	switch {
	case cm.config.CAContent != "":
		caCert = []byte(cm.config.CAContent)
	case cm.config.CAFile != "":
		var err error
		if caCert, err = os.ReadFile(cm.config.CAFile); err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
	default:
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}
	return pool, nil
}
