package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"interviewcoach/internal/config"
	"interviewcoach/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSelfSigned writes a self-signed certificate and key valid for validFor
func writeSelfSigned(t *testing.T, dir string, validFor time.Duration) (certFile, keyFile string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: "localhost"},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(validFor),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestCertificateManagerLoadsAndReloads(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSigned(t, dir, 48*time.Hour)

	cm, err := NewCertificateManager(config.TLSConfig{Mode: "server", CertFile: certFile, KeyFile: keyFile}, &observability.Metrics{}, testLogger)
	require.NoError(t, err)

	cert, err := cm.GetServerCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	require.NotNil(t, cert)

	ttl, err := cm.CheckExpiry()
	require.NoError(t, err)
	assert.InDelta(t, 48, ttl.Hours(), 0.1)
	assert.Equal(t, []string{certFile, keyFile}, cm.WatchedFiles())

	writeSelfSigned(t, dir, 240*time.Hour)
	require.NoError(t, cm.Reload())
	ttl, err = cm.CheckExpiry()
	require.NoError(t, err)
	assert.InDelta(t, 240, ttl.Hours(), 0.1)

	require.NoError(t, os.WriteFile(keyFile, []byte("garbage"), 0o600))
	assert.Error(t, cm.Reload())
	stats := cm.Stats()
	assert.EqualValues(t, 2, stats.ReloadCount)
	assert.EqualValues(t, 1, stats.ReloadFailureCount)
	assert.NotEmpty(t, stats.LastReloadError)

	// The previous certificate stays in service.
	ttl, err = cm.CheckExpiry()
	require.NoError(t, err)
	assert.InDelta(t, 240, ttl.Hours(), 0.1)
}

func TestCertificateManagerMutual(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSigned(t, dir, time.Hour)
	caPEM, err := os.ReadFile(certFile)
	require.NoError(t, err)

	cm, err := NewCertificateManager(config.TLSConfig{
		Mode: "mutual", CertFile: certFile, KeyFile: keyFile, CAContent: string(caPEM),
	}, nil, testLogger)
	require.NoError(t, err)
	assert.NotNil(t, cm.GetCACertPool())
	assert.Equal(t, []string{certFile, keyFile}, cm.WatchedFiles())

	_, err = NewCertificateManager(config.TLSConfig{Mode: "mutual", CertFile: certFile, KeyFile: keyFile}, nil, testLogger)
	assert.Error(t, err)
}

func TestBuildTLSConfig(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := writeSelfSigned(t, dir, time.Hour)
	caPEM, err := os.ReadFile(certFile)
	require.NoError(t, err)

	tlsCfg := config.TLSConfig{
		Mode: "mutual", CertFile: certFile, KeyFile: keyFile, CAContent: string(caPEM),
		MinVersion: "1.3", ClientAuthPolicy: "verify",
	}
	cm, err := NewCertificateManager(tlsCfg, nil, testLogger)
	require.NoError(t, err)

	s := &Server{TLSConfig: tlsCfg, CertificateManager: cm, Logger: testLogger}
	built := s.buildTLSConfig()
	assert.Equal(t, uint16(tls.VersionTLS13), built.MinVersion)
	assert.Equal(t, tls.VerifyClientCertIfGiven, built.ClientAuth)
	require.NotNil(t, built.GetConfigForClient)

	perConn, err := built.GetConfigForClient(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	assert.NotNil(t, perConn.ClientCAs)
	assert.Nil(t, perConn.GetConfigForClient)
}
