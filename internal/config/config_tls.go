package config

import "fmt"

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.Mode {
	case "disabled", "":
		return nil
	case "server", "mutual":
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	if !hasSource(tls.CertFile, tls.CertContent) || !hasSource(tls.KeyFile, tls.KeyContent) {
		return fmt.Errorf("TLS certificate and key are required for %s mode (provide either files or content)", tls.Mode)
	}
	for name, pair := range map[string][2]string{
		"cert": {tls.CertFile, tls.CertContent},
		"key":  {tls.KeyFile, tls.KeyContent},
		"ca":   {tls.CAFile, tls.CAContent},
	} {
		if pair[0] != "" && pair[1] != "" {
			return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", name, name)
		}
	}

	if tls.Mode == "mutual" {
		if !hasSource(tls.CAFile, tls.CAContent) {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		switch tls.ClientAuthPolicy {
		case "require", "request", "verify", "":
		default:
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
		}
	}

	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}

func hasSource(file, content string) bool {
	return file != "" || content != ""
}
