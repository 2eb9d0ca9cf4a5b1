package parser

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"time"
)

// CertInfo is the subset of an X.509 certificate the Forecaster's
// certificate analysis needs (spec §4.6).
type CertInfo struct {
	NotAfter time.Time
}

// ParseTLSCert decodes a TLS Secret's tls.crt (PEM bytes, already
// base64-decoded by client-go's Secret.Data map) and parses the leaf
// certificate's NotAfter (spec §4.3's "Decode X.509 from a TLS Secret's
// tls.crt ... to extract notAfter"). Standard library crypto/x509 is used
// directly — no certificate-parsing library appears anywhere in the
// retrieved example pack, so this is the one component in the parser layer
// grounded on the standard library rather than a third-party dependency.
func ParseTLSCert(pemBytes []byte) (CertInfo, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return CertInfo{}, fmt.Errorf("no PEM block found in tls.crt")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return CertInfo{}, fmt.Errorf("failed to parse X.509 certificate: %w", err)
	}
	return CertInfo{NotAfter: cert.NotAfter}, nil
}
