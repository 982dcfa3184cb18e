package mdbconf

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// TLS settings for a Connection.
type TLS struct {
	PeerName        string
	VerifyPeer      bool
	VerifyExpiry    bool
	VerifyPeerName  bool
	AllowSelfSigned bool
	CAFile          string
	CertFile        string // client certificate and key in one PEM file
}

var errNoPeerCertificate = errors.New("no peer certificate")

// Config loads the certificate files and returns the equivalent tls.Config.
//
// The standard library can only switch verification off entirely,
// so relaxed expiry, peer name or self-signed checks are done by a custom verifier
// that still requires a chain to the configured CA (or a self-signed leaf if allowed).
func (t *TLS) Config() (*tls.Config, error) {
	caPEM, err := os.ReadFile(t.CAFile)
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}
	roots := x509.NewCertPool()
	if !roots.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("no certificates in CA file %s", t.CAFile)
	}

	config := &tls.Config{
		RootCAs:    roots,
		ServerName: t.PeerName,
		MinVersion: tls.VersionTLS12,
	}

	if t.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(t.CertFile, t.CertFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	switch {
	case !t.VerifyPeer:
		config.InsecureSkipVerify = true
	case !t.VerifyExpiry || !t.VerifyPeerName || t.AllowSelfSigned:
		config.InsecureSkipVerify = true
		config.VerifyPeerCertificate = t.verifier(roots)
	}

	return config, nil
}

func (t *TLS) verifier(roots *x509.CertPool) func([][]byte, [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return errNoPeerCertificate
		}
		certs := make([]*x509.Certificate, 0, len(rawCerts))
		for _, raw := range rawCerts {
			cert, err := x509.ParseCertificate(raw)
			if err != nil {
				return fmt.Errorf("parse peer certificate: %w", err)
			}
			certs = append(certs, cert)
		}
		return t.verify(roots, certs)
	}
}

func (t *TLS) verify(roots *x509.CertPool, certs []*x509.Certificate) error {
	leaf := certs[0]
	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: x509.NewCertPool(),
	}
	for _, cert := range certs[1:] {
		opts.Intermediates.AddCert(cert)
	}
	if t.AllowSelfSigned && bytes.Equal(leaf.RawIssuer, leaf.RawSubject) {
		opts.Roots = roots.Clone()
		opts.Roots.AddCert(leaf)
	}
	if !t.VerifyExpiry {
		// Check the chain as of the moment the leaf was issued.
		opts.CurrentTime = leaf.NotBefore
	}
	if t.VerifyPeerName {
		opts.DNSName = t.PeerName
	}
	if _, err := leaf.Verify(opts); err != nil {
		return fmt.Errorf("verify peer certificate: %w", err)
	}
	return nil
}
