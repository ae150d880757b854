// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package api

import (
	"crypto/elliptic"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/boostxyz/boost-protocol-sub000/boost"
	"github.com/decred/dcrd/certgen"
)

// certValidity is the lifetime of a generated certificate.
const certValidity = 10 * 365 * 24 * time.Hour

// loadKeyPair loads the TLS keypair, generating a self-signed one first if
// neither file exists. Changing altDNSNames does not regenerate an existing
// pair.
func loadKeyPair(certFile, keyFile string, altDNSNames []string, log boost.Logger) (tls.Certificate, error) {
	_, certErr := os.Stat(certFile)
	_, keyErr := os.Stat(keyFile)
	switch {
	case errors.Is(certErr, os.ErrNotExist) && errors.Is(keyErr, os.ErrNotExist):
		if err := genCertPair(certFile, keyFile, altDNSNames, log); err != nil {
			return tls.Certificate{}, fmt.Errorf("error generating TLS keypair: %w", err)
		}
	case errors.Is(certErr, os.ErrNotExist) != errors.Is(keyErr, os.ErrNotExist):
		return tls.Certificate{}, fmt.Errorf("only one of %s and %s exists", certFile, keyFile)
	}
	return tls.LoadX509KeyPair(certFile, keyFile)
}

func genCertPair(certFile, keyFile string, altDNSNames []string, log boost.Logger) error {
	log.Infof("Generating TLS keypair at %s", certFile)
	cert, key, err := certgen.NewTLSCertPair(elliptic.P521(), "boostd autogenerated cert",
		time.Now().Add(certValidity), altDNSNames)
	if err != nil {
		return err
	}
	if err := os.WriteFile(certFile, cert, 0644); err != nil {
		return err
	}
	if err := os.WriteFile(keyFile, key, 0600); err != nil {
		os.Remove(certFile)
		return err
	}
	return nil
}
