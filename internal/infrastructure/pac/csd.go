package pac

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/pkcs12"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// Credential llave y certificado del CSD listos para sellar.
type Credential struct {
	Key        *rsa.PrivateKey
	Cert       *x509.Certificate
	CertNumber string
}

// LoadCredential abre el CSD de la empresa: contenedor PKCS#12 (.pfx) o par PEM/DER.
func LoadCredential(csd entity.CSD) (*Credential, error) {
	if !csd.HasMaterial() {
		return nil, errors.New("csd: la empresa no tiene certificado y llave")
	}
	var (
		key  any
		cert *x509.Certificate
		err  error
	)
	if csd.IsBundle() {
		key, cert, err = pkcs12.Decode(csd.Certificate, csd.Password)
		if err != nil {
			return nil, fmt.Errorf("csd: decodificar pkcs12: %w", err)
		}
	} else {
		cert, err = parseCertificate(csd.Certificate)
		if err != nil {
			return nil, err
		}
		key, err = parsePrivateKey(csd.PrivateKey)
		if err != nil {
			return nil, err
		}
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("csd: la llave privada debe ser RSA")
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok || pub.N.Cmp(rsaKey.N) != 0 {
		return nil, errors.New("csd: la llave no corresponde al certificado")
	}

	number := csd.CertNumber
	if number == "" {
		number = certNumber(cert.SerialNumber)
	}
	if !sat.ValidCertNumber(number) {
		return nil, fmt.Errorf("csd: número de certificado inválido %q", number)
	}
	return &Credential{Key: rsaKey, Cert: cert, CertNumber: number}, nil
}

func parseCertificate(data []byte) (*x509.Certificate, error) {
	if block, _ := pem.Decode(data); block != nil {
		data = block.Bytes
	}
	cert, err := x509.ParseCertificate(data)
	if err != nil {
		return nil, fmt.Errorf("csd: parsear certificado: %w", err)
	}
	return cert, nil
}

// parsePrivateKey acepta PKCS#8 o PKCS#1, en PEM o DER sin cifrar.
func parsePrivateKey(data []byte) (any, error) {
	if block, _ := pem.Decode(data); block != nil {
		data = block.Bytes
	}
	if key, err := x509.ParsePKCS8PrivateKey(data); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS1PrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("csd: parsear llave privada (PKCS#8/PKCS#1 sin cifrar): %w", err)
	}
	return key, nil
}

// certNumber el SAT codifica el NoCertificado como los dígitos ASCII del número de serie.
func certNumber(serial *big.Int) string {
	raw := string(serial.Bytes())
	if strings.Trim(raw, "0123456789") == "" && len(raw) > 0 {
		return raw
	}
	return serial.Text(10)
}
