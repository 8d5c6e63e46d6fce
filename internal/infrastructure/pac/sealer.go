package pac

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
)

// Sealer arma el CFDI y lo sella con el CSD de la empresa (RSA-SHA256 sobre la forma canónica
// del comprobante sin el atributo Sello).
type Sealer struct{}

// NewSealer crea el sellador.
func NewSealer() *Sealer { return &Sealer{} }

// SignedDocument implementa billing.DocumentSigner.
func (s *Sealer) SignedDocument(in billing.DocumentInput) ([]byte, error) {
	if in.Company == nil {
		return nil, errors.New("sello: falta la empresa")
	}
	cred, err := LoadCredential(in.Company.CSD)
	if err != nil {
		return nil, err
	}
	if in.IssuedAt.After(cred.Cert.NotAfter) || in.IssuedAt.Before(cred.Cert.NotBefore) {
		return nil, fmt.Errorf("sello: el CSD %s no está vigente en %s", cred.CertNumber, in.IssuedAt.Format(dateLayout))
	}
	doc, err := BuildCFDI(in, cred)
	if err != nil {
		return nil, err
	}
	if err := Seal(doc, cred); err != nil {
		return nil, err
	}
	return doc.WriteToBytes()
}

// Seal calcula el sello y lo agrega como atributo Sello del comprobante.
func Seal(doc *etree.Document, cred *Credential) error {
	root := doc.Root()
	if root == nil {
		return errors.New("sello: documento sin raíz")
	}
	root.RemoveAttr("Sello")
	raw, err := rootBytes(root)
	if err != nil {
		return fmt.Errorf("sello: serializar: %w", err)
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return fmt.Errorf("sello: canonicalizar: %w", err)
	}
	digest := sha256.Sum256(canonical)
	sig, err := rsa.SignPKCS1v15(rand.Reader, cred.Key, crypto.SHA256, digest[:])
	if err != nil {
		return fmt.Errorf("sello: firmar: %w", err)
	}
	root.CreateAttr("Sello", base64.StdEncoding.EncodeToString(sig))
	return nil
}

// VerifySeal comprueba el sello de un comprobante contra la llave pública del certificado.
func VerifySeal(signed []byte, pub *rsa.PublicKey) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(signed); err != nil {
		return fmt.Errorf("sello: parsear: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return errors.New("sello: documento sin raíz")
	}
	sig, err := base64.StdEncoding.DecodeString(root.SelectAttrValue("Sello", ""))
	if err != nil || len(sig) == 0 {
		return errors.New("sello: ausente o mal codificado")
	}
	root.RemoveAttr("Sello")
	raw, err := rootBytes(root)
	if err != nil {
		return err
	}
	canonical, err := canonicalize(raw)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(canonical)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], sig)
}

// rootBytes serializa solo el elemento raíz (sin declaración XML).
func rootBytes(root *etree.Element) ([]byte, error) {
	d := etree.NewDocument()
	d.SetRoot(root.Copy())
	return d.WriteToBytes()
}

func canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

var _ billing.DocumentSigner = (*Sealer)(nil)
