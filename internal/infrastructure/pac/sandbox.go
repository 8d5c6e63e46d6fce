package pac

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"sync"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

const (
	sandboxSerie      = "DEV"
	sandboxProvider   = "SPR190613I52"
	sandboxSATCertNum = "30001000000500003456"
)

// SandboxGateway PAC local para desarrollo: agrega un TimbreFiscalDigital sin validez fiscal.
// Es idempotente por factura igual que un PAC real.
type SandboxGateway struct {
	mu              sync.Mutex
	verificationURL string
	folio           int
	stamps          map[string]*entity.Stamp
	cancelled       map[string]bool
	now             func() time.Time
}

// NewSandboxGateway crea el PAC local.
func NewSandboxGateway(verificationURL string) *SandboxGateway {
	return &SandboxGateway{
		verificationURL: verificationURL,
		stamps:          make(map[string]*entity.Stamp),
		cancelled:       make(map[string]bool),
		now:             time.Now,
	}
}

// SignAndRegister timbra localmente el documento sellado.
func (g *SandboxGateway) SignAndRegister(ctx context.Context, req billing.StampRequest) (*entity.Stamp, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if st, ok := g.stamps[req.InvoiceID]; ok {
		return st, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(req.Document); err != nil {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: "CFDI mal formado", Code: "301", Err: err}
	}
	root := doc.Root()
	seal := root.SelectAttrValue("Sello", "")
	if root.Tag != "Comprobante" || seal == "" {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: "comprobante sin sello", Code: "302"}
	}

	g.folio++
	id := uuid.NewString()
	at := g.now().In(mexicoCity).Truncate(time.Second)
	root.CreateAttr("Serie", sandboxSerie)
	root.CreateAttr("Folio", strconv.Itoa(g.folio))

	satSeal := sha256.Sum256([]byte(id + seal))
	tfd := root.CreateElement("cfdi:Complemento").CreateElement("tfd:TimbreFiscalDigital")
	tfd.CreateAttr("xmlns:tfd", NsTFD)
	tfd.CreateAttr("Version", "1.1")
	tfd.CreateAttr("UUID", id)
	tfd.CreateAttr("FechaTimbrado", at.Format(dateLayout))
	tfd.CreateAttr("RfcProvCertif", sandboxProvider)
	tfd.CreateAttr("SelloCFD", seal)
	tfd.CreateAttr("NoCertificadoSAT", sandboxSATCertNum)
	tfd.CreateAttr("SelloSAT", base64.StdEncoding.EncodeToString(satSeal[:]))

	stamped, err := doc.WriteToBytes()
	if err != nil {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: err.Error(), Err: err}
	}
	f, err := readFacts(stamped)
	if err != nil {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: err.Error(), Err: err}
	}
	st := &entity.Stamp{
		UUID:            id,
		Serie:           sandboxSerie,
		Folio:           strconv.Itoa(g.folio),
		VerificationURL: sat.VerificationURL(g.verificationURL, id, f.issuerRFC, f.receiverRFC, f.total, seal),
		XML:             string(stamped),
		StampedAt:       at,
	}
	g.stamps[req.InvoiceID] = st
	return st, nil
}

// Cancel acepta la cancelación de cualquier UUID que este PAC haya emitido.
func (g *SandboxGateway) Cancel(ctx context.Context, req billing.CancelRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.stamps[req.InvoiceID]
	if !ok || st.UUID != req.UUID {
		return &domain.PacUnavailableError{Op: "cancelar", Reason: "UUID no encontrado", Code: "205"}
	}
	g.cancelled[req.UUID] = true
	return nil
}

var _ billing.PACGateway = (*SandboxGateway)(nil)
