package pac

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

// Códigos del PAC que se tratan como éxito idempotente.
const (
	codePreviouslyStamped   = "307"
	codePreviouslyCancelled = "202"
)

// HTTPClient cliente del API REST del PAC. Usa net/http de la stdlib.
type HTTPClient struct {
	httpClient *http.Client
	cfg        Config
	log        zerolog.Logger
}

// NewHTTPClient construye el cliente. El timeout de red es un respaldo; el caso de uso
// aplica su propio límite con el contexto.
func NewHTTPClient(cfg Config, log zerolog.Logger) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout + 5*time.Second},
		cfg:        cfg,
		log:        log,
	}
}

type stampPayload struct {
	XML string `json:"xml"` // comprobante sellado en Base64
}

type stampResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	UUID    string `json:"uuid"`
	Serie   string `json:"serie"`
	Folio   string `json:"folio"`
	XML     string `json:"xml"` // comprobante timbrado en Base64
}

type cancelPayload struct {
	UUID            string `json:"uuid"`
	IssuerRFC       string `json:"rfc_emisor"`
	ReceiverRFC     string `json:"rfc_receptor"`
	Total           string `json:"total"`
	Motive          string `json:"motivo"`
	ReplacementUUID string `json:"folio_sustitucion,omitempty"`
}

type cancelResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// SignAndRegister envía el comprobante sellado. Idempotency-Key es el id de la factura: si el PAC
// ya lo timbró responde 307 con el mismo timbre.
func (c *HTTPClient) SignAndRegister(ctx context.Context, req billing.StampRequest) (*entity.Stamp, error) {
	payload := stampPayload{XML: base64.StdEncoding.EncodeToString(req.Document)}
	var resp stampResponse
	status, err := c.post(ctx, req.Company, "/cfdi40/stamp", req.InvoiceID, payload, &resp)
	if err != nil {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: err.Error(), Err: err}
	}
	if status >= 300 && resp.Code != codePreviouslyStamped {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: reason(status, resp.Message), Code: resp.Code}
	}

	stamped, err := base64.StdEncoding.DecodeString(resp.XML)
	if err != nil || len(stamped) == 0 {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: "respuesta sin comprobante timbrado", Code: resp.Code}
	}
	f, err := readFacts(stamped)
	if err != nil {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: err.Error(), Code: resp.Code, Err: err}
	}
	st := &entity.Stamp{
		UUID:      firstNonEmpty(f.uuid, resp.UUID),
		Serie:     firstNonEmpty(resp.Serie, f.serie),
		Folio:     firstNonEmpty(resp.Folio, f.folio),
		XML:       string(stamped),
		StampedAt: f.stampedAt,
	}
	if st.UUID == "" || st.Serie == "" || st.Folio == "" {
		return nil, &domain.PacUnavailableError{Op: "timbrar", Reason: "respuesta incompleta (uuid, serie o folio)", Code: resp.Code}
	}
	if st.StampedAt.IsZero() {
		st.StampedAt = time.Now()
	}
	st.VerificationURL = sat.VerificationURL(c.cfg.VerificationURL, st.UUID, f.issuerRFC, f.receiverRFC, f.total, f.seal)

	c.log.Debug().Str("invoice_id", req.InvoiceID).Str("uuid", st.UUID).Str("code", resp.Code).Msg("respuesta de timbrado")
	return st, nil
}

// Cancel solicita la cancelación. Una factura ya cancelada en el SAT se considera éxito.
func (c *HTTPClient) Cancel(ctx context.Context, req billing.CancelRequest) error {
	if req.Company == nil {
		return &domain.PacUnavailableError{Op: "cancelar", Reason: "falta la empresa emisora"}
	}
	payload := cancelPayload{
		UUID:            req.UUID,
		IssuerRFC:       sat.NormalizeRFC(req.Company.RFC),
		ReceiverRFC:     req.ReceiverRFC,
		Total:           req.Total.StringFixed(2),
		Motive:          req.Motive,
		ReplacementUUID: req.ReplacementUUID,
	}
	var resp cancelResponse
	status, err := c.post(ctx, req.Company, "/cfdi40/cancel", "cancel:"+req.InvoiceID, payload, &resp)
	if err != nil {
		return &domain.PacUnavailableError{Op: "cancelar", Reason: err.Error(), Err: err}
	}
	if status >= 300 && resp.Code != codePreviouslyCancelled {
		return &domain.PacUnavailableError{Op: "cancelar", Reason: reason(status, resp.Message), Code: resp.Code}
	}
	c.log.Debug().Str("invoice_id", req.InvoiceID).Str("uuid", req.UUID).Str("code", resp.Code).Msg("respuesta de cancelación")
	return nil
}

// post envía JSON con autenticación básica y decodifica la respuesta aunque no sea 2xx.
func (c *HTTPClient) post(ctx context.Context, company *entity.Company, path, idempotencyKey string, payload, out any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("serializar solicitud: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(company)+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("crear request: %w", err)
	}
	user, pass := c.credentials(company)
	req.SetBasicAuth(user, pass)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return 0, fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, fmt.Errorf("leer respuesta: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil && resp.StatusCode < 300 {
			return 0, fmt.Errorf("respuesta no es JSON: %s", truncate(string(raw), 200))
		}
	}
	return resp.StatusCode, nil
}

// baseURL las empresas en modo prueba siempre usan el ambiente de pruebas.
func (c *HTTPClient) baseURL(company *entity.Company) string {
	url := c.cfg.SandboxURL
	if c.cfg.Mode == ModeProd && (company == nil || !company.Sandbox) {
		url = c.cfg.ProductionURL
	}
	return strings.TrimRight(url, "/")
}

func (c *HTTPClient) credentials(company *entity.Company) (string, string) {
	if company != nil && company.PAC.User != "" {
		return company.PAC.User, company.PAC.Password
	}
	return c.cfg.User, c.cfg.Password
}

func reason(status int, message string) string {
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Sprintf("HTTP %d: %s", status, message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ billing.PACGateway = (*HTTPClient)(nil)
