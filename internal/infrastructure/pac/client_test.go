package pac

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

// fakePAC responde como el API del PAC usando el SandboxGateway para timbrar.
func fakePAC(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *HTTPClient) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	client := NewHTTPClient(Config{
		Mode:          ModeProd,
		SandboxURL:    srv.URL + "/sandbox",
		ProductionURL: srv.URL + "/prod",
		User:          "pac-user",
		Password:      "pac-pass",
		Timeout:       time.Second,
	}, zerolog.Nop())
	return srv, client
}

func signedRequest(t *testing.T) billing.StampRequest {
	t.Helper()
	csd, _ := testCSD(t)
	in := documentInput(csd)
	signed, err := NewSealer().SignedDocument(in)
	require.NoError(t, err)
	return billing.StampRequest{InvoiceID: "inv-1", Company: in.Company, Document: signed}
}

func TestHTTPClient_Timbra(t *testing.T) {
	local := NewSandboxGateway("")
	var seenPath, seenKey, seenUser string
	_, client := fakePAC(t, func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		seenKey = r.Header.Get("Idempotency-Key")
		seenUser, _, _ = r.BasicAuth()
		var p stampPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		raw, err := base64.StdEncoding.DecodeString(p.XML)
		require.NoError(t, err)
		st, err := local.SignAndRegister(r.Context(), billing.StampRequest{InvoiceID: seenKey, Document: raw})
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(stampResponse{Code: "200", UUID: st.UUID, XML: base64.StdEncoding.EncodeToString([]byte(st.XML))})
	})

	req := signedRequest(t)
	st, err := client.SignAndRegister(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "/prod/cfdi40/stamp", seenPath)
	assert.Equal(t, "inv-1", seenKey)
	assert.Equal(t, "pac-user", seenUser)
	assert.Equal(t, "DEV", st.Serie)
	assert.Equal(t, "1", st.Folio)
	assert.NotEmpty(t, st.UUID)
	assert.Contains(t, st.VerificationURL, "rr=XIQB891116QE4")
	assert.False(t, st.StampedAt.IsZero())
}

func TestHTTPClient_EmpresaEnPruebasUsaURLDePruebas(t *testing.T) {
	var seenPath, seenUser string
	_, client := fakePAC(t, func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		seenUser, _, _ = r.BasicAuth()
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	company := &entity.Company{RFC: "EKU9003173C9", Sandbox: true, PAC: entity.PACCredentials{User: "empresa", Password: "x"}}
	err := client.Cancel(context.Background(), billing.CancelRequest{InvoiceID: "inv-1", UUID: "u", Motive: "02", Company: company})
	require.ErrorIs(t, err, domain.ErrPacUnavailable)
	assert.Equal(t, "/sandbox/cfdi40/cancel", seenPath)
	assert.Equal(t, "empresa", seenUser)
}

func TestHTTPClient_PreviamenteTimbradoEsExito(t *testing.T) {
	local := NewSandboxGateway("")
	_, client := fakePAC(t, func(w http.ResponseWriter, r *http.Request) {
		var p stampPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		raw, _ := base64.StdEncoding.DecodeString(p.XML)
		st, _ := local.SignAndRegister(r.Context(), billing.StampRequest{InvoiceID: "inv-1", Document: raw})
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(stampResponse{
			Code: codePreviouslyStamped, Message: "CFDI previamente timbrado",
			XML: base64.StdEncoding.EncodeToString([]byte(st.XML)),
		})
	})
	req := signedRequest(t)
	first, err := client.SignAndRegister(context.Background(), req)
	require.NoError(t, err)
	second, err := client.SignAndRegister(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.UUID, second.UUID)
}

func TestHTTPClient_RechazoIncluyeMotivo(t *testing.T) {
	_, client := fakePAC(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(stampResponse{Code: "CFDI40145", Message: "El RFC del receptor no existe"})
	})
	_, err := client.SignAndRegister(context.Background(), signedRequest(t))
	var perr *domain.PacUnavailableError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "CFDI40145", perr.Code)
	assert.Contains(t, perr.Reason, "RFC del receptor")
	assert.False(t, perr.Unknown)
}

func TestHTTPClient_TimeoutEnvuelveDeadline(t *testing.T) {
	release := make(chan struct{})
	_, client := fakePAC(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.SignAndRegister(ctx, signedRequest(t))
	require.ErrorIs(t, err, domain.ErrPacUnavailable)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPClient_CancelarYaCancelada(t *testing.T) {
	var got cancelPayload
	_, client := fakePAC(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(cancelResponse{Code: codePreviouslyCancelled, Message: "UUID previamente cancelado"})
	})
	err := client.Cancel(context.Background(), billing.CancelRequest{
		InvoiceID: "inv-1", UUID: "u-1", ReceiverRFC: "XIQB891116QE4", Total: dec("464"),
		Motive: "01", ReplacementUUID: "u-2", Company: &entity.Company{RFC: "eku9003173c9"},
	})
	require.NoError(t, err)
	assert.Equal(t, "EKU9003173C9", got.IssuerRFC)
	assert.Equal(t, "464.00", got.Total)
	assert.Equal(t, "u-2", got.ReplacementUUID)
}
