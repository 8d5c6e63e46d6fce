package pac

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/internal/application/billing"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
)

const testCertNumber = "30001000000500003416"

var issuedAt = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// testCSD genera un par PEM cuyo número de serie codifica el NoCertificado como lo hace el SAT.
func testCSD(t *testing.T) (entity.CSD, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: new(big.Int).SetBytes([]byte(testCertNumber)),
		Subject:      pkix.Name{CommonName: "ESCUELA KEMPER URGATE", SerialNumber: "EKU9003173C9"},
		NotBefore:    issuedAt.AddDate(-1, 0, 0),
		NotAfter:     issuedAt.AddDate(3, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	return entity.CSD{
		Certificate: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		PrivateKey:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
		NotAfter:    tmpl.NotAfter,
	}, key
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func documentInput(csd entity.CSD) billing.DocumentInput {
	company := &entity.Company{
		ID:        "c-1",
		RFC:       "EKU9003173C9",
		LegalName: "ESCUELA KEMPER URGATE",
		TaxRegime: "601",
		Address:   entity.FiscalAddress{ZipCode: "06600"},
		CSD:       csd,
	}
	customer := &entity.Customer{
		ID: "cust-1", Name: "Xochilt",
		Fiscal: entity.FiscalFields{RFC: "XIQB891116QE4", LegalName: "XOCHILT CASAS CHAVEZ", TaxRegime: "612", ZipCode: "10740", CfdiUse: "G03"},
	}
	inv := &entity.Invoice{
		ID:       "inv-1",
		Status:   entity.InvoiceStatusPending,
		Subtotal: dec("400.00"),
		Taxes:    dec("64.00"),
		Total:    dec("464.00"),
		Items: []entity.InvoiceItem{
			{
				Description: "Café molido", SatProductKey: "50201706", SatUnitKey: "H87",
				Quantity: dec("3"), UnitPrice: dec("100.00"), Subtotal: dec("300.00"),
				IVARate: dec("0.16"), IVA: dec("48.00"), IEPS: decimal.Zero, IEPSRate: decimal.Zero,
			},
			{
				Description: "Azúcar", SatProductKey: "50161509", SatUnitKey: "KGM",
				Quantity: dec("1"), UnitPrice: dec("100.00"), Subtotal: dec("100.00"),
				IVARate: dec("0.16"), IVA: dec("16.00"), IEPS: decimal.Zero, IEPSRate: decimal.Zero,
			},
		},
	}
	return billing.DocumentInput{
		Invoice:  inv,
		Sale:     &entity.Sale{ID: "sale-1", Customer: customer},
		Company:  company,
		IssuedAt: issuedAt,
	}
}
