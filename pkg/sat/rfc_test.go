package sat_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-cfdi/pkg/sat"
)

func TestValidateRFC_Casos(t *testing.T) {
	cases := []struct {
		name  string
		rfc   string
		valid bool
	}{
		{"persona moral", "EKU9003173C9", true},
		{"persona física", "XIQB891116QE4", true},
		{"minúsculas y guiones", "eku-900317-3c9", true},
		{"genérico", sat.GenericRFC, true},
		{"vacío", "", false},
		{"corto", "ABC12345", false},
		{"mes inválido", "EKU9013173C9", false},
		{"día cero", "EKU9003003C9", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := sat.ValidateRFC(tc.rfc)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRFC_PersonaMoralYGenericos(t *testing.T) {
	assert.True(t, sat.IsLegalEntity("EKU9003173C9"))
	assert.False(t, sat.IsLegalEntity("XIQB891116QE4"))
	assert.True(t, sat.IsGenericRFC("xaxx010101000"))
	assert.True(t, sat.IsGenericRFC(sat.ForeignRFC))
	assert.False(t, sat.IsGenericRFC("EKU9003173C9"))
}

func TestCatalogo_Claves(t *testing.T) {
	assert.True(t, sat.ValidProductKey("01010101"))
	assert.False(t, sat.ValidProductKey("0101010"))
	assert.True(t, sat.ValidUnitKey("H87"))
	assert.False(t, sat.ValidUnitKey("h87x"))
	assert.True(t, sat.ValidZipCode("06600"))
	assert.False(t, sat.ValidZipCode("6600"))
	assert.True(t, sat.ValidTaxRegime("601"))
	assert.False(t, sat.ValidTaxRegime("999"))
	assert.True(t, sat.ValidCfdiUse("G03"))
	assert.True(t, sat.ValidCancelMotive("02"))
	assert.False(t, sat.ValidCancelMotive("05"))
}

func TestVerificationURL_Formato(t *testing.T) {
	u := sat.VerificationURL("", "5FB2822E-396D-4725-8521-CDC4BDD20CCF",
		"EKU9003173C9", "XAXX010101000", decimal.RequireFromString("116.00"), "abcdefghijKLMNOPQR")
	require.Contains(t, u, sat.VerificationBaseURL+"?")
	assert.Contains(t, u, "id=5FB2822E-396D-4725-8521-CDC4BDD20CCF")
	assert.Contains(t, u, "tt=116.000000")
	assert.Contains(t, u, "fe=KLMNOPQR")
}
