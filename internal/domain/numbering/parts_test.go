package numbering

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePart(t *testing.T) {
	t.Run("serial defaults", func(t *testing.T) {
		p, err := DecodePart(PartSerial, []byte(`{"digits": 5}`))
		require.NoError(t, err)
		assert.Equal(t, SerialPart{
			Digits:      5,
			ResetPolicy: ResetNever,
			Scope:       SerialScopeGlobal,
			StartFrom:   0,
			Step:        1,
		}, p)
	})

	t.Run("explicit zero step is kept for validation", func(t *testing.T) {
		p, err := DecodePart(PartSerial, []byte(`{"digits": 5, "step": 0}`))
		require.NoError(t, err)
		assert.Equal(t, int64(0), p.(SerialPart).Step)
		assert.Error(t, ValidateParts(Parts{p}))
	})

	t.Run("org code needs no options", func(t *testing.T) {
		p, err := DecodePart(PartOrgCode, nil)
		require.NoError(t, err)
		assert.Equal(t, OrgCodePart{}, p)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodePart("RANDOM", []byte(`{}`))
		assert.Error(t, err)
	})

	t.Run("malformed options", func(t *testing.T) {
		_, err := DecodePart(PartDate, []byte(`{"format": 12}`))
		assert.Error(t, err)
	})
}

func TestParts_JSON(t *testing.T) {
	const wire = `[
		{"type": "LITERAL", "options": {"value": "C"}},
		{"type": "FISCAL_YEAR", "options": {"style": "YY"}},
		{"type": "ORG_CODE"},
		{"type": "SERIAL", "options": {"digits": 4, "resetPolicy": "FISCAL_YEARLY", "scope": "ORG", "startFrom": 100, "step": 10}}
	]`

	var ps Parts
	require.NoError(t, json.Unmarshal([]byte(wire), &ps))
	require.Len(t, ps, 4)
	assert.Equal(t, LiteralPart{Value: "C"}, ps[0])
	assert.Equal(t, FiscalYearPart{Style: YearStyleYY}, ps[1])
	assert.Equal(t, OrgCodePart{}, ps[2])
	assert.Equal(t, SerialPart{Digits: 4, ResetPolicy: ResetFiscalYearly, Scope: SerialScopeOrg, StartFrom: 100, Step: 10}, ps[3])

	data, err := json.Marshal(ps)
	require.NoError(t, err)

	var raw []RawPart
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 4)
	assert.Equal(t, PartSerial, raw[3].Type)
	assert.JSONEq(t, `{"digits":4,"resetPolicy":"FISCAL_YEARLY","scope":"ORG","startFrom":100,"step":10}`, string(raw[3].Options))

	t.Run("rejects unknown types", func(t *testing.T) {
		var bad Parts
		assert.Error(t, json.Unmarshal([]byte(`[{"type": "HASH"}]`), &bad))
	})

	t.Run("scans JSONB bytes and strings", func(t *testing.T) {
		var fromBytes, fromString Parts
		require.NoError(t, fromBytes.Scan([]byte(wire)))
		require.NoError(t, fromString.Scan(wire))
		assert.Equal(t, ps, fromBytes)
		assert.Equal(t, ps, fromString)
		assert.Error(t, fromBytes.Scan(42))
	})
}
