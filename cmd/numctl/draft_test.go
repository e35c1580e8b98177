package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbering/internal/domain/numbering"
)

func TestReadDraft(t *testing.T) {
	t.Run("decodes parts and applies defaults", func(t *testing.T) {
		req, err := readDraft(strings.NewReader(`
joiner: "-"
parts:
  - type: LITERAL
    options: {value: C}
  - type: SERIAL
    options:
      digits: 4
      resetPolicy: YEARLY
`))
		require.NoError(t, err)

		assert.Equal(t, "CUSTOMER_NO", req.Target)
		assert.Equal(t, "GLOBAL", req.Scope)
		require.NotNil(t, req.Joiner)
		assert.Equal(t, "-", *req.Joiner)
		require.Len(t, req.Parts, 2)
		assert.Equal(t, numbering.LiteralPart{Value: "C"}, req.Parts[0])

		serial, ok := req.Parts[1].(numbering.SerialPart)
		require.True(t, ok)
		assert.Equal(t, 4, serial.Digits)
		assert.Equal(t, numbering.ResetYearly, serial.ResetPolicy)
		assert.Equal(t, int64(1), serial.Step)
	})

	t.Run("rejects unknown part types", func(t *testing.T) {
		_, err := readDraft(strings.NewReader(`
parts:
  - type: RANDOM
`))
		assert.Error(t, err)
	})

	t.Run("rejects a draft without parts", func(t *testing.T) {
		_, err := readDraft(strings.NewReader("target: CUSTOMER_NO\n"))
		assert.Error(t, err)
	})

	t.Run("rejects an empty document", func(t *testing.T) {
		_, err := readDraft(strings.NewReader(""))
		assert.Error(t, err)
	})
}
