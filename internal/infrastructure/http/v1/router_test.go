package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numbering/internal/app"
	"numbering/internal/core/id"
	v1 "numbering/internal/infrastructure/http/v1"
	"numbering/internal/infrastructure/http/v1/dto"
	"numbering/internal/infrastructure/http/v1/middleware"
	"numbering/pkg/logger"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	mem    *app.Memory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	a, mem := app.NewMemory(nil)
	return &testServer{
		t:   t,
		mem: mem,
		router: v1.NewRouter(v1.RouterConfig{
			Service: a.Service,
			Logger:  logger.NewNop(),
			Health:  a.Health,
			Mode:    gin.TestMode,
		}),
	}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const customerFormat = `{
	"target": "CUSTOMER_NO",
	"scope": "GLOBAL",
	"parts": [
		{"type": "LITERAL", "options": {"value": "C"}},
		{"type": "SERIAL", "options": {"digits": 4}}
	]
}`

func TestNumberingAPI_FormatLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/numbering/formats", customerFormat)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.FormatResponse](t, w)
	assert.True(t, created.Enabled)
	assert.Equal(t, 1, created.Version)
	assert.Equal(t, 4, created.FiscalYearStartMonth)

	w = s.do(http.MethodPost, "/api/v1/numbering/formats", customerFormat)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_ENTRY", decode[middleware.ErrorResponse](t, w).Code)

	for _, want := range []string{"C0001", "C0002"} {
		w = s.do(http.MethodPost, "/api/v1/numbering/generate", map[string]any{"target": "CUSTOMER_NO"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		res := decode[dto.GenerateResponse](t, w)
		assert.Equal(t, want, res.Value)
		assert.Equal(t, created.ID, res.FormatID)
	}

	w = s.do(http.MethodGet, "/api/v1/numbering/formats/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/numbering/formats/effective?target=CUSTOMER_NO&orgId="+id.New().String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[dto.FormatResponse](t, w).ID)

	w = s.do(http.MethodGet, "/api/v1/numbering/formats?scope=GLOBAL", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.ListResponse[dto.FormatResponse]](t, w).Total)

	w = s.do(http.MethodPut, "/api/v1/numbering/formats/"+created.ID, map[string]any{"version": 1, "enabled": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[dto.FormatResponse](t, w).Version)

	w = s.do(http.MethodPut, "/api/v1/numbering/formats/"+created.ID, map[string]any{"version": 1, "enabled": true})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONCURRENT_MODIFICATION", decode[middleware.ErrorResponse](t, w).Code)

	w = s.do(http.MethodPost, "/api/v1/numbering/generate", map[string]any{"target": "CUSTOMER_NO"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "FORMAT_DISABLED", decode[middleware.ErrorResponse](t, w).Code)
}

func TestNumberingAPI_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		field  string
	}{
		{
			name:   "missing target",
			method: http.MethodPost, path: "/api/v1/numbering/formats",
			body:   `{"scope": "GLOBAL", "parts": [{"type": "LITERAL", "options": {"value": "C"}}]}`,
			status: http.StatusBadRequest, field: "target",
		},
		{
			name:   "fullwidth joiner",
			method: http.MethodPost, path: "/api/v1/numbering/formats",
			body:   `{"target": "CUSTOMER_NO", "scope": "GLOBAL", "joiner": "ー", "parts": [{"type": "LITERAL", "options": {"value": "C"}}]}`,
			status: http.StatusBadRequest, field: "joiner",
		},
		{
			name:   "unknown part type",
			method: http.MethodPost, path: "/api/v1/numbering/formats",
			body:   `{"target": "CUSTOMER_NO", "scope": "GLOBAL", "parts": [{"type": "HASH"}]}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "serial digits out of range",
			method: http.MethodPost, path: "/api/v1/numbering/formats",
			body:   `{"target": "CUSTOMER_NO", "scope": "GLOBAL", "parts": [{"type": "SERIAL", "options": {"digits": 99}}]}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "bad generate date",
			method: http.MethodPost, path: "/api/v1/numbering/generate",
			body:   map[string]any{"target": "CUSTOMER_NO", "date": "10/03/2025"},
			status: http.StatusBadRequest, field: "date",
		},
		{
			name:   "bad path id",
			method: http.MethodGet, path: "/api/v1/numbering/formats/not-a-uuid",
			status: http.StatusBadRequest,
		},
		{
			name:   "effective without target",
			method: http.MethodGet, path: "/api/v1/numbering/formats/effective",
			status: http.StatusBadRequest, field: "target",
		},
		{
			name:   "preview needs a format",
			method: http.MethodPost, path: "/api/v1/numbering/preview",
			body:   map[string]any{},
			status: http.StatusBadRequest,
		},
		{
			name:   "no format configured",
			method: http.MethodPost, path: "/api/v1/numbering/generate",
			body:   map[string]any{"target": "MANAGEMENT_NO"},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			resp := decode[middleware.ErrorResponse](t, w)
			assert.NotEmpty(t, resp.Code)
			if tt.field != "" {
				fields, ok := resp.Details["fields"].(map[string]any)
				require.True(t, ok, "expected details.fields in %s", w.Body.String())
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestNumberingAPI_Preview(t *testing.T) {
	s := newTestServer(t)
	orgID := id.New()
	s.mem.Orgs.Put(orgID, "OSK")

	w := s.do(http.MethodPost, "/api/v1/numbering/preview", map[string]any{
		"format": map[string]any{
			"joiner": "-",
			"parts": []map[string]any{
				{"type": "ORG_CODE"},
				{"type": "DATE", "options": map[string]any{"format": "YYMMDD"}},
				{"type": "SERIAL", "options": map[string]any{"digits": 3, "resetPolicy": "DAILY", "scope": "ORG"}},
			},
		},
		"sample": map[string]any{"date": "2025-03-10", "orgId": orgID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Sample string `json:"sample"`
		Parts  []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"parts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "OSK-250310-001", res.Sample)
	assert.Len(t, res.Parts, 3)

	w = s.do(http.MethodPost, "/api/v1/numbering/preview", map[string]any{
		"formatId": id.New().String(),
		"format":   map[string]any{"parts": []map[string]any{{"type": "ORG_CODE"}}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNumberingAPI_ListDisplay(t *testing.T) {
	s := newTestServer(t)
	orgID := id.New()

	w := s.do(http.MethodGet, "/api/v1/numbering/list-display", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, true, got["showCustomerNo"])
	assert.Equal(t, true, got["showManagementNo"])

	w = s.do(http.MethodPut, "/api/v1/numbering/list-display", map[string]any{
		"scope": "GLOBAL", "showCustomerNo": true, "showManagementNo": false, "version": 0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["version"])

	w = s.do(http.MethodGet, "/api/v1/numbering/list-display?orgId="+orgID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[map[string]any](t, w)
	assert.Equal(t, "GLOBAL", got["scope"], "org falls back to the global row")
	assert.Equal(t, false, got["showManagementNo"])

	w = s.do(http.MethodPut, "/api/v1/numbering/list-display", map[string]any{"scope": "GLOBAL", "version": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "both flags are required")

	w = s.do(http.MethodPut, "/api/v1/numbering/list-display", map[string]any{
		"scope": "GLOBAL", "showCustomerNo": true, "showManagementNo": true, "version": 0,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready", "/health/info"} {
		w := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.NotEmpty(t, s.do(http.MethodGet, "/health/live", nil).Header().Get("X-Request-ID"))
}
