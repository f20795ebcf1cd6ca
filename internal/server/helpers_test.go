package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"rows": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"rows":3}`, rec.Body.String())
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusOK, map[string]float64{"value": math.Inf(1)})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	assert.Equal(t, codeEncodeFailed, resp.Code)
	assert.Contains(t, resp.Error, "unsupported value")
}

func TestRequireMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/funds/selected", nil)

	assert.True(t, RequireMethod(rec, req, http.MethodPost))
	assert.False(t, RequireMethod(rec, req, http.MethodGet, http.MethodPut))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, PUT", rec.Header().Get("Allow"))
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"fund":"FundA"}`, true},
		{"empty", ``, false},
		{"malformed", `{"fund":`, false},
		{"trailing value", `{"fund":"A"}{"fund":"B"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/api/funds/selected", strings.NewReader(tt.body))

			var v selectedFundRequest
			assert.Equal(t, tt.ok, DecodeJSON(rec, req, &v))
			if tt.ok {
				assert.Equal(t, "FundA", v.Fund)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, codeInvalidJSON, resp.Code)
		})
	}
}
