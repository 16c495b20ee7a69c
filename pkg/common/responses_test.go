package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondJSON(rec, http.StatusCreated, map[string]string{"id": "proj_1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"id":"proj_1"}}`, rec.Body.String())
}

func TestRespondWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	count := 2

	RespondWithMeta(rec, http.StatusOK, []string{"a", "b"}, &MetaInfo{RequestID: "req-1", Count: &count})

	var resp struct {
		Success bool     `json:"success"`
		Data    []string `json:"data"`
		Meta    MetaInfo `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
	assert.Equal(t, "req-1", resp.Meta.RequestID)
	assert.NotEmpty(t, resp.Meta.Timestamp)
	require.NotNil(t, resp.Meta.Count)
	assert.Equal(t, 2, *resp.Meta.Count)
}

func TestRespondNoContent(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondNoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestParseJSONBody(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		payload string
		limit   int64
		wantErr bool
	}{
		{name: "valid", payload: `{"name":"Notes"}`, limit: 1024},
		{name: "unknown field", payload: `{"name":"Notes","extra":1}`, limit: 1024, wantErr: true},
		{name: "too large", payload: `{"name":"` + strings.Repeat("x", 64) + `"}`, limit: 16, wantErr: true},
		{name: "malformed", payload: `{`, limit: 1024, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.payload))
			var b body

			err := ParseJSONBody(rec, req, &b, tt.limit)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Notes", b.Name)
		})
	}
}
