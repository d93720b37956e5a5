package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/truthlens/internal/model"
	"github.com/ppiankov/truthlens/internal/pipeline"
)

type fakeAnalyzer struct {
	result *model.AggregateResult
	err    error
	last   model.AnalysisRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req model.AnalysisRequest) (*model.AggregateResult, error) {
	f.last = req
	return f.result, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	s := New(&fakeAnalyzer{}, model.ServerConfig{}, nil)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	rec := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","timestamp":"2026-01-02T03:04:05Z"}`, rec.Body.String())
}

func TestAnalyze_OK(t *testing.T) {
	opinion := model.OpinionResult()
	analyzer := &fakeAnalyzer{result: &opinion}
	s := New(analyzer, model.ServerConfig{}, nil)

	rec := do(t, s, http.MethodPost, "/api/analyze", `{"content":"I think so","url":"https://x.example"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I think so", analyzer.last.Content)
	assert.Equal(t, "https://x.example", analyzer.last.URL)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Nil(t, body["claim"])
	assert.Equal(t, "Opinion", body["verdict"])
	assert.Equal(t, float64(50), body["truthScore"])
	assert.Equal(t, []any{}, body["supportingSources"])
	assert.Equal(t, model.Disclaimer, body["disclaimer"])
	assert.NotContains(t, body, "factCheckStatus")
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		desc    string
		body    string
		err     error
		status  int
		message string
	}{
		{"Missing input", `{}`, &pipeline.InputError{Message: pipeline.MsgNoInput, Err: pipeline.ErrNoInput}, http.StatusBadRequest, pipeline.MsgNoInput},
		{"Empty body", ``, &pipeline.InputError{Message: pipeline.MsgNoInput, Err: pipeline.ErrNoInput}, http.StatusBadRequest, pipeline.MsgNoInput},
		{"Extraction failure", `{"url":"https://x.example"}`, &pipeline.InputError{Message: pipeline.MsgExtractionFailed, Err: errors.New("404")}, http.StatusBadRequest, pipeline.MsgExtractionFailed},
		{"Internal", `{"content":"The sky is blue."}`, &pipeline.InternalError{RequestID: "r", Err: errors.New("secret detail")}, http.StatusInternalServerError, pipeline.MsgInternal},
		{"Malformed JSON", `{"content":`, nil, http.StatusBadRequest, MsgInvalidBody},
		{"Wrong type", `{"content":42}`, nil, http.StatusBadRequest, MsgInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			s := New(&fakeAnalyzer{err: tt.err}, model.ServerConfig{}, nil)
			rec := do(t, s, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeError(t, rec))
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestAnalyze_LongURL(t *testing.T) {
	longURL := "https://x.example/" + strings.Repeat("a", 3000)

	opinion := model.OpinionResult()
	analyzer := &fakeAnalyzer{result: &opinion}
	s := New(analyzer, model.ServerConfig{}, nil)

	rec := do(t, s, http.MethodPost, "/api/analyze", `{"content":"I think so","url":"`+longURL+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I think so", analyzer.last.Content)

	// Without content the url reaches the pipeline and fails there
	analyzer = &fakeAnalyzer{err: &pipeline.InputError{Message: pipeline.MsgExtractionFailed, Err: errors.New("404")}}
	s = New(analyzer, model.ServerConfig{}, nil)
	rec = do(t, s, http.MethodPost, "/api/analyze", `{"url":"`+longURL+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, pipeline.MsgExtractionFailed, decodeError(t, rec))
	assert.Equal(t, longURL, analyzer.last.URL)
}

func TestAnalyze_BodyLimit(t *testing.T) {
	s := New(&fakeAnalyzer{}, model.ServerConfig{MaxBodyBytes: 32}, nil)
	rec := do(t, s, http.MethodPost, "/api/analyze", `{"content":"`+strings.Repeat("a", 100)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORS(t *testing.T) {
	s := New(&fakeAnalyzer{}, model.ServerConfig{AllowedOrigins: []string{"https://app.example"}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
