package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prooflens/prooflens/internal/analysis"
	"github.com/prooflens/prooflens/internal/analysis/openai"
)

type stubAnalyzer struct {
	result   analysis.Result
	err      error
	lastText string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	s.lastText = req.Text
	return s.result, s.err
}

func postGrammar(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/grammar", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeHandler_ReturnsErrorCount(t *testing.T) {
	stub := &stubAnalyzer{result: analysis.Result{ErrorCount: 3}}
	h := NewAnalyzeHandler(stub)

	rec := postGrammar(t, h, `{"text": "Превед, как дила?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	require.JSONEq(t, `{"errorCount": 3}`, rec.Body.String())
	require.Equal(t, "Превед, как дила?", stub.lastText)
}

func TestAnalyzeHandler_RejectsMissingText(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "hello"},
		{"no text field", `{}`},
		{"empty text", `{"text": ""}`},
		{"text not a string", `{"text": 5}`},
		{"json array", `[1,2,3]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubAnalyzer{}
			rec := postGrammar(t, NewAnalyzeHandler(stub), tc.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.JSONEq(t, `{"error": "Provide body { \"text\": string }"}`, rec.Body.String())
			require.Empty(t, stub.lastText)
		})
	}
}

func TestAnalyzeHandler_RejectsOverlongText(t *testing.T) {
	stub := &stubAnalyzer{}
	body := `{"text": "` + strings.Repeat("ы", analysis.MaxTextLength+1) + `"}`

	rec := postGrammar(t, NewAnalyzeHandler(stub), body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error": "Text too long (max 4000 chars)"}`, rec.Body.String())
	require.Empty(t, stub.lastText)
}

func TestAnalyzeHandler_AcceptsTextAtLimit(t *testing.T) {
	stub := &stubAnalyzer{result: analysis.Result{ErrorCount: 0}}
	body := `{"text": "` + strings.Repeat("ы", analysis.MaxTextLength) + `"}`

	rec := postGrammar(t, NewAnalyzeHandler(stub), body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"errorCount": 0}`, rec.Body.String())
}

func TestAnalyzeHandler_RelaysUpstreamErrorBody(t *testing.T) {
	stub := &stubAnalyzer{err: &openai.UpstreamError{
		StatusCode: http.StatusUnauthorized,
		Body:       []byte(`{"error": {"message": "Incorrect API key", "type": "invalid_request_error"}}`),
	}}

	rec := postGrammar(t, NewAnalyzeHandler(stub), `{"text": "проверь"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t,
		`{"error": {"message": "Incorrect API key", "type": "invalid_request_error"}}`,
		rec.Body.String())
}

func TestAnalyzeHandler_UpstreamErrorWithoutJSONBody(t *testing.T) {
	stub := &stubAnalyzer{err: &openai.UpstreamError{
		StatusCode: http.StatusBadGateway,
		Body:       []byte("<html>bad gateway</html>"),
	}}

	rec := postGrammar(t, NewAnalyzeHandler(stub), `{"text": "проверь"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.JSONEq(t, `{"error": "upstream error"}`, rec.Body.String())
}

func TestAnalyzeHandler_TransportFailureIsInternal(t *testing.T) {
	stub := &stubAnalyzer{err: errors.New("dial tcp: connection refused")}

	rec := postGrammar(t, NewAnalyzeHandler(stub), `{"text": "проверь"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error": "analysis failed"}`, rec.Body.String())
}
