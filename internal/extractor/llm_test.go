package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/vehicle"
)

func chatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat["type"])
		assert.Len(t, req.Messages, 2)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestLLM(url string) *LLM {
	return NewLLM(LLMOptions{BaseURL: url + "/v1/", APIKey: "test-key", Timeout: 5 * time.Second}, testCompiler())
}

func TestLLMExtract(t *testing.T) {
	srv := chatServer(t, "```json\n{\"make\":\"GMC\",\"model\":\"Sierra\",\"series\":\"2500HD\",\"year\":2024}\n```", http.StatusOK)

	bundle, err := newTestLLM(srv.URL).Extract(context.Background(), "2024 sierra 2500")
	require.NoError(t, err)
	assert.Equal(t, "2024 sierra 2500", bundle.Query)
	assert.Equal(t, len(vehicle.Retailers()), bundle.Compiled())
	assert.Contains(t, bundle.Get(vehicle.RetailerAutotrader).URL, "GMC2500HDPU")
}

func TestLLMExtractNoResult(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"null", "null"},
		{"empty", ""},
		{"error only", `{"error":"not a vehicle"}`},
		{"no identity", `{"make":"GMC"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.content, http.StatusOK)
			_, err := newTestLLM(srv.URL).Extract(context.Background(), "something")
			assert.ErrorIs(t, err, ErrNoResult)
		})
	}
}

func TestLLMExtractTransportError(t *testing.T) {
	srv := chatServer(t, "", http.StatusInternalServerError)
	_, err := newTestLLM(srv.URL).Extract(context.Background(), "gmc sierra")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoResult))
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences(`  {"a":1} `))
	assert.Equal(t, "", stripFences("```"))
}

type stubExtractor struct {
	bundle *vehicle.FilterBundle
	err    error
	calls  int
}

func (s *stubExtractor) Extract(context.Context, string) (*vehicle.FilterBundle, error) {
	s.calls++
	return s.bundle, s.err
}

func TestChain(t *testing.T) {
	failing := &stubExtractor{err: errors.New("timeout")}
	empty := &stubExtractor{}
	ok := &stubExtractor{bundle: &vehicle.FilterBundle{Query: "q"}}
	unused := &stubExtractor{bundle: &vehicle.FilterBundle{Query: "other"}}

	bundle, err := Chain{failing, empty, ok, unused}.Extract(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "q", bundle.Query)
	assert.Equal(t, 0, unused.calls)

	_, err = Chain{failing, &stubExtractor{err: ErrNoResult}}.Extract(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoResult)
	assert.Contains(t, err.Error(), "timeout")

	_, err = Chain{empty}.Extract(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestNew(t *testing.T) {
	_, isPattern := New(LLMOptions{}, testCompiler()).(*Pattern)
	assert.True(t, isPattern)

	chain, isChain := New(LLMOptions{BaseURL: "http://localhost"}, testCompiler()).(Chain)
	require.True(t, isChain)
	assert.Len(t, chain, 2)
}
