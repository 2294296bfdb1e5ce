package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
	httpctrl "github.com/oneiro-lab/morpheus/pkg/controller/http"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/repository/memory"
	"github.com/oneiro-lab/morpheus/pkg/service/insight"
	"github.com/oneiro-lab/morpheus/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct{}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	return &gollem.Response{Texts: []string{"Interesting symbolism"}}, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, options ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, options ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct{}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func newTestServer(t *testing.T, opts ...httpctrl.Options) *httpctrl.Server {
	t.Helper()
	uc := usecase.New(memory.New(), insight.New(&mockLLMClient{}))
	srv, err := httpctrl.New(uc, opts...)
	gt.NoError(t, err).Required()
	return srv
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	gt.NoError(t, err).Required()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeOutcome(t *testing.T, w *httptest.ResponseRecorder) *model.Outcome[model.Memory] {
	t.Helper()
	var out model.Outcome[model.Memory]
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&out)).Required()
	return &out
}

func TestAddMemory(t *testing.T) {
	t.Run("valid input creates a memory", func(t *testing.T) {
		srv := newTestServer(t)

		w := postJSON(t, srv, "/api/add", map[string]string{
			"title":   "Dream A",
			"content": "I flew over a city",
		})
		gt.Value(t, w.Code).Equal(http.StatusOK)

		out := decodeOutcome(t, w)
		gt.Bool(t, out.Success).True()
		gt.Value(t, out.Content).NotNil()
		gt.Value(t, out.Content.Title).Equal("Dream A")
		gt.Value(t, out.Content.AIThoughts).NotNil()
	})

	t.Run("blank title is rejected with 400", func(t *testing.T) {
		srv := newTestServer(t)

		w := postJSON(t, srv, "/api/add", map[string]string{
			"title":   "",
			"content": "I flew over a city",
		})
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("malformed JSON is rejected with 400", func(t *testing.T) {
		srv := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/add", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})
}

func TestGetMemory(t *testing.T) {
	srv := newTestServer(t)
	created := decodeOutcome(t, postJSON(t, srv, "/api/add", map[string]string{
		"title":   "Dream A",
		"content": "I flew over a city",
	}))
	gt.Bool(t, created.Success).True()

	t.Run("existing memory returns success envelope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/memory/1", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		out := decodeOutcome(t, w)
		gt.Bool(t, out.Success).True()
		gt.Value(t, out.Content.Title).Equal("Dream A")
	})

	t.Run("missing memory returns failure envelope with 200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/memory/999", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		out := decodeOutcome(t, w)
		gt.Bool(t, out.Success).False()
		gt.Value(t, out.Message).NotEqual("")
		gt.Value(t, out.Content).Nil()
	})

	t.Run("malformed ID returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/memory/abc", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusBadRequest)
	})
}

func TestUpdateMemory(t *testing.T) {
	srv := newTestServer(t)
	created := decodeOutcome(t, postJSON(t, srv, "/api/add", map[string]string{
		"title":   "Dream A",
		"content": "I flew over a city",
	}))
	gt.Bool(t, created.Success).True()

	t.Run("patch updates only given fields", func(t *testing.T) {
		payload, err := json.Marshal(map[string]string{"title": "Dream A (revised)"})
		gt.NoError(t, err).Required()
		req := httptest.NewRequest(http.MethodPatch, "/api/memory/1", bytes.NewReader(payload))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		out := decodeOutcome(t, w)
		gt.Bool(t, out.Success).True()
		gt.Value(t, out.Content.Title).Equal("Dream A (revised)")
		gt.Value(t, out.Content.Content).Equal("I flew over a city")
	})

	t.Run("missing memory returns failure envelope", func(t *testing.T) {
		payload := []byte(`{"title":"x"}`)
		req := httptest.NewRequest(http.MethodPatch, "/api/memory/999", bytes.NewReader(payload))
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		out := decodeOutcome(t, w)
		gt.Bool(t, out.Success).False()
	})
}

func TestDeleteMemory(t *testing.T) {
	srv := newTestServer(t)
	created := decodeOutcome(t, postJSON(t, srv, "/api/add", map[string]string{
		"title":   "Dream A",
		"content": "I flew over a city",
	}))
	gt.Bool(t, created.Success).True()

	t.Run("delete succeeds once", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/delete/1", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		var out model.Outcome[struct{}]
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&out)).Required()
		gt.Bool(t, out.Success).True()
	})

	t.Run("second delete reports failure", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/delete/1", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		var out model.Outcome[struct{}]
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&out)).Required()
		gt.Bool(t, out.Success).False()
	})
}

func TestBotURL(t *testing.T) {
	t.Run("unconfigured returns 404", func(t *testing.T) {
		srv := newTestServer(t)
		req := httptest.NewRequest(http.MethodGet, "/api/bot", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("configured returns the URL as text", func(t *testing.T) {
		srv := newTestServer(t, httpctrl.WithBotURL("https://slack.com/app_redirect?app=A0001"))
		req := httptest.NewRequest(http.MethodGet, "/api/bot", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, w.Body.String()).Equal("https://slack.com/app_redirect?app=A0001")
	})
}

func TestStaticPages(t *testing.T) {
	srv := newTestServer(t)

	t.Run("index page is served", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Bool(t, strings.Contains(w.Body.String(), "Morpheus")).True()
	})

	t.Run("memory page is served", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/memory/1", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusOK)
	})

	t.Run("static assets are served", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/static/css/style.css", nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusOK)
	})
}
