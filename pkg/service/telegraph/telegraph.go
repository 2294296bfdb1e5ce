package telegraph

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oneiro-lab/morpheus/pkg/domain/model"
	"github.com/oneiro-lab/morpheus/pkg/utils/logging"
	"github.com/oneiro-lab/morpheus/pkg/utils/safe"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the public Telegraph API endpoint.
const DefaultBaseURL = "https://api.telegra.ph"

const defaultShortName = "morpheus"

// Account is a Telegraph publishing account.
type Account struct {
	ShortName   string `json:"short_name"`
	AuthorName  string `json:"author_name"`
	AuthorURL   string `json:"author_url"`
	AccessToken string `json:"access_token"`
	AuthURL     string `json:"auth_url"`
}

// Page is a published Telegraph page.
type Page struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorName  string `json:"author_name,omitempty"`
	Views       int    `json:"views"`
	CanEdit     bool   `json:"can_edit"`
}

// Service is the gateway to the Telegraph publishing API. The account token
// is bootstrapped lazily on first use and cached for the lifetime of the
// instance; concurrent first calls share a single bootstrap.
type Service struct {
	httpClient *http.Client
	baseURL    string
	shortName  string
	authorName string

	mu        sync.Mutex
	token     string
	bootstrap singleflight.Group
}

// Option is a functional option for Service configuration.
type Option func(*Service)

// WithHTTPClient sets the HTTP client used for API calls, e.g. one with an
// outbound proxy configured.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) {
		s.baseURL = baseURL
	}
}

// WithShortName sets the short name used when bootstrapping an account.
func WithShortName(name string) Option {
	return func(s *Service) {
		s.shortName = name
	}
}

// WithAuthorName sets the author name shown on published pages.
func WithAuthorName(name string) Option {
	return func(s *Service) {
		s.authorName = name
	}
}

// WithAccessToken seeds a pre-provisioned account token, skipping the lazy
// bootstrap.
func WithAccessToken(token string) Option {
	return func(s *Service) {
		s.token = token
	}
}

// New creates a Telegraph service.
func New(opts ...Option) *Service {
	s := &Service{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		shortName:  defaultShortName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateAccount creates a new anonymous publishing account and caches its
// access token.
func (s *Service) CreateAccount(ctx context.Context) (*Account, error) {
	params := url.Values{}
	params.Set("short_name", s.shortName)
	if s.authorName != "" {
		params.Set("author_name", s.authorName)
	}

	var account Account
	if err := s.call(ctx, "/createAccount?"+params.Encode(), nil, &account); err != nil {
		return nil, goerr.Wrap(err, "failed to create telegraph account")
	}

	s.mu.Lock()
	s.token = account.AccessToken
	s.mu.Unlock()

	logging.From(ctx).Info("telegraph account created", "short_name", account.ShortName)
	return &account, nil
}

// CreatePage publishes a page with the given title and HTML body, lazily
// bootstrapping an account if no token is cached yet.
func (s *Service) CreatePage(ctx context.Context, title, htmlContent string) (*Page, error) {
	token, err := s.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"access_token": token,
		"title":        title,
		"content":      ParseNodes(htmlContent),
	}
	if s.authorName != "" {
		body["author_name"] = s.authorName
	}

	var page Page
	if err := s.call(ctx, "/createPage", body, &page); err != nil {
		return nil, goerr.Wrap(err, "failed to create telegraph page", goerr.V("title", title))
	}

	logging.From(ctx).Info("telegraph page created", "title", title, "url", page.URL)
	return &page, nil
}

// Publish wraps CreatePage into the Outcome envelope: every fault becomes a
// failure outcome for the orchestrator to treat as non-fatal.
func (s *Service) Publish(ctx context.Context, title, htmlContent string) *model.Outcome[Page] {
	page, err := s.CreatePage(ctx, title, htmlContent)
	if err != nil {
		return model.Fail[Page]("failed to publish page: " + err.Error())
	}
	return model.OK("page published", page)
}

func (s *Service) accessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != "" {
		return token, nil
	}

	v, err, _ := s.bootstrap.Do("create-account", func() (any, error) {
		// another caller may have finished the bootstrap while we queued
		s.mu.Lock()
		token := s.token
		s.mu.Unlock()
		if token != "" {
			return token, nil
		}

		account, err := s.CreateAccount(ctx)
		if err != nil {
			return nil, err
		}
		return account.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// call issues one API request. A nil body sends GET; otherwise the body is
// POSTed as JSON. The response envelope is {ok, result|error}.
func (s *Service) call(ctx context.Context, path string, body map[string]any, result any) error {
	var req *http.Request
	var err error

	if body == nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	} else {
		var payload []byte
		payload, err = json.Marshal(body)
		if err != nil {
			return goerr.Wrap(err, "failed to encode request body")
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return goerr.Wrap(err, "failed to build request", goerr.V("path", path))
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "request failed", goerr.V("path", path))
	}
	defer safe.Close(ctx, resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read response", goerr.V("path", path))
	}

	var envelope struct {
		OK     bool            `json:"ok"`
		Error  string          `json:"error"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return goerr.Wrap(err, "malformed API response", goerr.V("path", path), goerr.V("status", resp.StatusCode))
	}
	if !envelope.OK {
		return goerr.New("API request rejected", goerr.V("path", path), goerr.V("error", envelope.Error))
	}

	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return goerr.Wrap(err, "malformed API result", goerr.V("path", path))
	}
	return nil
}
