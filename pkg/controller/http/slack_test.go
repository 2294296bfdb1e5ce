package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
)

const testSigningSecret = "8f742231b10e8888abcd99yyyzzz85a5"

func signBody(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "v0:%s:%s", timestamp, body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySlackSignature(t *testing.T) {
	body := []byte(`{"type":"url_verification","challenge":"abc"}`)
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	t.Run("accepts valid signature", func(t *testing.T) {
		sig := signBody(testSigningSecret, timestamp, body)
		gt.NoError(t, verifySlackSignature(testSigningSecret, timestamp, sig, body))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		sig := signBody("other-secret", timestamp, body)
		gt.Error(t, verifySlackSignature(testSigningSecret, timestamp, sig, body))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		sig := signBody(testSigningSecret, timestamp, body)
		gt.Error(t, verifySlackSignature(testSigningSecret, timestamp, sig, []byte(`{}`)))
	})

	t.Run("rejects stale timestamp", func(t *testing.T) {
		old := strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10)
		sig := signBody(testSigningSecret, old, body)
		gt.Error(t, verifySlackSignature(testSigningSecret, old, sig, body))
	})

	t.Run("rejects missing headers", func(t *testing.T) {
		gt.Error(t, verifySlackSignature(testSigningSecret, "", "sig", body))
		gt.Error(t, verifySlackSignature(testSigningSecret, timestamp, "", body))
	})
}

func TestSlackSignatureMiddleware(t *testing.T) {
	var reachedBody string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		reachedBody = string(data)
		w.WriteHeader(http.StatusOK)
	})
	handler := SlackSignatureMiddleware(testSigningSecret)(inner)

	t.Run("signed request passes with body intact", func(t *testing.T) {
		body := `{"type":"event_callback"}`
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", signBody(testSigningSecret, timestamp, []byte(body)))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		gt.Value(t, w.Code).Equal(http.StatusOK)
		gt.Value(t, reachedBody).Equal(body)
	})

	t.Run("unsigned request is rejected with 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader("{}"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("bad signature is rejected with 401", func(t *testing.T) {
		timestamp := strconv.FormatInt(time.Now().Unix(), 10)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader("{}"))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", "v0=deadbeef")

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		gt.Value(t, w.Code).Equal(http.StatusUnauthorized)
	})
}
