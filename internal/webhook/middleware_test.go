package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type stubWebhookConfig struct {
	signingKey string
}

func (c stubWebhookConfig) GetMailgunSigningKey() string { return c.signingKey }

func sign(key, timestamp, token string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(timestamp + token))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	key := "test-signing-key"
	timestamp := "1700000000"
	token := "abc123"

	if !VerifySignature(key, timestamp, token, sign(key, timestamp, token)) {
		t.Fatal("expected valid signature to verify")
	}
	if VerifySignature(key, timestamp, token, sign("wrong-key", timestamp, token)) {
		t.Fatal("expected signature under wrong key to fail")
	}
	if VerifySignature(key, timestamp, "other-token", sign(key, timestamp, token)) {
		t.Fatal("expected signature over different token to fail")
	}
	if VerifySignature(key, timestamp, token, "not-hex") {
		t.Fatal("expected malformed signature to fail")
	}
	if VerifySignature("", timestamp, token, sign("", timestamp, token)) {
		t.Fatal("expected empty signing key to fail closed")
	}
}

func postSignedForm(t *testing.T, engine *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSignatureMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key := "test-signing-key"

	engine := gin.New()
	engine.POST("/webhook", SignatureMiddleware(stubWebhookConfig{signingKey: key}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	freshTS := fmt.Sprintf("%d", time.Now().Unix())
	staleTS := fmt.Sprintf("%d", time.Now().Add(-time.Hour).Unix())

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
	}{
		{
			name: "valid signature passes",
			form: url.Values{
				"timestamp": {freshTS},
				"token":     {"tok-1"},
				"signature": {sign(key, freshTS, "tok-1")},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing signature rejected",
			form:       url.Values{"timestamp": {freshTS}, "token": {"tok-1"}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "stale timestamp rejected",
			form: url.Values{
				"timestamp": {staleTS},
				"token":     {"tok-1"},
				"signature": {sign(key, staleTS, "tok-1")},
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "tampered token rejected",
			form: url.Values{
				"timestamp": {freshTS},
				"token":     {"tok-2"},
				"signature": {sign(key, freshTS, "tok-1")},
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "non-numeric timestamp rejected",
			form: url.Values{
				"timestamp": {"yesterday"},
				"token":     {"tok-1"},
				"signature": {sign(key, "yesterday", "tok-1")},
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postSignedForm(t, engine, tt.form)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
