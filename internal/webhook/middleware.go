package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mailmind_backend/platform/config"
)

// maxSignatureAge bounds replay of captured webhook payloads.
const maxSignatureAge = 5 * time.Minute

// VerifySignature checks a Mailgun webhook signature: hex-encoded
// HMAC-SHA256 of timestamp+token under the account signing key.
func VerifySignature(signingKey, timestamp, token, signature string) bool {
	if signingKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(timestamp + token))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}

// SignatureMiddleware rejects inbound webhook calls whose Mailgun signature
// is missing, stale, or wrong. Runs before the handler touches the payload.
func SignatureMiddleware(cfg config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		timestamp := c.PostForm("timestamp")
		token := c.PostForm("token")
		signature := c.PostForm("signature")
		if timestamp == "" || token == "" || signature == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
			return
		}

		ts, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature timestamp"})
			return
		}
		age := time.Since(time.Unix(ts, 0))
		if age < 0 {
			age = -age
		}
		if age > maxSignatureAge {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "stale signature"})
			return
		}

		if !VerifySignature(cfg.GetMailgunSigningKey(), timestamp, token, signature) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}

		c.Next()
	}
}
