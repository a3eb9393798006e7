package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anpi-survey/backend/pkg/response"
)

// SignatureHeader carries the hex HMAC-SHA1 of the webhook body.
const SignatureHeader = "X-Spark-Signature"

const maxWebhookBody = 1 << 20

// WebexSignature rejects webhook deliveries whose signature does not match secret.
// An empty secret disables the check.
func WebexSignature(secret string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			response.BadRequest(c, "unreadable body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !ValidSignature(secret, body, c.GetHeader(SignatureHeader)) {
			logger.Warn("webhook signature mismatch", zap.String("path", c.Request.URL.Path))
			response.Unauthorized(c, "invalid signature")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Sign returns the hex HMAC-SHA1 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidSignature compares signature against the expected digest in constant time.
func ValidSignature(secret string, body []byte, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil || len(got) == 0 {
		return false
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	return hmac.Equal(got, want)
}
