package discord

import (
	"crypto/ed25519"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Signature headers set by Discord on every interactions endpoint request.
const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// VerifyMiddleware authenticates inbound interaction requests against the
// application's ed25519 public key. Requests with a missing or invalid
// signature are rejected with 401; Discord probes the endpoint with bad
// signatures on registration and expects exactly that.
func VerifyMiddleware(publicKeyHex string, logger *zap.Logger) fiber.Handler {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		logger.Warn("DISCORD_PUBLIC_KEY missing or malformed, all interactions will be rejected")
		key = nil
	}
	publicKey := ed25519.PublicKey(key)

	return func(c *fiber.Ctx) error {
		if publicKey == nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		sig, err := hex.DecodeString(c.Get(HeaderSignature))
		if err != nil || len(sig) != ed25519.SignatureSize {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		timestamp := c.Get(HeaderTimestamp)
		if timestamp == "" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		message := append([]byte(timestamp), c.Body()...)
		if !ed25519.Verify(publicKey, message, sig) {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.Next()
	}
}
