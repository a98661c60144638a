// Package encryption seals booking details at rest with AES-256-GCM.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"bhutantours/models"
)

const (
	ivSize  = 16
	tagSize = 16
	keySize = 32
)

// OpenError reports a bundle that could not be opened: malformed fields,
// a tampered payload or the wrong key.
type OpenError struct {
	Reason string
	Err    error
}

func (e *OpenError) Error() string {
	if e.Err != nil {
		return "open bundle: " + e.Reason + ": " + e.Err.Error()
	}
	return "open bundle: " + e.Reason
}

func (e *OpenError) Unwrap() error { return e.Err }

// Cipher seals and opens EncryptedBundles under one master key.
type Cipher struct {
	aead  cipher.AEAD
	keyID string
}

// NewCipher builds a cipher for a 32 byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != keySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", keySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Cipher{aead: aead, keyID: KeyID(key)}, nil
}

// KeyID fingerprints a key as the first 8 bytes of its SHA-256, in hex.
func KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:8])
}

// GenerateKey returns a fresh random master key encoded as 64 hex characters.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// KeyID returns the fingerprint stamped on bundles sealed by c.
func (c *Cipher) KeyID() string { return c.keyID }

// Seal JSON-encodes v and encrypts it under a fresh random IV.
func (c *Cipher) Seal(v any) (models.EncryptedBundle, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return models.EncryptedBundle{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return models.EncryptedBundle{}, fmt.Errorf("failed to generate iv: %w", err)
	}

	// GCM appends the tag to the ciphertext; the bundle stores them apart.
	sealed := c.aead.Seal(nil, iv, plaintext, nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return models.EncryptedBundle{
		IV:            hex.EncodeToString(iv),
		EncryptedData: hex.EncodeToString(ct),
		AuthTag:       hex.EncodeToString(tag),
		KeyID:         c.keyID,
	}, nil
}

// Open authenticates and decrypts b into out. Every failure is an *OpenError.
func (c *Cipher) Open(b models.EncryptedBundle, out any) error {
	if b.IV == "" || b.AuthTag == "" {
		return &OpenError{Reason: "missing fields"}
	}
	if b.KeyID != "" && b.KeyID != c.keyID {
		return &OpenError{Reason: "sealed under key " + b.KeyID}
	}
	iv, err := hex.DecodeString(b.IV)
	if err != nil || len(iv) != ivSize {
		return &OpenError{Reason: "malformed iv", Err: err}
	}
	tag, err := hex.DecodeString(b.AuthTag)
	if err != nil || len(tag) != tagSize {
		return &OpenError{Reason: "malformed auth tag", Err: err}
	}
	ct, err := hex.DecodeString(b.EncryptedData)
	if err != nil {
		return &OpenError{Reason: "malformed ciphertext", Err: err}
	}

	plaintext, err := c.aead.Open(nil, iv, append(ct, tag...), nil)
	if err != nil {
		return &OpenError{Reason: "authentication failed", Err: err}
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return &OpenError{Reason: "malformed payload", Err: err}
	}
	return nil
}

// IsOpenError reports whether err came from a failed Open.
func IsOpenError(err error) bool {
	var oe *OpenError
	return errors.As(err, &oe)
}
