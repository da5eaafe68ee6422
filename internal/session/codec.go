package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrMalformed marks a cookie that cannot be opened with the current key:
// tampered, truncated or sealed with a rotated secret.
var ErrMalformed = errors.New("malformed session cookie")

// Codec seals cookie payloads with NaCl secretbox. The box key is derived
// from the configured secret with HKDF so the raw secret is never used as is.
type Codec struct {
	key [32]byte
}

func NewCodec(secret string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}

	key, err := DeriveKey(secret, "delrio-stay session cookie")
	if err != nil {
		return nil, err
	}

	codec := &Codec{}
	copy(codec.key[:], key)
	return codec, nil
}

// DeriveKey expands secret into an independent 32 byte key per purpose, so
// one configured secret can serve the session box and the CSRF tokens.
func DeriveKey(secret string, purpose string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("secret is empty")
	}

	key := make([]byte, 32)
	reader := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", purpose, err)
	}
	return key, nil
}

func (c *Codec) Seal(plaintext []byte) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], plaintext, &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (c *Codec) Open(value string) ([]byte, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrMalformed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &c.key)
	if !ok {
		return nil, ErrMalformed
	}
	return plaintext, nil
}
