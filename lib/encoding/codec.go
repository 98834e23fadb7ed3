// Package encoding seals audit records for transport out of the process.
// Records are msgpack-marshalled, then either HMAC-signed (tamper-evident
// but readable) or AES-256-GCM encrypted (opaque, for PHI-adjacent
// detail). Sealed records are URL-safe base64 strings.
package encoding

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors for record opening.
var (
	ErrInvalidFormat    = errors.New("encoding: invalid sealed record format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: record decryption failed")
)

// Codec seals and opens records with a shared key.
type Codec struct {
	key []byte
	gcm cipher.AEAD
}

// NewCodec creates a codec from key. Keys shorter than 32 bytes are
// stretched with SHA-256 so AES-256 always gets a full-size key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Codec{key: key, gcm: gcm}, nil
}

// Seal marshals v and returns a sealed string: encrypted when sensitive,
// otherwise signed.
func (c *Codec) Seal(v any, sensitive bool) (string, error) {
	packed, err := msgpack.Marshal(v)
	if err != nil {
		return "", err
	}
	if sensitive {
		return c.encrypt(packed)
	}
	return c.sign(packed)
}

// Open verifies (or decrypts) a sealed string and unmarshals it into v.
// The sensitive flag must match the one used to seal.
func (c *Codec) Open(sealed string, sensitive bool, v any) error {
	var packed []byte
	var err error
	if sensitive {
		packed, err = c.decrypt(sealed)
	} else {
		packed, err = c.verify(sealed)
	}
	if err != nil {
		return err
	}
	return msgpack.Unmarshal(packed, v)
}

// sign produces base64(payload).base64(truncated HMAC-SHA256).
func (c *Codec) sign(data []byte) (string, error) {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
	return b64 + "." + sig, nil
}

func (c *Codec) verify(sealed string) ([]byte, error) {
	parts := strings.SplitN(sealed, ".", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidFormat
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidFormat
	}

	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	if !hmac.Equal(sig, mac.Sum(nil)[:16]) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

func (c *Codec) encrypt(data []byte) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ciphertext := c.gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

func (c *Codec) decrypt(sealed string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if len(ciphertext) < c.gcm.NonceSize() {
		return nil, ErrInvalidFormat
	}
	nonce := ciphertext[:c.gcm.NonceSize()]
	plain, err := c.gcm.Open(nil, nonce, ciphertext[c.gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}
