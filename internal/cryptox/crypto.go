// Package cryptox seals secrets kept in the local preference database.
//
// A Sealer derives an AES-256 key from a passphrase and a per-database salt
// with Argon2id, then encrypts values with AES-GCM. Sealed values are
// self-describing strings ("sealed:" + base64(nonce||ciphertext)) so the
// store can tell them apart from plaintext written before sealing was enabled.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

// SealedPrefix marks a value produced by Sealer.Seal.
const SealedPrefix = "sealed:"

// SaltSize is the salt length used by NewSalt.
const SaltSize = 16

var (
	ErrMalformed = errors.New("malformed sealed value")
	ErrOpen      = errors.New("cannot open sealed value")
)

// DeriveKey stretches passphrase into a 32-byte key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Sealer encrypts and decrypts short string secrets such as access tokens.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer for passphrase and salt.
func NewSealer(passphrase []byte, salt []byte) (*Sealer, error) {
	block, err := aes.NewCipher(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Values without SealedPrefix are returned unchanged.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", ErrMalformed
	}
	ns := s.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrMalformed
	}
	plaintext, err := s.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrOpen
	}
	return string(plaintext), nil
}

// IsSealed reports whether value was produced by Seal.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, SealedPrefix)
}
