package util

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

const SealKeySize = chacha20poly1305.KeySize

// Seal encrypts plainText with ChaCha20-Poly1305, binding it to aad.
// The nonce is prepended to the returned ciphertext.
func Seal(plainText, rawKey, aad []byte) ([]byte, error) {
	if len(rawKey) != SealKeySize {
		return nil, fmt.Errorf("invalid seal key size: got %d, want %d", len(rawKey), SealKeySize)
	}
	aead, err := chacha20poly1305.New(rawKey)
	if err != nil {
		return nil, fmt.Errorf("creating AEAD: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plainText, aad), nil
}

// Open decrypts a Seal-produced ciphertext.
func Open(cipherText, rawKey, aad []byte) ([]byte, error) {
	if len(rawKey) != SealKeySize {
		return nil, fmt.Errorf("invalid seal key size: got %d, want %d", len(rawKey), SealKeySize)
	}
	aead, err := chacha20poly1305.New(rawKey)
	if err != nil {
		return nil, fmt.Errorf("creating AEAD: %w", err)
	}
	if len(cipherText) < aead.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce size")
	}
	nonce, cipherText := cipherText[:aead.NonceSize()], cipherText[aead.NonceSize():]
	plainText, err := aead.Open(nil, nonce, cipherText, aad)
	if err != nil {
		return nil, fmt.Errorf("decrypting ciphertext: %w", err)
	}
	return plainText, nil
}
