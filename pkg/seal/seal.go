package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
)

// Seal encrypts plaintext under the key derived from masterKey and label.
// Returns base64(nonce + ciphertext + tag).
func Seal(masterKey []byte, label, plaintext string) (string, error) {
	aead, err := newAEAD(masterKey, label)
	if err != nil {
		return "", errors.Join(ErrSealFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Join(ErrSealFailed, err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), []byte(label))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal with the same master key and label.
func Open(masterKey []byte, label, sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}

	aead, err := newAEAD(masterKey, label)
	if err != nil {
		return "", errors.Join(ErrOpenFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(raw) < nonceSize+aead.Overhead() {
		return "", ErrInvalidCiphertext
	}

	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(label))
	if err != nil {
		return "", errors.Join(ErrOpenFailed, err)
	}

	return string(plaintext), nil
}

func newAEAD(masterKey []byte, label string) (cipher.AEAD, error) {
	if err := ValidateKey(masterKey); err != nil {
		return nil, err
	}

	key, err := deriveKey(masterKey, label)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
