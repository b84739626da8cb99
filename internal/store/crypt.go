// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// encryptedPrefix marks an encrypted credentials file:
// ENC:base64(salt|nonce|ciphertext).
const encryptedPrefix = "ENC:"

const (
	saltSize  = 32
	nonceSize = 12
	keySize   = 32
	// OWASP recommends 600,000+ iterations for PBKDF2-SHA-256.
	pbkdf2Iterations = 600000
)

var (
	// ErrStoreEncrypted indicates the file is encrypted but no passphrase
	// was supplied.
	ErrStoreEncrypted = errors.New("credentials file is encrypted: set BLOODLINK_STORE_KEY")

	// ErrDecryptionFailed indicates a wrong passphrase or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: wrong passphrase or corrupted file")
)

func deriveKey(passphrase, salt []byte) []byte {
	return pbkdf2.Key(passphrase, salt, pbkdf2Iterations, keySize, sha256.New)
}

// encrypt seals plain with AES-256-GCM under a key derived from passphrase.
// A fresh random salt and nonce are generated for every write.
func encrypt(plain, passphrase []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise GCM: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plain, nil)
	payload := append(append(salt, nonce...), sealed...)

	out := make([]byte, len(encryptedPrefix)+base64.StdEncoding.EncodedLen(len(payload)))
	copy(out, encryptedPrefix)
	base64.StdEncoding.Encode(out[len(encryptedPrefix):], payload)
	return out, nil
}

// maybeDecrypt returns raw unchanged when it is a plaintext file, and
// decrypts it otherwise. An encrypted file without a passphrase is an error
// rather than a silent empty store.
func maybeDecrypt(raw, passphrase []byte) ([]byte, error) {
	if !bytes.HasPrefix(raw, []byte(encryptedPrefix)) {
		return raw, nil
	}
	if passphrase == nil {
		return nil, ErrStoreEncrypted
	}

	encoded := raw[len(encryptedPrefix):]
	payload := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(payload, encoded)
	payload = payload[:n]
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	if len(payload) < saltSize+nonceSize {
		return nil, ErrDecryptionFailed
	}
	salt := payload[:saltSize]
	nonce := payload[saltSize : saltSize+nonceSize]
	sealed := payload[saltSize+nonceSize:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise GCM: %w", err)
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}
