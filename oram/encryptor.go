package oram

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Encryptor provides block encryption and decryption. The block id is bound
// into the ciphertext as associated data, so a ciphertext moved to a
// different slot fails authentication. The leaf assignment is deliberately
// not bound: it changes on every access while the ciphertext does not.
type Encryptor interface {
	// Encrypt encrypts plaintext for the given block.
	// The ciphertext includes authentication tag and nonce.
	Encrypt(blockID int, plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext for the given block.
	Decrypt(blockID int, ciphertext []byte) ([]byte, error)

	// Overhead returns the number of extra bytes added by encryption
	// (nonce + authentication tag).
	Overhead() int
}

// NoOpEncryptor passes data through without encryption. With it, the stored
// payload equals the plaintext block byte for byte. Use only for testing or
// when encryption is handled externally.
type NoOpEncryptor struct{}

// Encrypt returns a copy of plaintext.
func (NoOpEncryptor) Encrypt(blockID int, plaintext []byte) ([]byte, error) {
	result := make([]byte, len(plaintext))
	copy(result, plaintext)
	return result, nil
}

// Decrypt returns a copy of ciphertext.
func (NoOpEncryptor) Decrypt(blockID int, ciphertext []byte) ([]byte, error) {
	result := make([]byte, len(ciphertext))
	copy(result, ciphertext)
	return result, nil
}

// Overhead returns 0 for NoOpEncryptor.
func (NoOpEncryptor) Overhead() int {
	return 0
}

const (
	aeadKeySize  = 32
	aesNonceSize = 12 // Standard GCM nonce size
)

// aeadSeal and aeadOpen implement the shared nonce||ciphertext||tag framing
// for the AEAD-backed encryptors.
func aeadSeal(aead cipher.AEAD, nonceSize, blockID int, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, ErrEncryptionFailed
	}
	return aead.Seal(nonce, nonce, plaintext, makeAAD(blockID)), nil
}

func aeadOpen(aead cipher.AEAD, nonceSize, blockID int, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, ErrDecryptionFailed
	}
	nonce := ciphertext[:nonceSize]
	ct := ciphertext[nonceSize:]
	plaintext, err := aead.Open(nil, nonce, ct, makeAAD(blockID))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// makeAAD creates additional authenticated data from blockID.
func makeAAD(blockID int) []byte {
	aad := make([]byte, 8)
	binary.LittleEndian.PutUint64(aad, uint64(blockID))
	return aad
}

// AESGCMEncryptor provides AES-256-GCM encryption with random nonces.
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

// NewAESGCMEncryptor creates a new AES-GCM encryptor with the given 32-byte key.
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != aeadKeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", aeadKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &AESGCMEncryptor{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-GCM with a random nonce.
// Output format: nonce (12 bytes) || ciphertext || tag (16 bytes)
func (e *AESGCMEncryptor) Encrypt(blockID int, plaintext []byte) ([]byte, error) {
	return aeadSeal(e.aead, aesNonceSize, blockID, plaintext)
}

// Decrypt decrypts ciphertext using AES-GCM.
// Input format: nonce (12 bytes) || ciphertext || tag (16 bytes)
func (e *AESGCMEncryptor) Decrypt(blockID int, ciphertext []byte) ([]byte, error) {
	return aeadOpen(e.aead, aesNonceSize, blockID, ciphertext)
}

// Overhead returns nonce size + GCM tag size.
func (e *AESGCMEncryptor) Overhead() int {
	return aesNonceSize + e.aead.Overhead()
}

// ChaChaEncryptor provides XChaCha20-Poly1305 encryption with random
// 24-byte nonces.
type ChaChaEncryptor struct {
	aead cipher.AEAD
}

// NewChaChaEncryptor creates a new XChaCha20-Poly1305 encryptor with the
// given 32-byte key.
func NewChaChaEncryptor(key []byte) (*ChaChaEncryptor, error) {
	if len(key) != aeadKeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", aeadKeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create XChaCha20-Poly1305: %w", err)
	}

	return &ChaChaEncryptor{aead: aead}, nil
}

// Encrypt encrypts plaintext with a random nonce.
// Output format: nonce (24 bytes) || ciphertext || tag (16 bytes)
func (e *ChaChaEncryptor) Encrypt(blockID int, plaintext []byte) ([]byte, error) {
	return aeadSeal(e.aead, chacha20poly1305.NonceSizeX, blockID, plaintext)
}

// Decrypt decrypts ciphertext.
// Input format: nonce (24 bytes) || ciphertext || tag (16 bytes)
func (e *ChaChaEncryptor) Decrypt(blockID int, ciphertext []byte) ([]byte, error) {
	return aeadOpen(e.aead, chacha20poly1305.NonceSizeX, blockID, ciphertext)
}

// Overhead returns nonce size + Poly1305 tag size.
func (e *ChaChaEncryptor) Overhead() int {
	return chacha20poly1305.NonceSizeX + e.aead.Overhead()
}
