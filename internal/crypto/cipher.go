package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

const (
	// NonceSize - размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// KeySize - размер ключа AES-256
	KeySize = 32
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aesGCM, nil
}

// Seal шифрует plaintext с использованием AES-256-GCM.
// associated привязывает шифротекст к контексту (например, ключу хранилища):
// расшифровка с другим associated завершится ошибкой.
// Формат результата: nonce (12 bytes) + ciphertext + auth_tag (16 bytes)
func Seal(plaintext, key, associated []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+aesGCM.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Seal дописывает ciphertext + tag сразу после nonce
	return aesGCM.Seal(nonce, nonce, plaintext, associated), nil
}

// Open расшифровывает данные, полученные от Seal
func Open(sealed, key, associated []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(sealed) < NonceSize+aesGCM.Overhead() {
		return nil, fmt.Errorf("encrypted data too short")
	}

	nonce, ciphertext := sealed[:NonceSize], sealed[NonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, associated)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: authentication failed or corrupted data: %w", err)
	}

	// Пустой plaintext GCM возвращает как nil
	if plaintext == nil {
		plaintext = []byte{}
	}

	return plaintext, nil
}
