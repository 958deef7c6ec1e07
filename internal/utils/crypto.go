package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// encryptionKey stores the global encryption key.
// It's initialized by InitEncryptionKey().
var encryptionKey []byte

// InitEncryptionKey инициализирует ключ шифрования контактных данных из
// переменной окружения CONTACT_ENCRYPTION_KEY_HEX (32 байта в HEX).
// Вызывается один раз при старте приложения.
func InitEncryptionKey() error {
	keyHex := os.Getenv("CONTACT_ENCRYPTION_KEY_HEX")
	if keyHex == "" {
		log.Error().Msg("ключ шифрования CONTACT_ENCRYPTION_KEY_HEX не установлен")
		return fmt.Errorf("ключ шифрования CONTACT_ENCRYPTION_KEY_HEX не установлен")
	}

	var err error
	encryptionKey, err = hex.DecodeString(keyHex)
	if err != nil {
		return fmt.Errorf("некорректный формат ключа шифрования (не HEX): %w", err)
	}
	if len(encryptionKey) != 32 { // AES-256 requires a 32-byte key.
		return fmt.Errorf("некорректная длина ключа шифрования, требуется 32 байта, получено %d", len(encryptionKey))
	}

	log.Info().Msg("ключ шифрования инициализирован")
	return nil
}

// SetEncryptionKeyForTests устанавливает ключ напрямую (для тестов).
func SetEncryptionKeyForTests(key []byte) {
	encryptionKey = key
}

// EncryptPhone шифрует номер телефона AES-256-GCM.
// Возвращает hex-строку шифротекста.
// EncryptPhone encrypts a phone number with AES-256-GCM.
func EncryptPhone(plainPhone string) (string, error) {
	if len(encryptionKey) == 0 {
		return "", fmt.Errorf("ключ шифрования не инициализирован")
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", fmt.Errorf("ошибка создания шифра: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("ошибка создания GCM: %w", err)
	}

	// Never use more than 2^32 random nonces with a given key because of the risk of a repeat.
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("ошибка генерации nonce: %w", err)
	}

	// Seal will append the nonce to the beginning of the ciphertext.
	cipherText := gcm.Seal(nonce, nonce, []byte(plainPhone), nil)
	return hex.EncodeToString(cipherText), nil
}

// DecryptPhone расшифровывает номер телефона из hex-строки.
func DecryptPhone(cipherHex string) (string, error) {
	if len(encryptionKey) == 0 {
		return "", fmt.Errorf("ключ шифрования не инициализирован")
	}

	cipherText, err := hex.DecodeString(cipherHex)
	if err != nil {
		return "", fmt.Errorf("не удалось декодировать шифротекст из hex: %w", err)
	}

	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return "", fmt.Errorf("ошибка создания шифра при дешифровании: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("ошибка создания GCM при дешифровании: %w", err)
	}

	if len(cipherText) < gcm.NonceSize() {
		return "", fmt.Errorf("шифротекст короче nonce")
	}
	nonce, sealed := cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("ошибка дешифрования: %w", err)
	}
	return string(plain), nil
}
