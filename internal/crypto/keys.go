package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Параметры Argon2id для деривации ключа шифрования токенов
const (
	// Argon2Time - количество итераций (time cost)
	Argon2Time = 1
	// Argon2Memory - объем памяти в KB (64MB = 64*1024 KB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - количество параллельных потоков
	Argon2Threads = 4
	// SaltSize - размер соли в байтах
	SaltSize = 32
)

// GenerateSalt генерирует криптографически случайную соль указанного размера
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	_, err := rand.Read(salt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateSaltBase64 генерирует криптографически случайную соль и возвращает ее в Base64
func GenerateSaltBase64() (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveStorageKey выводит ключ шифрования токенов из идентификатора
// устройства и соли, сгенерированной при первом запуске. Токены в BoltDB
// привязываются к конкретной установке: файл БД, скопированный на другое
// устройство, расшифровать нельзя.
func DeriveStorageKey(deviceID string, salt []byte) ([]byte, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	// Context string отделяет этот ключ от любых будущих дериваций
	input := append([]byte(deviceID), []byte("token-storage")...)
	key := argon2.IDKey(input, salt, Argon2Time, Argon2Memory, Argon2Threads, KeySize)

	return key, nil
}

// DeriveStorageKeyFromBase64Salt выводит ключ из Base64-кодированной соли
func DeriveStorageKeyFromBase64Salt(deviceID, saltBase64 string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	return DeriveStorageKey(deviceID, salt)
}
