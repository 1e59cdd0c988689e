package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashPayload хеширует канонизированное тело мутации с использованием SHA256.
// Используется при построении idempotency key: две постановки в очередь
// одной и той же логической мутации дают одинаковый хеш и схлопываются
// в одну запись.
func HashPayload(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("payload cannot be empty")
	}

	hash := sha256.Sum256(payload)

	// Возвращаем hex-encoded строку
	return hex.EncodeToString(hash[:]), nil
}

// ShortHashPayload возвращает укороченный (8 байт / 16 hex символов) хеш
// для включения в составной idempotency key
func ShortHashPayload(payload []byte) (string, error) {
	full, err := HashPayload(payload)
	if err != nil {
		return "", err
	}
	return full[:16], nil
}
