package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	// Генерируем валидный ключ (32 bytes)
	validKey := make([]byte, KeySize)
	_, _ = rand.Read(validKey)

	tests := []struct {
		name      string
		errMsg    string
		plaintext []byte
		key       []byte
		wantErr   bool
	}{
		{
			name:      "successful roundtrip",
			plaintext: []byte(`{"access_token":"abc","refresh_token":"def"}`),
			key:       validKey,
		},
		{
			name:      "longer text with special characters",
			plaintext: []byte("This is a longer text with multiple words and special characters: !@#$%^&*()"),
			key:       validKey,
		},
		{
			name:      "empty plaintext",
			plaintext: []byte{},
			key:       validKey,
			wantErr:   true,
			errMsg:    "plaintext cannot be empty",
		},
		{
			name:      "invalid key length - too short",
			plaintext: []byte("test"),
			key:       make([]byte, 16),
			wantErr:   true,
			errMsg:    "encryption key must be 32 bytes",
		},
		{
			name:      "invalid key length - too long",
			plaintext: []byte("test"),
			key:       make([]byte, 64),
			wantErr:   true,
			errMsg:    "encryption key must be 32 bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encrypted, err := Encrypt(tt.plaintext, tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			// nonce + ciphertext + tag
			assert.Greater(t, len(encrypted), NonceSize+len(tt.plaintext))

			decrypted, err := Decrypt(encrypted, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, decrypted)
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	key1 := make([]byte, KeySize)
	key2 := make([]byte, KeySize)
	_, _ = rand.Read(key1)
	_, _ = rand.Read(key2)

	encrypted, err := Encrypt([]byte("secret tokens"), key1)
	require.NoError(t, err)

	// Дешифровка чужим ключом должна провалиться на проверке auth tag
	_, err = Decrypt(encrypted, key2)
	assert.Error(t, err)
}

func TestDecrypt_CorruptedData(t *testing.T) {
	key := make([]byte, KeySize)
	_, _ = rand.Read(key)

	encrypted, err := Encrypt([]byte("secret tokens"), key)
	require.NoError(t, err)

	// Портим один байт ciphertext
	encrypted[len(encrypted)-1] ^= 0xFF
	_, err = Decrypt(encrypted, key)
	assert.Error(t, err)

	// Слишком короткие данные
	_, err = Decrypt(encrypted[:NonceSize-1], key)
	assert.Error(t, err)
}

func TestEncryptToBase64_Roundtrip(t *testing.T) {
	key := make([]byte, KeySize)
	_, _ = rand.Read(key)

	encoded, err := EncryptToBase64([]byte("token pair"), key)
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)

	decrypted, err := DecryptFromBase64(encoded, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("token pair"), decrypted)

	// Невалидный base64
	_, err = DecryptFromBase64("not-base64!!!", key)
	assert.Error(t, err)
}
