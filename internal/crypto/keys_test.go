package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	require.NoError(t, err)
	assert.Len(t, salt1, SaltSize)

	salt2, err := GenerateSalt()
	require.NoError(t, err)

	// Две соли не должны совпадать
	assert.NotEqual(t, salt1, salt2)
}

func TestDeriveStorageKey(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	key1, err := DeriveStorageKey("device-aaa", salt)
	require.NoError(t, err)
	assert.Len(t, key1, KeySize)

	// Деривация детерминирована
	key2, err := DeriveStorageKey("device-aaa", salt)
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	// Другое устройство — другой ключ
	key3, err := DeriveStorageKey("device-bbb", salt)
	require.NoError(t, err)
	assert.NotEqual(t, key1, key3)

	// Другая соль — другой ключ
	otherSalt, err := GenerateSalt()
	require.NoError(t, err)
	key4, err := DeriveStorageKey("device-aaa", otherSalt)
	require.NoError(t, err)
	assert.NotEqual(t, key1, key4)
}

func TestDeriveStorageKey_Errors(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	_, err = DeriveStorageKey("", salt)
	assert.Error(t, err)

	_, err = DeriveStorageKey("device-aaa", []byte("short"))
	assert.Error(t, err)
}

func TestDeriveStorageKeyFromBase64Salt(t *testing.T) {
	saltBase64, err := GenerateSaltBase64()
	require.NoError(t, err)

	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	require.NoError(t, err)

	keyFromBase64, err := DeriveStorageKeyFromBase64Salt("device-aaa", saltBase64)
	require.NoError(t, err)

	keyFromRaw, err := DeriveStorageKey("device-aaa", salt)
	require.NoError(t, err)
	assert.Equal(t, keyFromRaw, keyFromBase64)

	_, err = DeriveStorageKeyFromBase64Salt("device-aaa", "%%%bad%%%")
	assert.Error(t, err)
}
