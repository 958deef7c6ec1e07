package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestKey(t *testing.T, key []byte) {
	t.Helper()
	SetEncryptionKeyForTests(key)
	t.Cleanup(func() { SetEncryptionKeyForTests(nil) })
}

func TestEncryptDecryptPhone(t *testing.T) {
	withTestKey(t, bytes.Repeat([]byte{0x42}, 32))

	const phone = "+79991234567"
	encrypted, err := EncryptPhone(phone)
	require.NoError(t, err)
	assert.NotEqual(t, phone, encrypted)
	assert.NotContains(t, encrypted, "9991234567")

	decrypted, err := DecryptPhone(encrypted)
	require.NoError(t, err)
	assert.Equal(t, phone, decrypted)

	// Случайный nonce: повторное шифрование даёт другой шифротекст.
	encrypted2, err := EncryptPhone(phone)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, encrypted2)
}

func TestDecryptPhoneWithWrongKey(t *testing.T) {
	withTestKey(t, bytes.Repeat([]byte{0x01}, 32))
	encrypted, err := EncryptPhone("+79991234567")
	require.NoError(t, err)

	SetEncryptionKeyForTests(bytes.Repeat([]byte{0x02}, 32))
	_, err = DecryptPhone(encrypted)
	assert.Error(t, err)
}

func TestDecryptPhoneGarbage(t *testing.T) {
	withTestKey(t, bytes.Repeat([]byte{0x42}, 32))

	_, err := DecryptPhone("не hex")
	assert.Error(t, err)

	// Валидный hex, но короче nonce.
	_, err = DecryptPhone("abcd")
	assert.Error(t, err)
}

func TestEncryptPhoneWithoutKey(t *testing.T) {
	withTestKey(t, nil)

	_, err := EncryptPhone("+79991234567")
	assert.Error(t, err)
	_, err = DecryptPhone("abcd")
	assert.Error(t, err)
}
