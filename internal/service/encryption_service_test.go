package service

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAESKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestNewAESEncryptionService(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		svc, err := NewAESEncryptionService(testAESKey)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("invalid hex", func(t *testing.T) {
		_, err := NewAESEncryptionService("not-hex!")
		assert.Error(t, err)
	})

	t.Run("wrong length", func(t *testing.T) {
		_, err := NewAESEncryptionService("0123456789abcdef")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "32 bytes")
	})
}

func TestAESEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	plaintext := `{"admin_id":"6a6e5f2e-0c1d-4f3a-9b8c-7d6e5f4a3b2c","amount":30000}`

	ciphertext, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)

	// Ciphertext is hex
	_, err = hex.DecodeString(ciphertext)
	require.NoError(t, err)

	decrypted, err := svc.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestAESEncryptionService_NonceUniqueness(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	c1, err := svc.Encrypt("same input")
	require.NoError(t, err)
	c2, err := svc.Encrypt("same input")
	require.NoError(t, err)

	assert.NotEqual(t, c1, c2, "distinct nonces must produce distinct ciphertexts")
}

func TestAESEncryptionService_Decrypt_Tampered(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	ciphertext, err := svc.Encrypt("secret payload")
	require.NoError(t, err)

	// Flip the last hex character
	tampered := ciphertext[:len(ciphertext)-1]
	if strings.HasSuffix(ciphertext, "0") {
		tampered += "1"
	} else {
		tampered += "0"
	}

	_, err = svc.Decrypt(tampered)
	assert.Error(t, err, "GCM must reject tampered ciphertext")
}

func TestAESEncryptionService_Decrypt_Invalid(t *testing.T) {
	svc, err := NewAESEncryptionService(testAESKey)
	require.NoError(t, err)

	t.Run("not hex", func(t *testing.T) {
		_, err := svc.Decrypt("zzzz")
		assert.Error(t, err)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := svc.Decrypt("abcd")
		assert.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewAESEncryptionService(strings.Repeat("ff", 32))
		require.NoError(t, err)

		ciphertext, err := svc.Encrypt("payload")
		require.NoError(t, err)

		_, err = other.Decrypt(ciphertext)
		assert.Error(t, err)
	})
}
