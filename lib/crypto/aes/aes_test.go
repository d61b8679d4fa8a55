package aes

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyIV(t *testing.T) ([]byte, []byte) {
	t.Helper()
	key := make([]byte, 32)
	iv := make([]byte, 16)
	_, err := rand.Read(key)
	require.NoError(t, err)
	_, err = rand.Read(iv)
	require.NoError(t, err)
	return key, iv
}

func TestEncryptDecryptPadded(t *testing.T) {
	key, iv := testKeyIV(t)
	encrypter := &AESSymmetricEncrypter{Key: key, IV: iv}
	decrypter := &AESSymmetricDecrypter{Key: key, IV: iv}

	plaintext := []byte("not block aligned at all")
	ciphertext, err := encrypter.Encrypt(plaintext)
	require.NoError(t, err)
	assert.Zero(t, len(ciphertext)%16)

	decrypted, err := decrypter.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptDecryptNoPadding(t *testing.T) {
	key, iv := testKeyIV(t)
	encrypter := &AESSymmetricEncrypter{Key: key, IV: iv}
	decrypter := &AESSymmetricDecrypter{Key: key, IV: iv}

	plaintext := bytes.Repeat([]byte{0x33}, 528)
	ciphertext, err := encrypter.EncryptNoPadding(plaintext)
	require.NoError(t, err)
	require.Len(t, ciphertext, 528)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := decrypter.DecryptNoPadding(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

// Two encrypters with the same key and IV must produce identical output:
// each call starts a fresh CBC chain, the property tunnel build reply
// encryption depends on.
func TestEncryptNoPaddingIsDeterministicPerCall(t *testing.T) {
	key, iv := testKeyIV(t)
	data := bytes.Repeat([]byte{0x44}, 64)

	first, err := (&AESSymmetricEncrypter{Key: key, IV: iv}).EncryptNoPadding(data)
	require.NoError(t, err)
	second, err := (&AESSymmetricEncrypter{Key: key, IV: iv}).EncryptNoPadding(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNoPaddingRejectsUnalignedInput(t *testing.T) {
	key, iv := testKeyIV(t)
	_, err := (&AESSymmetricEncrypter{Key: key, IV: iv}).EncryptNoPadding(make([]byte, 15))
	assert.Error(t, err)
	_, err = (&AESSymmetricDecrypter{Key: key, IV: iv}).DecryptNoPadding(make([]byte, 17))
	assert.Error(t, err)
}

func TestDecryptRejectsGarbagePadding(t *testing.T) {
	key, iv := testKeyIV(t)
	decrypter := &AESSymmetricDecrypter{Key: key, IV: iv}
	_, err := decrypter.Decrypt(make([]byte, 15))
	assert.Error(t, err)

	// a block-aligned ciphertext whose plaintext ends in a zero byte
	// carries no valid PKCS#7 padding
	ciphertext, err := (&AESSymmetricEncrypter{Key: key, IV: iv}).EncryptNoPadding(make([]byte, 16))
	require.NoError(t, err)
	_, err = decrypter.Decrypt(ciphertext)
	assert.Error(t, err)
}
