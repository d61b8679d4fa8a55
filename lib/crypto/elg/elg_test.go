package elgamal

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	priv, err := Generate(rand.Reader)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0x5A}, 222)
	encrypted, err := EncryptToPublicKey(priv.PublicKeyBytes(), data, rand.Reader, false)
	require.NoError(t, err)
	require.Len(t, encrypted, 512)

	decrypted, err := priv.Decrypt(encrypted, false)
	require.NoError(t, err)
	assert.Equal(t, data, decrypted[:len(data)])
}

func TestEncryptDecryptZeroPadding(t *testing.T) {
	priv, err := Generate(rand.Reader)
	require.NoError(t, err)

	data := []byte("short message")
	encrypted, err := EncryptToPublicKey(priv.PublicKeyBytes(), data, rand.Reader, true)
	require.NoError(t, err)
	require.Len(t, encrypted, 514)

	decrypted, err := priv.Decrypt(encrypted, true)
	require.NoError(t, err)
	assert.Equal(t, data, decrypted[:len(data)])
}

func TestEncryptTooBig(t *testing.T) {
	priv, err := Generate(rand.Reader)
	require.NoError(t, err)

	_, err = EncryptToPublicKey(priv.PublicKeyBytes(), make([]byte, 223), rand.Reader, false)
	assert.Equal(t, ElgEncryptTooBig, err)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	alice, err := Generate(rand.Reader)
	require.NoError(t, err)
	mallory, err := Generate(rand.Reader)
	require.NoError(t, err)

	encrypted, err := EncryptToPublicKey(alice.PublicKeyBytes(), []byte("secret"), rand.Reader, false)
	require.NoError(t, err)

	decrypted, err := mallory.Decrypt(encrypted, false)
	assert.Error(t, err)
	assert.Nil(t, decrypted)
}

func TestDecryptShortCiphertextFails(t *testing.T) {
	priv, err := Generate(rand.Reader)
	require.NoError(t, err)

	_, err = priv.Decrypt(make([]byte, 100), false)
	assert.Error(t, err)
}

func TestPublicKeyEncrypter(t *testing.T) {
	priv, err := Generate(rand.Reader)
	require.NoError(t, err)

	enc, err := priv.PublicKeyBytes().NewEncrypter()
	require.NoError(t, err)

	encrypted, err := enc.Encrypt([]byte("via interface"))
	require.NoError(t, err)
	decrypted, err := priv.Decrypt(encrypted, true)
	require.NoError(t, err)
	assert.Equal(t, []byte("via interface"), decrypted[:13])
}
