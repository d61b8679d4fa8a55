package elgamal

import (
	"crypto/sha256"
	"crypto/subtle"
	"io"
	"math/big"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"golang.org/x/crypto/openpgp/elgamal"
)

var log = logger.GetGoI2PLogger()

// I2P ElGamal uses the 2048-bit MODP group from RFC 3526 §3 with
// generator 2.
var (
	one  = big.NewInt(1)
	elgg = big.NewInt(2)
	elgp = func() *big.Int {
		p, _ := new(big.Int).SetString(
			"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD1"+
				"29024E088A67CC74020BBEA63B139B22514A08798E3404DD"+
				"EF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245"+
				"E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7ED"+
				"EE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3D"+
				"C2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F"+
				"83655D23DCA3AD961C62F356208552BB9ED529077096966D"+
				"670C354E4ABC9804F1746C08CA18217C32905E462E36CE3B"+
				"E39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9"+
				"DE2BCBF6955817183995497CEA956AE515D2261898FA0510"+
				"15728E5A8AACAA68FFFFFFFFFFFFFFFF", 16)
		return p
	}()
)

var (
	ElgDecryptFail   = oops.Errorf("failed to decrypt elgamal encrypted data")
	ElgEncryptTooBig = oops.Errorf("failed to encrypt data, too big for elgamal")
)

// PrivateKey is an I2P ElGamal private key.
type PrivateKey struct {
	elgamal.PrivateKey
}

// ElgamalGenerate generates an elgamal key pair over the I2P group.
func ElgamalGenerate(priv *elgamal.PrivateKey, rand io.Reader) (err error) {
	priv.P = elgp
	priv.G = elgg
	xBytes := make([]byte, priv.P.BitLen()/8)
	_, err = io.ReadFull(rand, xBytes)
	if err == nil {
		// set private key
		priv.X = new(big.Int).SetBytes(xBytes)
		// compute public key
		priv.Y = new(big.Int).Exp(priv.G, priv.X, priv.P)
		log.Debug("ElGamal key pair generated")
	} else {
		log.WithError(err).Error("Failed to generate ElGamal key pair")
	}
	return
}

// Generate creates a fresh private key from rand.
func Generate(rand io.Reader) (*PrivateKey, error) {
	priv := &PrivateKey{}
	if err := ElgamalGenerate(&priv.PrivateKey, rand); err != nil {
		return nil, err
	}
	return priv, nil
}

// PublicKeyBytes returns the 256-byte public key of this private key.
func (priv *PrivateKey) PublicKeyBytes() ElgPublicKey {
	var pub ElgPublicKey
	yBytes := priv.Y.Bytes()
	copy(pub[len(pub)-len(yBytes):], yBytes)
	return pub
}

// Decrypt decrypts an elgamal encrypted message, i2p style: the cleartext
// block is 0xFF, a SHA-256 digest, then up to 222 bytes of data. With
// zeroPadding the ciphertext halves are 257 bytes each (leading zero),
// otherwise 256 each.
func (priv *PrivateKey) Decrypt(data []byte, zeroPadding bool) ([]byte, error) {
	return elgamalDecrypt(&priv.PrivateKey, data, zeroPadding)
}

func elgamalDecrypt(priv *elgamal.PrivateKey, data []byte, zeroPadding bool) (decrypted []byte, err error) {
	log.WithFields(logger.Fields{
		"data_length":  len(data),
		"zero_padding": zeroPadding,
	}).Debug("Decrypting ElGamal data")

	expected := 512
	if zeroPadding {
		expected = 514
	}
	if len(data) < expected {
		return nil, ElgDecryptFail
	}

	a := new(big.Int)
	b := new(big.Int)
	idx := 0
	if zeroPadding {
		idx++
	}
	a.SetBytes(data[idx : idx+256])
	if zeroPadding {
		idx++
	}
	b.SetBytes(data[idx+256:])

	// m = b * a^(p-x-1) mod p
	mb := new(big.Int).Mod(new(big.Int).Mul(b, new(big.Int).Exp(a, new(big.Int).Sub(new(big.Int).Sub(priv.P, priv.X), one), priv.P)), priv.P).Bytes()
	if len(mb) > 255 {
		// a valid block starts 0xFF and is exactly 255 bytes; anything
		// longer cannot carry a valid digest
		return nil, ElgDecryptFail
	}
	m := make([]byte, 255)
	copy(m[255-len(mb):], mb)

	// check digest
	d := sha256.Sum256(m[33:255])
	good := 0
	if subtle.ConstantTimeCompare(d[:], m[1:33]) == 1 {
		good = 1
	} else {
		err = ElgDecryptFail
		log.WithError(err).Error("ElGamal decryption failed")
	}
	decrypted = make([]byte, 222)
	subtle.ConstantTimeCopy(good, decrypted, m[33:255])

	if good == 0 {
		decrypted = nil
	}
	return
}
