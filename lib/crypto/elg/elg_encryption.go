package elgamal

import (
	"crypto/sha256"
	"io"
	"math/big"

	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/go-i2np/lib/crypto/types"
	"golang.org/x/crypto/openpgp/elgamal"
)

// ElgamalEncryption is one encryption session to a public key: the
// ephemeral exponent is fixed at creation.
type ElgamalEncryption struct {
	p, a, b1 *big.Int
}

func (elg *ElgamalEncryption) Encrypt(data []byte) (enc []byte, err error) {
	return elg.EncryptPadding(data, true)
}

// EncryptPadding encrypts up to 222 bytes, i2p style: the message block is
// 0xFF, the SHA-256 of the data, then the data. With zeroPadding the
// output is 514 bytes (one zero byte before each half), otherwise 512.
func (elg *ElgamalEncryption) EncryptPadding(data []byte, zeroPadding bool) (encrypted []byte, err error) {
	if len(data) > 222 {
		err = ElgEncryptTooBig
		return
	}
	mbytes := make([]byte, 255)
	mbytes[0] = 0xFF
	copy(mbytes[33:], data)
	// digest covers the whole zero-padded payload region, the same range
	// the decrypter verifies
	d := sha256.Sum256(mbytes[33:255])
	copy(mbytes[1:], d[:])
	m := new(big.Int).SetBytes(mbytes)
	// b = b1 * m mod p
	b := new(big.Int).Mod(new(big.Int).Mul(elg.b1, m), elg.p).Bytes()
	abytes := elg.a.Bytes()

	if zeroPadding {
		encrypted = make([]byte, 514)
		copy(encrypted[257-len(abytes):], abytes)
		copy(encrypted[514-len(b):], b)
	} else {
		encrypted = make([]byte, 512)
		copy(encrypted[256-len(abytes):], abytes)
		copy(encrypted[512-len(b):], b)
	}
	return
}

// createElgamalEncryption creates a new elgamal encryption session to pub.
func createElgamalEncryption(pub *elgamal.PublicKey, rand io.Reader) (enc *ElgamalEncryption, err error) {
	kbytes := make([]byte, 256)
	k := new(big.Int)
	for err == nil {
		_, err = io.ReadFull(rand, kbytes)
		k = new(big.Int).SetBytes(kbytes)
		k = k.Mod(k, pub.P)
		if k.Sign() != 0 {
			break
		}
	}
	if err != nil {
		log.WithError(err).Error("Failed to create ElGamal encryption session")
		return
	}
	enc = &ElgamalEncryption{
		p:  pub.P,
		a:  new(big.Int).Exp(pub.G, k, pub.P),
		b1: new(big.Int).Exp(pub.Y, k, pub.P),
	}
	return
}

// EncryptToPublicKey encrypts data to a raw 256-byte public key with a
// fresh ephemeral exponent from rand.
func EncryptToPublicKey(pub ElgPublicKey, data []byte, rand io.Reader, zeroPadding bool) ([]byte, error) {
	session, err := createElgamalEncryption(createElgamalPublicKey(pub[:]), rand)
	if err != nil {
		return nil, err
	}
	return session.EncryptPadding(data, zeroPadding)
}

type ElgPublicKey [256]byte

func (elg ElgPublicKey) Len() int {
	return len(elg)
}

func (elg ElgPublicKey) Bytes() []byte {
	return elg[:]
}

func (elg ElgPublicKey) NewEncrypter() (types.Encrypter, error) {
	return createElgamalEncryption(createElgamalPublicKey(elg[:]), rand.Reader)
}

// createElgamalPublicKey builds an elgamal public key over the I2P group
// from its 256 raw bytes.
func createElgamalPublicKey(data []byte) *elgamal.PublicKey {
	return &elgamal.PublicKey{
		G: elgg,
		P: elgp,
		Y: new(big.Int).SetBytes(data),
	}
}
