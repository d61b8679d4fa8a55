// Package router holds the local router context the I2NP message layer
// reads: identity hash, long-term ElGamal private key, published
// RouterInfo bytes and the random source. The context is built once at
// startup and is read-only afterwards.
package router

import (
	"io"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	elgamal "github.com/go-i2p/go-i2np/lib/crypto/elg"
	"github.com/go-i2p/go-i2np/lib/i2np"
)

var log = logger.GetGoI2PLogger()

// Context implements i2np.RouterContext.
type Context struct {
	identHash       common.Hash
	privateKey      *elgamal.PrivateKey
	routerInfoBytes []byte
	rng             io.Reader
}

// Compile-time interface satisfaction check
var _ i2np.RouterContext = (*Context)(nil)

// NewContext wraps existing router material. rng nil uses the process
// CSPRNG.
func NewContext(identHash common.Hash, privateKey *elgamal.PrivateKey, routerInfoBytes []byte, rng io.Reader) *Context {
	if rng == nil {
		rng = rand.Reader
	}
	return &Context{
		identHash:       identHash,
		privateKey:      privateKey,
		routerInfoBytes: routerInfoBytes,
		rng:             rng,
	}
}

// NewEphemeralContext generates a fresh ElGamal keypair and a random
// identity, for tests and for running without persisted keys.
func NewEphemeralContext(rng io.Reader) (*Context, error) {
	if rng == nil {
		rng = rand.Reader
	}
	privateKey, err := elgamal.Generate(rng)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to generate router keys")
	}
	var identHash common.Hash
	if _, err := io.ReadFull(rng, identHash[:]); err != nil {
		return nil, oops.Wrapf(err, "failed to generate router identity")
	}
	log.WithField("ident", identHash[0:4]).Debug("created ephemeral router context")
	return NewContext(identHash, privateKey, nil, rng), nil
}

func (c *Context) IdentHash() common.Hash {
	return c.identHash
}

func (c *Context) PrivateKey() *elgamal.PrivateKey {
	return c.privateKey
}

func (c *Context) RouterInfoBytes() []byte {
	return c.routerInfoBytes
}

func (c *Context) Rng() io.Reader {
	return c.rng
}

// PublicKey returns the 256-byte ElGamal public key other routers encrypt
// build records to.
func (c *Context) PublicKey() elgamal.ElgPublicKey {
	return c.privateKey.PublicKeyBytes()
}
