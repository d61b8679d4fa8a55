// Package i2np implements the I2NP (I2P Network Protocol) message layer
// of an I2P router: message framing with integrity and expiration, the
// builders for each message type, tunnel-build request/response processing
// with per-hop ElGamal decryption and CBC reply re-encryption, tunnel
// gateway encapsulation, and the dispatch table from wire type to handler.
//
// The package owns no threads and keeps no global state. All collaborators
// (network database, transports, tunnel registry, garlic router, router
// context) are supplied to New as a Collaborators bundle, and every
// operation is safe to call from multiple goroutines.
//
// https://geti2p.net/spec/i2np
package i2np
