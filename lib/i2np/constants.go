package i2np

import (
	"errors"
)

// I2NP message type identifiers.
// Numeric values match https://geti2p.net/spec/i2np on the wire.
const (
	I2NP_MESSAGE_TYPE_DATABASE_STORE              = 1
	I2NP_MESSAGE_TYPE_DATABASE_LOOKUP             = 2
	I2NP_MESSAGE_TYPE_DATABASE_SEARCH_REPLY       = 3
	I2NP_MESSAGE_TYPE_DELIVERY_STATUS             = 10
	I2NP_MESSAGE_TYPE_GARLIC                      = 11
	I2NP_MESSAGE_TYPE_TUNNEL_DATA                 = 18
	I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY              = 19
	I2NP_MESSAGE_TYPE_DATA                        = 20
	I2NP_MESSAGE_TYPE_TUNNEL_BUILD                = 21
	I2NP_MESSAGE_TYPE_TUNNEL_BUILD_REPLY          = 22
	I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD       = 23
	I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD_REPLY = 24
)

// Wire sizes.
//
// Standard I2NP header (16 bytes, big endian):
//
//	+----+----+----+----+----+----+----+----+
//	|type|      msg_id       |  expiration
//	+----+----+----+----+----+----+----+----+
//	                         |  size   |chks|
//	+----+----+----+----+----+----+----+----+
//
// TunnelGateway header (6 bytes):
//
//	+----+----+----+----+----+----+
//	| tunnelId          | length  |
//	+----+----+----+----+----+----+
const (
	I2NP_HEADER_SIZE           = 16
	TUNNEL_GATEWAY_HEADER_SIZE = 6

	// Offsets within the standard header.
	I2NP_HEADER_TYPEID_OFFSET     = 0
	I2NP_HEADER_MSGID_OFFSET      = 1
	I2NP_HEADER_EXPIRATION_OFFSET = 5
	I2NP_HEADER_SIZE_OFFSET       = 13
	I2NP_HEADER_CHKS_OFFSET       = 15
)

// Tunnel build record sizes per the I2P specification.
// An encrypted record is toPeer(16) + ElGamal ciphertext(512) on the wire;
// the ElGamal cleartext inside is 222 bytes.
const (
	TUNNEL_BUILD_RECORD_SIZE           = 528
	TUNNEL_BUILD_RECORD_CLEARTEXT_SIZE = 222
	TUNNEL_BUILD_RECORD_TO_PEER_SIZE   = 16
	NUM_TUNNEL_BUILD_RECORDS           = 8
)

// BuildRequestRecord flag bits.
const (
	TUNNEL_BUILD_FLAG_GATEWAY  = 0x80 // this hop is the inbound gateway
	TUNNEL_BUILD_FLAG_ENDPOINT = 0x40 // this hop is the outbound endpoint
)

// DatabaseLookup flag bits.
const (
	DATABASE_LOOKUP_FLAG_TUNNEL     = 0x01 // reply through the tunnel named after the flag
	DATABASE_LOOKUP_FLAG_ENCRYPTION = 0x02 // reply is garlic encrypted to the emitted session key/tag
)

// TUNNEL_DATA_MSG_SIZE is the fixed payload size of a TunnelData message.
const TUNNEL_DATA_MSG_SIZE = 1024

// MESSAGE_RESERVED_PREFIX is the front pad every owned message buffer
// reserves: 2 bytes for NTCP framing plus room to prepend one
// TunnelGateway header and one more I2NP header without reallocating.
const MESSAGE_RESERVED_PREFIX = 2 + I2NP_HEADER_SIZE + TUNNEL_GATEWAY_HEADER_SIZE

// I2NP_MAX_MESSAGE_SIZE bounds a single owned message buffer.
const I2NP_MAX_MESSAGE_SIZE = 32768

// MESSAGE_EXPIRATION_WINDOW_MS is added to the clock at header fill time.
const MESSAGE_EXPIRATION_WINDOW_MS = 5000

// Sentinel errors. These use errors.New (not oops.Errorf) so callers can
// match them with errors.Is().
var (
	ERR_I2NP_NOT_ENOUGH_DATA                  = errors.New("not enough i2np header data")
	ERR_I2NP_MALFORMED_LENGTH                 = errors.New("i2np size field inconsistent with buffer")
	ERR_I2NP_CHECKSUM_MISMATCH                = errors.New("i2np payload checksum mismatch")
	ERR_I2NP_PREPEND_NO_ROOM                  = errors.New("not enough reserved prefix to prepend")
	ERR_BUILD_REQUEST_RECORD_NOT_ENOUGH_DATA  = errors.New("not enough i2np build request record data")
	ERR_BUILD_RESPONSE_RECORD_NOT_ENOUGH_DATA = errors.New("not enough i2np build response record data")
	ERR_BUILD_RESPONSE_RECORD_HASH_MISMATCH   = errors.New("i2np build response record hash mismatch")
	ERR_DATABASE_LOOKUP_NOT_ENOUGH_DATA       = errors.New("not enough i2np database lookup data")
	ERR_TUNNEL_GATEWAY_NOT_ENOUGH_DATA        = errors.New("not enough i2np tunnel gateway data")
)

// TunnelID identifies one direction of one hop of a tunnel.
type TunnelID uint32
