package i2np

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// Message is an owned I2NP message buffer.
//
// The buffer keeps a reserved front pad so that a TunnelGateway header and
// another I2NP header can be prepended in place, without copying. offset is
// where the current I2NP header starts; length counts from offset to the end
// of the message.
//
// Invariants while a message is header-valid:
//
//	length >= I2NP_HEADER_SIZE
//	offset+length <= len(buf)
//	payload == buf[offset+I2NP_HEADER_SIZE : offset+length]
//
// A freshly allocated message keeps offset at MESSAGE_RESERVED_PREFIX;
// wrapping consumes the prefix down to the 2 bytes NTCP framing needs.
type Message struct {
	buf    []byte
	offset int
	length int

	// from records the inbound tunnel a received message arrived on.
	// It is a non-owning reference, only set on the receive path and only
	// valid within the dispatch of this message.
	from InboundTunnel
}

// NewMessage allocates an empty message with the full reserved prefix and
// room for the largest I2NP message.
func NewMessage() *Message {
	return &Message{
		buf:    make([]byte, MESSAGE_RESERVED_PREFIX+I2NP_MAX_MESSAGE_SIZE),
		offset: MESSAGE_RESERVED_PREFIX,
		length: I2NP_HEADER_SIZE,
	}
}

// NewMessageFromBytes copies a received wire message into an owned buffer
// and validates that the header size field is consistent with it.
func NewMessageFromBytes(data []byte) (*Message, error) {
	if len(data) < I2NP_HEADER_SIZE {
		return nil, ERR_I2NP_NOT_ENOUGH_DATA
	}
	size := int(binary.BigEndian.Uint16(data[I2NP_HEADER_SIZE_OFFSET : I2NP_HEADER_SIZE_OFFSET+2]))
	if I2NP_HEADER_SIZE+size != len(data) {
		return nil, ERR_I2NP_MALFORMED_LENGTH
	}

	buf := make([]byte, MESSAGE_RESERVED_PREFIX+len(data))
	copy(buf[MESSAGE_RESERVED_PREFIX:], data)
	return &Message{
		buf:    buf,
		offset: MESSAGE_RESERVED_PREFIX,
		length: len(data),
	}, nil
}

// Bytes returns the whole message, header included.
func (m *Message) Bytes() []byte {
	return m.buf[m.offset : m.offset+m.length]
}

// Length returns the total message length, header included.
func (m *Message) Length() int {
	return m.length
}

// Offset returns the position of the I2NP header within the owned buffer.
func (m *Message) Offset() int {
	return m.offset
}

// Payload returns the bytes after the I2NP header.
func (m *Message) Payload() []byte {
	return m.buf[m.offset+I2NP_HEADER_SIZE : m.offset+m.length]
}

// PayloadSpace returns the writable region after the current end of the
// message. Builders write into it and commit with ExtendPayload.
func (m *Message) PayloadSpace() []byte {
	return m.buf[m.offset+m.length:]
}

// ExtendPayload grows the message by n bytes previously written into
// PayloadSpace.
func (m *Message) ExtendPayload(n int) {
	m.length += n
}

// AppendPayload copies data to the end of the message.
func (m *Message) AppendPayload(data []byte) {
	copy(m.PayloadSpace(), data)
	m.length += len(data)
}

// Prepend moves the message start k bytes into the reserved prefix,
// in place. Fails when the prefix has no room left.
func (m *Message) Prepend(k int) error {
	if m.offset < k {
		return ERR_I2NP_PREPEND_NO_ROOM
	}
	m.offset -= k
	m.length += k
	return nil
}

// Advance drops k bytes from the front of the message and resets the
// length, turning an embedded message into the current one.
func (m *Message) Advance(k, newLength int) error {
	if k+newLength > m.length {
		return ERR_I2NP_MALFORMED_LENGTH
	}
	m.offset += k
	m.length = newLength
	return nil
}

// Clone deep-copies the message. The from reference is not carried over.
func (m *Message) Clone() *Message {
	buf := make([]byte, len(m.buf))
	copy(buf[m.offset:], m.buf[m.offset:m.offset+m.length])
	return &Message{
		buf:    buf,
		offset: m.offset,
		length: m.length,
	}
}

// From returns the inbound tunnel this message arrived on, if any.
func (m *Message) From() InboundTunnel {
	return m.from
}

// SetFrom records the inbound tunnel a received message arrived on.
func (m *Message) SetFrom(from InboundTunnel) {
	m.from = from
}

// Header field accessors. All scalars are big endian.

func (m *Message) Type() int {
	return int(m.buf[m.offset+I2NP_HEADER_TYPEID_OFFSET])
}

func (m *Message) SetType(typeID int) {
	m.buf[m.offset+I2NP_HEADER_TYPEID_OFFSET] = byte(typeID)
}

func (m *Message) MsgID() uint32 {
	return binary.BigEndian.Uint32(m.buf[m.offset+I2NP_HEADER_MSGID_OFFSET:])
}

func (m *Message) SetMsgID(msgID uint32) {
	binary.BigEndian.PutUint32(m.buf[m.offset+I2NP_HEADER_MSGID_OFFSET:], msgID)
}

// Expiration returns the expiration in milliseconds since the epoch.
func (m *Message) Expiration() uint64 {
	return binary.BigEndian.Uint64(m.buf[m.offset+I2NP_HEADER_EXPIRATION_OFFSET:])
}

func (m *Message) SetExpiration(millis uint64) {
	binary.BigEndian.PutUint64(m.buf[m.offset+I2NP_HEADER_EXPIRATION_OFFSET:], millis)
}

// PayloadSize returns the header's payload size field.
func (m *Message) PayloadSize() int {
	return int(binary.BigEndian.Uint16(m.buf[m.offset+I2NP_HEADER_SIZE_OFFSET:]))
}

func (m *Message) setPayloadSize(size int) {
	binary.BigEndian.PutUint16(m.buf[m.offset+I2NP_HEADER_SIZE_OFFSET:], uint16(size))
}

// Checksum returns the header's checksum byte: the first byte of the
// SHA-256 of the payload. It is a corruption hint, not a MAC.
func (m *Message) Checksum() byte {
	return m.buf[m.offset+I2NP_HEADER_CHKS_OFFSET]
}

func (m *Message) setChecksum(chks byte) {
	m.buf[m.offset+I2NP_HEADER_CHKS_OFFSET] = chks
}

// VerifyChecksum recomputes the payload checksum byte and compares it to
// the header field.
func (m *Message) VerifyChecksum() error {
	hash := sha256.Sum256(m.Payload())
	if hash[0] != m.Checksum() {
		return ERR_I2NP_CHECKSUM_MISMATCH
	}
	return nil
}
