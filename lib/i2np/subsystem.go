package i2np

import (
	"crypto/sha256"
	"sync/atomic"
	"time"

	common "github.com/go-i2p/common/data"
)

// SystemClock reads the operating system wall clock.
type SystemClock struct{}

func (SystemClock) NowMilliseconds() uint64 {
	return uint64(time.Now().UnixMilli())
}

// Subsystem is the I2NP message layer. It is constructed once with its
// collaborator bundle and then called from transport receive goroutines,
// tunnel workers and builder goroutines concurrently.
type Subsystem struct {
	ctx        RouterContext
	netDB      NetDB
	transports Transports
	tunnels    TunnelRegistry
	garlic     Garlic
	clock      Clock

	// msgID is the process-wide monotonic message-ID counter. It wraps
	// naturally at 2^32.
	msgID uint32
}

// New creates the message layer from its collaborator bundle.
func New(c Collaborators) *Subsystem {
	clock := c.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &Subsystem{
		ctx:        c.Context,
		netDB:      c.NetDB,
		transports: c.Transports,
		tunnels:    c.Tunnels,
		garlic:     c.Garlic,
		clock:      clock,
	}
}

// NextMessageID returns a fresh message ID via atomic increment.
func (s *Subsystem) NextMessageID() uint32 {
	return atomic.AddUint32(&s.msgID, 1) - 1
}

// ExpirationAt returns the header expiration for a message filled now.
func (s *Subsystem) ExpirationAt() uint64 {
	return s.clock.NowMilliseconds() + MESSAGE_EXPIRATION_WINDOW_MS
}

// FillMessageHeader completes the header of a message whose payload is in
// place: type, message ID, expiration, payload size and checksum byte.
// A non-zero replyMsgID pins the message ID, used for tunnel creation so
// the reply correlates with the originator's pending tunnel.
func (s *Subsystem) FillMessageHeader(msg *Message, msgType int, replyMsgID uint32) {
	msg.SetType(msgType)
	if replyMsgID != 0 {
		msg.SetMsgID(replyMsgID)
	} else {
		msg.SetMsgID(s.NextMessageID())
	}
	msg.SetExpiration(s.ExpirationAt())
	payload := msg.Payload()
	msg.setPayloadSize(len(payload))
	hash := sha256.Sum256(payload)
	msg.setChecksum(hash[0])
}

// RenewMessageHeader refreshes the message ID and expiration of an already
// filled message. The payload is unchanged, so the checksum byte stays
// valid and is left alone.
func (s *Subsystem) RenewMessageHeader(msg *Message) {
	msg.SetMsgID(s.NextMessageID())
	msg.SetExpiration(s.ExpirationAt())
}

// CreateMessage wraps a raw payload into a fresh header-valid message of
// the given type.
func (s *Subsystem) CreateMessage(msgType int, payload []byte, replyMsgID uint32) *Message {
	msg := NewMessage()
	msg.AppendPayload(payload)
	s.FillMessageHeader(msg, msgType, replyMsgID)
	return msg
}

// SendTo hands a message to the transport layer. Ownership transfers.
func (s *Subsystem) SendTo(ident common.Hash, msg *Message) {
	s.transports.SendTo(ident, msg)
}

func hashPrefix(h common.Hash) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 8)
	for i := 0; i < 4; i++ {
		out[2*i] = hexdigits[h[i]>>4]
		out[2*i+1] = hexdigits[h[i]&0x0f]
	}
	return string(out)
}
