package i2np

import (
	"crypto/sha256"
	"testing"

	common "github.com/go-i2p/common/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubsystemWithClock(t *testing.T, clock Clock) *Subsystem {
	t.Helper()
	ctx := &testContext{rng: &seqRng{}}
	s, _, _, _, _ := newTestSubsystem(ctx, clock)
	return s
}

func TestFillMessageHeader(t *testing.T) {
	s := testSubsystemWithClock(t, fixedClock(1000))

	msg := NewMessage()
	msg.AppendPayload([]byte{1, 2, 3, 4})
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_DATA, 0)

	assert.Equal(t, I2NP_MESSAGE_TYPE_DATA, msg.Type())
	assert.Equal(t, uint64(6000), msg.Expiration())
	assert.Equal(t, 4, msg.PayloadSize())
	hash := sha256.Sum256([]byte{1, 2, 3, 4})
	assert.Equal(t, hash[0], msg.Checksum())
	assert.NoError(t, msg.VerifyChecksum())
}

func TestFillMessageHeaderPinsReplyMsgID(t *testing.T) {
	s := testSubsystemWithClock(t, fixedClock(1000))

	msg := NewMessage()
	msg.AppendPayload([]byte{7})
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_TUNNEL_BUILD, 0xCAFEBABE)
	assert.Equal(t, uint32(0xCAFEBABE), msg.MsgID())
}

func TestRenewHeaderKeepsChecksum(t *testing.T) {
	s := testSubsystemWithClock(t, fixedClock(1000))

	msg := NewMessage()
	msg.AppendPayload([]byte{9, 9, 9})
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_DATA, 0)
	oldChecksum := msg.Checksum()
	oldMsgID := msg.MsgID()

	s.RenewMessageHeader(msg)

	// renewing updates id and expiration only; the payload is unchanged
	// so the checksum byte must stay both untouched and valid
	assert.NotEqual(t, oldMsgID, msg.MsgID())
	assert.Equal(t, oldChecksum, msg.Checksum())
	assert.NoError(t, msg.VerifyChecksum())
}

func TestMessageRoundTrip(t *testing.T) {
	s := testSubsystemWithClock(t, fixedClock(42))

	msg := s.CreateMessage(I2NP_MESSAGE_TYPE_DATA, []byte("hello tunnel"), 0)
	parsed, err := NewMessageFromBytes(msg.Bytes())
	require.NoError(t, err)

	assert.Equal(t, msg.Bytes(), parsed.Bytes())
	assert.Equal(t, msg.Type(), parsed.Type())
	assert.Equal(t, msg.MsgID(), parsed.MsgID())
	assert.Equal(t, msg.Expiration(), parsed.Expiration())
	assert.Equal(t, msg.Payload(), parsed.Payload())
	assert.NoError(t, parsed.VerifyChecksum())
}

func TestNewMessageFromBytesRejectsBadLength(t *testing.T) {
	_, err := NewMessageFromBytes(make([]byte, I2NP_HEADER_SIZE-1))
	assert.ErrorIs(t, err, ERR_I2NP_NOT_ENOUGH_DATA)

	s := testSubsystemWithClock(t, fixedClock(0))
	msg := s.CreateMessage(I2NP_MESSAGE_TYPE_DATA, []byte{1, 2, 3}, 0)
	truncated := msg.Bytes()[:msg.Length()-1]
	_, err = NewMessageFromBytes(truncated)
	assert.ErrorIs(t, err, ERR_I2NP_MALFORMED_LENGTH)
}

func TestVerifyChecksumDetectsCorruption(t *testing.T) {
	s := testSubsystemWithClock(t, fixedClock(0))
	msg := s.CreateMessage(I2NP_MESSAGE_TYPE_DATA, []byte{1, 2, 3}, 0)
	msg.Payload()[0] ^= 0xFF
	assert.ErrorIs(t, msg.VerifyChecksum(), ERR_I2NP_CHECKSUM_MISMATCH)
}

func TestPrependNeedsReservedPrefix(t *testing.T) {
	msg := NewMessage()
	require.NoError(t, msg.Prepend(MESSAGE_RESERVED_PREFIX))
	assert.Equal(t, 0, msg.Offset())
	assert.ErrorIs(t, msg.Prepend(1), ERR_I2NP_PREPEND_NO_ROOM)
}

func TestCloneIsIndependent(t *testing.T) {
	s := testSubsystemWithClock(t, fixedClock(0))
	msg := s.CreateMessage(I2NP_MESSAGE_TYPE_DATA, []byte{5, 6, 7}, 0)
	msg.SetFrom(&mockInboundTunnel{tunnelID: 9})

	clone := msg.Clone()
	assert.Equal(t, msg.Bytes(), clone.Bytes())
	assert.Nil(t, clone.From())

	clone.Payload()[0] = 0xEE
	assert.NotEqual(t, msg.Payload()[0], clone.Payload()[0])
}

func TestMessageIDMonotonic(t *testing.T) {
	s := testSubsystemWithClock(t, fixedClock(0))

	var last uint32
	for i := 0; i < 100; i++ {
		msg := s.CreateDeliveryStatusMsg(7)
		if i > 0 {
			assert.Equal(t, last+1, msg.MsgID())
		}
		last = msg.MsgID()
	}
}

func TestHashPrefix(t *testing.T) {
	var h common.Hash
	h[0] = 0xde
	h[1] = 0xad
	h[2] = 0xbe
	h[3] = 0xef
	assert.Equal(t, "deadbeef", hashPrefix(h))
}
