package i2np

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/common/session_tag"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

// CreateDeliveryStatusMsg builds a DeliveryStatus message confirming
// msgID. A zero msgID builds the transport-handshake probe instead: a
// random status message ID with the timestamp field carrying the netID
// sentinel value 2.
func (s *Subsystem) CreateDeliveryStatusMsg(msgID uint32) *Message {
	msg := NewMessage()
	payload := msg.PayloadSpace()
	if msgID != 0 {
		binary.BigEndian.PutUint32(payload[0:4], msgID)
		binary.BigEndian.PutUint64(payload[4:12], s.clock.NowMilliseconds())
	} else {
		var random [4]byte
		if _, err := io.ReadFull(s.ctx.Rng(), random[:]); err != nil {
			log.WithError(err).Error("failed to read random delivery status id")
		}
		copy(payload[0:4], random[:])
		binary.BigEndian.PutUint64(payload[4:12], 2) // netID probe
	}
	msg.ExtendPayload(12)
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_DELIVERY_STATUS, 0)
	return msg
}

// CreateDatabaseLookupMsg builds a DatabaseLookup for key, asking for the
// reply at from. A non-zero replyTunnelID routes the reply through that
// tunnel. An exploratory lookup emits a single all-zero excluded entry,
// telling the floodfill to reply with non-floodfill routers only;
// otherwise the given excluded peers are listed. When encryption is
// requested a fresh session key and tag are generated, written into the
// message and registered with the garlic router so the encrypted reply can
// be decrypted. Encryption is only possible for tunnel replies; the flag
// is silently cleared otherwise.
func (s *Subsystem) CreateDatabaseLookupMsg(key, from common.Hash, replyTunnelID TunnelID,
	exploratory bool, excluded []common.Hash, encryption bool,
) *Message {
	msg := NewMessage()
	buf := msg.PayloadSpace()
	n := 0

	n += copy(buf[n:], key[:])
	n += copy(buf[n:], from[:])

	if replyTunnelID != 0 {
		if encryption {
			buf[n] = DATABASE_LOOKUP_FLAG_TUNNEL | DATABASE_LOOKUP_FLAG_ENCRYPTION
		} else {
			buf[n] = DATABASE_LOOKUP_FLAG_TUNNEL
		}
		binary.BigEndian.PutUint32(buf[n+1:], uint32(replyTunnelID))
		n += 5
	} else {
		encryption = false // encryption can be set for tunnel replies only
		buf[n] = 0
		n++
	}

	if exploratory {
		binary.BigEndian.PutUint16(buf[n:], 1)
		n += 2
		// one all-zero entry: reply with non-floodfill routers only
		for i := 0; i < 32; i++ {
			buf[n+i] = 0
		}
		n += 32
	} else {
		binary.BigEndian.PutUint16(buf[n:], uint16(len(excluded)))
		n += 2
		for _, peer := range excluded {
			n += copy(buf[n:], peer[:])
		}
	}

	if encryption {
		// session key and tag for the reply
		if _, err := io.ReadFull(s.ctx.Rng(), buf[n:n+32]); err != nil {
			log.WithError(err).Error("failed to generate lookup session key")
		}
		buf[n+32] = 1 // one tag
		if _, err := io.ReadFull(s.ctx.Rng(), buf[n+33:n+65]); err != nil {
			log.WithError(err).Error("failed to generate lookup session tag")
		}
		s.registerLookupSession(buf[n:n+32], buf[n+33:n+65])
		n += 65
	}

	msg.ExtendPayload(n)
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_DATABASE_LOOKUP, 0)

	log.WithFields(logger.Fields{
		"at":           "i2np.CreateDatabaseLookupMsg",
		"key":          hashPrefix(key),
		"reply_tunnel": replyTunnelID,
		"exploratory":  exploratory,
		"encrypted":    encryption,
	}).Debug("created_database_lookup")
	return msg
}

// registerLookupSession introduces the emitted (key, tag) pair to the
// garlic router.
func (s *Subsystem) registerLookupSession(keyBytes, tagBytes []byte) {
	var key session_key.SessionKey
	copy(key[:], keyBytes)
	tag, err := session_tag.NewSessionTagFromBytes(tagBytes)
	if err != nil {
		log.WithError(err).Error("failed to build lookup session tag")
		return
	}
	s.garlic.AddSessionKey(key, tag)
}

// CreateDatabaseSearchReplyMsg builds a negative DatabaseSearchReply for
// ident: zero peer hashes, from this router.
func (s *Subsystem) CreateDatabaseSearchReplyMsg(ident common.Hash) *Message {
	msg := NewMessage()
	buf := msg.PayloadSpace()
	ourIdent := s.ctx.IdentHash()
	n := copy(buf, ident[:])
	buf[n] = 0 // no peer hashes
	n++
	n += copy(buf[n:], ourIdent[:])
	msg.ExtendPayload(n)
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_DATABASE_SEARCH_REPLY, 0)
	return msg
}

// CreateDatabaseStoreMsg builds the self-publish DatabaseStore: our
// RouterInfo, gzip compressed, keyed by our identity hash, with no reply
// token.
func (s *Subsystem) CreateDatabaseStoreMsg() (*Message, error) {
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(s.ctx.RouterInfoBytes()); err != nil {
		return nil, oops.Wrapf(err, "failed to compress router info")
	}
	if err := gz.Close(); err != nil {
		return nil, oops.Wrapf(err, "failed to compress router info")
	}

	msg := NewMessage()
	buf := msg.PayloadSpace()
	ourIdent := s.ctx.IdentHash()
	n := copy(buf, ourIdent[:]) // key
	buf[n] = 0                  // type: RouterInfo
	n++
	binary.BigEndian.PutUint32(buf[n:], 0) // reply token
	n += 4
	binary.BigEndian.PutUint16(buf[n:], uint16(compressed.Len()))
	n += 2
	n += copy(buf[n:], compressed.Bytes())
	msg.ExtendPayload(n)
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_DATABASE_STORE, 0)

	log.WithField("compressed_size", compressed.Len()).Debug("created_database_store")
	return msg, nil
}

// CreateTunnelDataMsg wraps a complete 1024-byte tunnel data block,
// tunnel ID prefix included.
func (s *Subsystem) CreateTunnelDataMsg(block []byte) *Message {
	msg := NewMessage()
	msg.AppendPayload(block[:TUNNEL_DATA_MSG_SIZE])
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_TUNNEL_DATA, 0)
	return msg
}

// CreateTunnelDataMsgTo builds a TunnelData message for tunnelID from the
// 1020 bytes following the tunnel ID prefix.
func (s *Subsystem) CreateTunnelDataMsgTo(tunnelID TunnelID, payload []byte) *Message {
	msg := NewMessage()
	buf := msg.PayloadSpace()
	binary.BigEndian.PutUint32(buf[0:4], uint32(tunnelID))
	copy(buf[4:TUNNEL_DATA_MSG_SIZE], payload)
	msg.ExtendPayload(TUNNEL_DATA_MSG_SIZE)
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_TUNNEL_DATA, 0)
	return msg
}
