package i2np

import (
	"encoding/binary"

	"github.com/go-i2p/logger"

	common "github.com/go-i2p/common/data"
)

// HandleI2NPMessage dispatches one owned inbound message. Ownership
// transfers to whichever collaborator the message is routed to; dropped
// messages are simply released. All failures are local and non-fatal.
func (s *Subsystem) HandleI2NPMessage(msg *Message) {
	if msg == nil {
		return
	}
	if err := msg.VerifyChecksum(); err != nil {
		log.WithFields(logger.Fields{
			"at":   "i2np.HandleI2NPMessage",
			"type": msg.Type(),
		}).WithError(err).Warn("dropping_corrupt_message")
		return
	}

	switch msg.Type() {
	case I2NP_MESSAGE_TYPE_TUNNEL_DATA:
		s.tunnels.PostTunnelData(msg)
	case I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY:
		s.HandleTunnelGatewayMsg(msg)
	case I2NP_MESSAGE_TYPE_GARLIC:
		s.garlic.HandleGarlicMessage(msg)
	case I2NP_MESSAGE_TYPE_DATABASE_STORE, I2NP_MESSAGE_TYPE_DATABASE_SEARCH_REPLY:
		s.netDB.PostMessage(msg)
	case I2NP_MESSAGE_TYPE_DELIVERY_STATUS:
		if from := msg.From(); from != nil && from.Pool() != nil {
			from.Pool().ProcessDeliveryStatus(msg)
		} else {
			s.garlic.HandleDeliveryStatus(msg.Payload())
		}
	default:
		s.HandleI2NPMessageBytes(msg.Bytes())
	}
}

// HandleI2NPMessageBytes dispatches a raw wire message for the handlers
// that do not need an owned buffer.
func (s *Subsystem) HandleI2NPMessageBytes(data []byte) {
	if len(data) < I2NP_HEADER_SIZE {
		log.WithField("len", len(data)).Warn("dropping_short_message")
		return
	}
	msgType := int(data[I2NP_HEADER_TYPEID_OFFSET])
	msgID := binary.BigEndian.Uint32(data[I2NP_HEADER_MSGID_OFFSET:])
	size := int(binary.BigEndian.Uint16(data[I2NP_HEADER_SIZE_OFFSET:]))
	if I2NP_HEADER_SIZE+size > len(data) {
		log.WithFields(logger.Fields{
			"at":   "i2np.HandleI2NPMessageBytes",
			"size": size,
			"len":  len(data),
		}).Warn("dropping_malformed_message")
		return
	}
	payload := data[I2NP_HEADER_SIZE : I2NP_HEADER_SIZE+size]

	log.WithFields(logger.Fields{
		"at":     "i2np.HandleI2NPMessageBytes",
		"type":   msgType,
		"msg_id": msgID,
		"size":   size,
	}).Debug("i2np_message_received")

	switch msgType {
	case I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD:
		s.HandleVariableTunnelBuildMsg(msgID, payload)
	case I2NP_MESSAGE_TYPE_TUNNEL_BUILD:
		s.HandleTunnelBuildMsg(payload)
	case I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD_REPLY, I2NP_MESSAGE_TYPE_TUNNEL_BUILD_REPLY:
		s.HandleTunnelBuildReplyMsg(msgID, payload)
	case I2NP_MESSAGE_TYPE_DATABASE_LOOKUP:
		s.HandleDatabaseLookupMsg(payload)
	default:
		log.WithFields(logger.Fields{
			"at":   "i2np.HandleI2NPMessageBytes",
			"type": msgType,
		}).Warn("unexpected_i2np_type")
	}
}

// HandleDatabaseLookupMsg answers a DatabaseLookup. Searching is the
// network database's concern; this layer always answers "not found" and
// only routes the reply. A reply-through-tunnel request rides the next
// outbound tunnel to the requester's gateway; without an outbound tunnel,
// and for direct requests, the reply goes straight to the requester.
//
// The reply tunnel ID is read from the four bytes after the flag byte,
// matching the layout CreateDatabaseLookupMsg emits.
func (s *Subsystem) HandleDatabaseLookupMsg(payload []byte) {
	if len(payload) < 65 {
		log.WithField("len", len(payload)).Warn("database lookup truncated")
		return
	}
	var key, from common.Hash
	copy(key[:], payload[0:32])
	copy(from[:], payload[32:64])
	flag := payload[64]

	var replyTunnelID TunnelID
	if flag&DATABASE_LOOKUP_FLAG_TUNNEL != 0 {
		if len(payload) < 69 {
			log.WithField("len", len(payload)).Warn("database lookup truncated")
			return
		}
		replyTunnelID = TunnelID(binary.BigEndian.Uint32(payload[65:69]))
	}

	log.WithFields(logger.Fields{
		"at":           "i2np.HandleDatabaseLookupMsg",
		"key":          hashPrefix(key),
		"reply_tunnel": replyTunnelID,
	}).Debug("database_lookup_received")

	reply := s.CreateDatabaseSearchReplyMsg(key)
	if replyTunnelID != 0 {
		if outbound := s.tunnels.GetNextOutboundTunnel(); outbound != nil {
			if err := outbound.SendTunnelDataTo(from, replyTunnelID, reply); err != nil {
				log.WithError(err).Error("failed to send lookup reply through tunnel")
			}
			return
		}
		log.Debug("no outbound tunnel for lookup reply, sending direct")
	}
	s.transports.SendTo(from, reply)
}
