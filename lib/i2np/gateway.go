package i2np

import (
	"encoding/binary"

	"github.com/go-i2p/logger"
)

/*
TunnelGateway encapsulation.

	+----+----+----+----+----+----+----+-//
	| tunnelId          | length  | data...
	+----+----+----+----+----+----+----+-//

The gateway payload is itself a complete I2NP message. Wrapping therefore
only needs a 6-byte gateway header and a fresh I2NP header in front of the
existing bytes, which is why message buffers reserve a front pad: a
message with enough offset is wrapped in place, without copying.
*/

// CreateTunnelGatewayMsgFromBytes builds a TunnelGateway message for
// tunnelID around a raw inner message, copying it.
func (s *Subsystem) CreateTunnelGatewayMsgFromBytes(tunnelID TunnelID, inner []byte) *Message {
	msg := NewMessage()
	buf := msg.PayloadSpace()
	binary.BigEndian.PutUint32(buf[0:4], uint32(tunnelID))
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(inner)))
	copy(buf[TUNNEL_GATEWAY_HEADER_SIZE:], inner)
	msg.ExtendPayload(TUNNEL_GATEWAY_HEADER_SIZE + len(inner))
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY, 0)
	return msg
}

// CreateTunnelGatewayMsg wraps an owned message for tunnelID. When the
// message's reserved prefix still has room for a gateway header and an
// I2NP header the wrap happens in place and the same message is returned;
// otherwise a copying wrap allocates a new one.
func (s *Subsystem) CreateTunnelGatewayMsg(tunnelID TunnelID, msg *Message) *Message {
	if msg.Offset() >= I2NP_HEADER_SIZE+TUNNEL_GATEWAY_HEADER_SIZE {
		innerLen := msg.Length()
		gateway := msg.buf[msg.offset-TUNNEL_GATEWAY_HEADER_SIZE:]
		binary.BigEndian.PutUint32(gateway[0:4], uint32(tunnelID))
		binary.BigEndian.PutUint16(gateway[4:6], uint16(innerLen))
		msg.offset -= I2NP_HEADER_SIZE + TUNNEL_GATEWAY_HEADER_SIZE
		msg.length = innerLen + I2NP_HEADER_SIZE + TUNNEL_GATEWAY_HEADER_SIZE
		s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY, 0)
		return msg
	}
	return s.CreateTunnelGatewayMsgFromBytes(tunnelID, msg.Bytes())
}

// CreateTunnelGatewayMsgWithType builds the inner message of msgType
// around payload with the given pinned message ID, then wraps it for
// tunnelID — both headers land in the same buffer.
func (s *Subsystem) CreateTunnelGatewayMsgWithType(tunnelID TunnelID, msgType int, payload []byte, replyMsgID uint32) *Message {
	msg := NewMessage()
	// leave room for the outer headers, build the content message first
	msg.offset += I2NP_HEADER_SIZE + TUNNEL_GATEWAY_HEADER_SIZE
	msg.AppendPayload(payload)
	s.FillMessageHeader(msg, msgType, replyMsgID)

	innerLen := msg.Length()
	gateway := msg.buf[msg.offset-TUNNEL_GATEWAY_HEADER_SIZE:]
	binary.BigEndian.PutUint32(gateway[0:4], uint32(tunnelID))
	binary.BigEndian.PutUint16(gateway[4:6], uint16(innerLen))
	msg.offset -= I2NP_HEADER_SIZE + TUNNEL_GATEWAY_HEADER_SIZE
	msg.length = innerLen + I2NP_HEADER_SIZE + TUNNEL_GATEWAY_HEADER_SIZE
	s.FillMessageHeader(msg, I2NP_MESSAGE_TYPE_TUNNEL_GATEWAY, 0)
	return msg
}

// HandleTunnelGatewayMsg unwraps an inbound TunnelGateway message and
// forwards the inner message down the transit tunnel it names. The
// message is advanced past both headers in place, so the inner message
// continues as the owned message. A transit DatabaseStore may carry a new
// or updated RouterInfo, so a clone of the inner message goes to the
// network database while the original stays on the tunnel path.
func (s *Subsystem) HandleTunnelGatewayMsg(msg *Message) {
	payload := msg.Payload()
	if len(payload) < TUNNEL_GATEWAY_HEADER_SIZE {
		log.Error("tunnel gateway header truncated")
		return
	}
	tunnelID := TunnelID(binary.BigEndian.Uint32(payload[0:4]))
	innerLen := int(binary.BigEndian.Uint16(payload[4:6]))

	if err := msg.Advance(I2NP_HEADER_SIZE+TUNNEL_GATEWAY_HEADER_SIZE, innerLen); err != nil {
		log.WithError(err).Error("tunnel gateway payload truncated")
		return
	}
	if innerLen < I2NP_HEADER_SIZE {
		log.Error("tunnel gateway inner message too short")
		return
	}

	log.WithFields(logger.Fields{
		"at":         "i2np.HandleTunnelGatewayMsg",
		"tunnel_id":  tunnelID,
		"length":     innerLen,
		"inner_type": msg.Type(),
	}).Debug("tunnel_gateway")

	if msg.Type() == I2NP_MESSAGE_TYPE_DATABASE_STORE {
		// transit DatabaseStore may contain a new or updated RouterInfo
		s.netDB.PostMessage(msg.Clone())
	}

	transit := s.tunnels.GetTransitTunnel(tunnelID)
	if transit == nil {
		log.WithFields(logger.Fields{
			"at":        "i2np.HandleTunnelGatewayMsg",
			"tunnel_id": tunnelID,
		}).Warn("transit_tunnel_not_found")
		return
	}
	if err := transit.SendTunnelData(msg); err != nil {
		log.WithError(err).Error("failed to relay tunnel data")
	}
}
