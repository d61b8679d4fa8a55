package i2np

import (
	"bytes"
	"io"

	"github.com/go-i2p/logger"

	aes "github.com/go-i2p/go-i2np/lib/crypto/aes"
)

/*
Tunnel build processing.

A TunnelBuild message is 8 concatenated 528-byte records; a
VariableTunnelBuild is a one-byte record count followed by that many
records. Exactly one record is addressed to this router, identified by the
first 16 bytes of our identity hash. That record is ElGamal encrypted to
our long-term key; every other record is opaque ciphertext belonging to
the other hops.

After installing the transit tunnel and overwriting our slot with a
response, every record in the array is AES-256-CBC encrypted with the
reply key and IV from our cleartext — records are encrypted independently,
key and IV are re-set before each one. That is the protocol's mixing step:
each prior hop's ciphertext is perturbed exactly once by our reply key, so
the originator can peel the layers back in reverse hop order, last hop
first.
*/

// handleBuildRequestRecords scans records for our own entry, decrypts it,
// installs the transit tunnel, replaces our slot with an accept response
// and re-encrypts every record with our reply key. records must be
// num*528 bytes and is modified in place. Returns false when no record is
// addressed to this router or the matching record cannot be used; a false
// return means the message is not for us and should be dropped.
func (s *Subsystem) handleBuildRequestRecords(records []byte, num int) (BuildRequestRecord, bool) {
	ourIdent := s.ctx.IdentHash()
	for i := 0; i < num; i++ {
		slot := records[i*TUNNEL_BUILD_RECORD_SIZE : (i+1)*TUNNEL_BUILD_RECORD_SIZE]
		if !bytes.Equal(slot[:TUNNEL_BUILD_RECORD_TO_PEER_SIZE], ourIdent[:TUNNEL_BUILD_RECORD_TO_PEER_SIZE]) {
			continue
		}
		log.WithFields(logger.Fields{
			"at":     "i2np.handleBuildRequestRecords",
			"record": i,
		}).Debug("build_record_is_ours")

		cleartext, err := s.ctx.PrivateKey().Decrypt(slot[TUNNEL_BUILD_RECORD_TO_PEER_SIZE:], false)
		if err != nil {
			log.WithError(err).Error("failed to decrypt build request record")
			return BuildRequestRecord{}, false
		}
		record, err := ReadBuildRequestRecord(cleartext)
		if err != nil {
			log.WithError(err).Error("failed to parse build request record")
			return BuildRequestRecord{}, false
		}

		if err := s.installTransitTunnel(&record); err != nil {
			log.WithError(err).Error("failed to install transit tunnel")
			return BuildRequestRecord{}, false
		}

		s.writeAcceptResponse(slot)
		s.encryptBuildReply(records, num, &record)
		return record, true
	}
	return BuildRequestRecord{}, false
}

// installTransitTunnel registers the hop state from a decrypted request.
func (s *Subsystem) installTransitTunnel(record *BuildRequestRecord) error {
	transit, err := s.tunnels.CreateTransitTunnel(
		record.ReceiveTunnel,
		record.NextIdent, record.NextTunnel,
		record.LayerKey, record.IVKey,
		record.IsGateway(), record.IsEndpoint())
	if err != nil {
		return err
	}
	s.tunnels.AddTransitTunnel(transit)

	log.WithFields(logger.Fields{
		"at":             "i2np.installTransitTunnel",
		"receive_tunnel": record.ReceiveTunnel,
		"next_tunnel":    record.NextTunnel,
		"next_ident":     hashPrefix(record.NextIdent),
		"gateway":        record.IsGateway(),
		"endpoint":       record.IsEndpoint(),
	}).Debug("installed_transit_tunnel")
	return nil
}

// writeAcceptResponse turns our record slot into an accept response in
// place: fresh random padding, ret 0, and the hash over padding and ret.
func (s *Subsystem) writeAcceptResponse(slot []byte) {
	if _, err := io.ReadFull(s.ctx.Rng(), slot[32:TUNNEL_BUILD_RECORD_SIZE-1]); err != nil {
		log.WithError(err).Error("failed to fill build response padding")
	}
	WriteBuildResponseRecord(slot, 0)
}

// encryptBuildReply applies the reply encryption to every record,
// re-setting key and IV before each one.
func (s *Subsystem) encryptBuildReply(records []byte, num int, record *BuildRequestRecord) {
	for j := 0; j < num; j++ {
		slot := records[j*TUNNEL_BUILD_RECORD_SIZE : (j+1)*TUNNEL_BUILD_RECORD_SIZE]
		encrypter := &aes.AESSymmetricEncrypter{Key: record.ReplyKey[:], IV: record.ReplyIV[:]}
		encrypted, err := encrypter.EncryptNoPadding(slot)
		if err != nil {
			log.WithError(err).Error("failed to encrypt build reply record")
			return
		}
		copy(slot, encrypted)
	}
}

// completePendingTunnel lets an originated tunnel validate its build
// reply, then registers it on acceptance.
func (s *Subsystem) completePendingTunnel(pending PendingTunnel, payload []byte) {
	if pending.HandleBuildResponse(payload) {
		if pending.IsInbound() {
			s.tunnels.AddInboundTunnel(pending)
		} else {
			s.tunnels.AddOutboundTunnel(pending)
		}
		log.WithFields(logger.Fields{
			"at":        "i2np.completePendingTunnel",
			"tunnel_id": pending.TunnelID(),
			"inbound":   pending.IsInbound(),
		}).Debug("tunnel_created")
	} else {
		log.WithFields(logger.Fields{
			"at":        "i2np.completePendingTunnel",
			"tunnel_id": pending.TunnelID(),
		}).Debug("tunnel_declined")
	}
}

// forwardBuildMessage passes a processed build message to the next hop:
// the outbound endpoint wraps the reply for the originator's inbound
// tunnel, every other hop forwards the build onward as-is.
func (s *Subsystem) forwardBuildMessage(record *BuildRequestRecord, payload []byte, buildType, replyType int) {
	if record.IsEndpoint() {
		// we are the outbound endpoint, send the reply into the return tunnel
		msg := s.CreateTunnelGatewayMsgWithType(record.NextTunnel, replyType, payload, record.SendMessageID)
		s.transports.SendTo(record.NextIdent, msg)
		return
	}
	s.transports.SendTo(record.NextIdent, s.CreateMessage(buildType, payload, record.SendMessageID))
}

// HandleVariableTunnelBuildMsg processes a VariableTunnelBuild payload. A
// message whose ID matches one of our pending tunnels is the build reply
// arriving at the inbound endpoint; anything else is a candidate request
// for this router to join.
func (s *Subsystem) HandleVariableTunnelBuildMsg(replyMsgID uint32, payload []byte) {
	if len(payload) < 1 {
		log.Error("variable tunnel build without record count")
		return
	}
	num := int(payload[0])
	if len(payload) < 1+num*TUNNEL_BUILD_RECORD_SIZE {
		log.WithFields(logger.Fields{
			"at":  "i2np.HandleVariableTunnelBuildMsg",
			"num": num,
			"len": len(payload),
		}).Error("variable tunnel build truncated")
		return
	}
	log.WithField("num", num).Debug("variable_tunnel_build")

	if pending := s.tunnels.GetPendingTunnel(replyMsgID); pending != nil {
		// endpoint of one of our own inbound tunnels
		s.completePendingTunnel(pending, payload)
		return
	}

	record, ok := s.handleBuildRequestRecords(payload[1:1+num*TUNNEL_BUILD_RECORD_SIZE], num)
	if !ok {
		return
	}
	s.forwardBuildMessage(&record, payload,
		I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD, I2NP_MESSAGE_TYPE_VARIABLE_TUNNEL_BUILD_REPLY)
}

// HandleTunnelBuildMsg processes a fixed 8-record TunnelBuild payload.
func (s *Subsystem) HandleTunnelBuildMsg(payload []byte) {
	if len(payload) < NUM_TUNNEL_BUILD_RECORDS*TUNNEL_BUILD_RECORD_SIZE {
		log.WithField("len", len(payload)).Error("tunnel build truncated")
		return
	}
	record, ok := s.handleBuildRequestRecords(payload[:NUM_TUNNEL_BUILD_RECORDS*TUNNEL_BUILD_RECORD_SIZE], NUM_TUNNEL_BUILD_RECORDS)
	if !ok {
		return
	}
	s.forwardBuildMessage(&record, payload,
		I2NP_MESSAGE_TYPE_TUNNEL_BUILD, I2NP_MESSAGE_TYPE_TUNNEL_BUILD_REPLY)
}

// HandleTunnelBuildReplyMsg correlates a build reply with the pending
// tunnel that originated it. A miss is logged only: the pending tunnel may
// already have timed out.
func (s *Subsystem) HandleTunnelBuildReplyMsg(replyMsgID uint32, payload []byte) {
	pending := s.tunnels.GetPendingTunnel(replyMsgID)
	if pending == nil {
		log.WithFields(logger.Fields{
			"at":     "i2np.HandleTunnelBuildReplyMsg",
			"msg_id": replyMsgID,
		}).Debug("pending_tunnel_not_found")
		return
	}
	s.completePendingTunnel(pending, payload)
}
