package tunnel

import (
	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/logger"

	aes "github.com/go-i2p/go-i2np/lib/crypto/aes"
	"github.com/go-i2p/go-i2np/lib/i2np"
)

// HopConfig is the originator's material for one candidate hop: the keys
// written into that hop's BuildRequestRecord.
type HopConfig struct {
	Ident    common.Hash
	LayerKey session_key.SessionKey
	IVKey    session_key.SessionKey
	ReplyKey session_key.SessionKey
	ReplyIV  [16]byte
	TunnelID i2np.TunnelID
}

// PendingTunnel is a tunnel this router has asked the network to build
// and is waiting on the reply for. The build's message ID correlates the
// reply; hop i answers in record slot i.
type PendingTunnel struct {
	tunnelID i2np.TunnelID
	msgID    uint32
	inbound  bool
	hops     []HopConfig
}

// NewPendingTunnel tracks an originated build until its reply arrives.
func NewPendingTunnel(tunnelID i2np.TunnelID, msgID uint32, inbound bool, hops []HopConfig) *PendingTunnel {
	return &PendingTunnel{
		tunnelID: tunnelID,
		msgID:    msgID,
		inbound:  inbound,
		hops:     hops,
	}
}

func (t *PendingTunnel) TunnelID() i2np.TunnelID {
	return t.tunnelID
}

func (t *PendingTunnel) MessageID() uint32 {
	return t.msgID
}

func (t *PendingTunnel) IsInbound() bool {
	return t.inbound
}

// HandleBuildResponse validates the build reply. Each hop encrypted every
// record once with its reply key, key and IV reset per record, so peeling
// runs the hops backwards: after undoing hops n-1..i over the first i+1
// records, hop i's own slot is cleartext and can be checked. All hops
// must have answered accept.
func (t *PendingTunnel) HandleBuildResponse(payload []byte) bool {
	records, ok := t.replyRecords(payload)
	if !ok {
		return false
	}

	for i := len(t.hops) - 1; i >= 0; i-- {
		hop := &t.hops[i]
		for j := 0; j <= i; j++ {
			decrypter := &aes.AESSymmetricDecrypter{Key: hop.ReplyKey[:], IV: hop.ReplyIV[:]}
			decrypted, err := decrypter.DecryptNoPadding(records[j])
			if err != nil {
				log.WithError(err).Error("failed to decrypt build reply record")
				return false
			}
			copy(records[j], decrypted)
		}

		response, err := i2np.ReadBuildResponseRecord(records[i])
		if err != nil {
			log.WithFields(logger.Fields{
				"at":  "tunnel.PendingTunnel.HandleBuildResponse",
				"hop": i,
			}).WithError(err).Warn("invalid_build_response_record")
			return false
		}
		if response.Reply != 0 {
			log.WithFields(logger.Fields{
				"at":    "tunnel.PendingTunnel.HandleBuildResponse",
				"hop":   i,
				"reply": response.Reply,
			}).Debug("hop_declined_tunnel")
			return false
		}
	}
	return true
}

// replyRecords slices the reply payload into per-hop record slots,
// accepting both the variable form (count prefix) and the fixed 8-record
// form.
func (t *PendingTunnel) replyRecords(payload []byte) ([][]byte, bool) {
	num := i2np.NUM_TUNNEL_BUILD_RECORDS
	offset := 0
	if len(payload)%i2np.TUNNEL_BUILD_RECORD_SIZE != 0 {
		if len(payload) < 1 {
			return nil, false
		}
		num = int(payload[0])
		offset = 1
	}
	if len(payload) < offset+num*i2np.TUNNEL_BUILD_RECORD_SIZE || num < len(t.hops) {
		log.WithFields(logger.Fields{
			"at":   "tunnel.PendingTunnel.replyRecords",
			"num":  num,
			"len":  len(payload),
			"hops": len(t.hops),
		}).Warn("build_reply_truncated")
		return nil, false
	}
	records := make([][]byte, num)
	for i := 0; i < num; i++ {
		records[i] = payload[offset+i*i2np.TUNNEL_BUILD_RECORD_SIZE : offset+(i+1)*i2np.TUNNEL_BUILD_RECORD_SIZE]
	}
	return records, true
}
