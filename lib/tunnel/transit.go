package tunnel

import (
	"time"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/crypto/tunnel"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-i2np/lib/i2np"
)

var log = logger.GetGoI2PLogger()

// DefaultTransitLifetime is how long a transit tunnel stays valid.
const DefaultTransitLifetime = 10 * time.Minute

// Forwarder builds and sends the messages a tunnel emits. Implemented by
// the i2np subsystem.
type Forwarder interface {
	SendTo(ident common.Hash, msg *i2np.Message)
	CreateTunnelDataMsgTo(tunnelID i2np.TunnelID, payload []byte) *i2np.Message
	CreateTunnelGatewayMsg(tunnelID i2np.TunnelID, msg *i2np.Message) *i2np.Message
}

// TransitTunnel is one hop of someone else's tunnel passing through this
// router: it applies this hop's AES layer and hands the message to the
// next hop.
type TransitTunnel struct {
	tunnelID     i2np.TunnelID
	nextIdent    common.Hash
	nextTunnelID i2np.TunnelID
	encryption   tunnel.TunnelEncryptor
	isGateway    bool
	isEndpoint   bool
	createdAt    time.Time
	fwd          Forwarder
}

// NewTransitTunnel builds the hop state from a decrypted build request.
// The layer and IV keys come from the BuildRequestRecord and seed the AES
// tunnel encryptor, the same construction participating tunnels use.
func NewTransitTunnel(tunnelID i2np.TunnelID, nextIdent common.Hash, nextTunnelID i2np.TunnelID,
	layerKey, ivKey session_key.SessionKey, isGateway, isEndpoint bool, fwd Forwarder,
) (*TransitTunnel, error) {
	var tunnelLayerKey, tunnelIVKey tunnel.TunnelKey
	copy(tunnelLayerKey[:], layerKey[:])
	copy(tunnelIVKey[:], ivKey[:])

	encryption, err := tunnel.NewAESEncryptor(tunnelLayerKey, tunnelIVKey)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to create transit tunnel encryption")
	}

	return &TransitTunnel{
		tunnelID:     tunnelID,
		nextIdent:    nextIdent,
		nextTunnelID: nextTunnelID,
		encryption:   encryption,
		isGateway:    isGateway,
		isEndpoint:   isEndpoint,
		createdAt:    time.Now(),
		fwd:          fwd,
	}, nil
}

// TunnelID returns the receive tunnel ID this hop answers to.
func (t *TransitTunnel) TunnelID() i2np.TunnelID {
	return t.tunnelID
}

// IsGateway reports whether this hop is the tunnel's inbound gateway.
func (t *TransitTunnel) IsGateway() bool {
	return t.isGateway
}

// IsEndpoint reports whether this hop is the tunnel's outbound endpoint.
func (t *TransitTunnel) IsEndpoint() bool {
	return t.isEndpoint
}

// Expired reports whether the transit tunnel has outlived its lease.
func (t *TransitTunnel) Expired() bool {
	return time.Since(t.createdAt) > DefaultTransitLifetime
}

// SendTunnelData relays one message a hop further. A TunnelData message
// gets this hop's layer applied to everything after the tunnel ID prefix
// and moves on under the next hop's tunnel ID. Any other message arrives
// here through a gateway; it is carried onward as a single tunnel data
// block when it fits.
func (t *TransitTunnel) SendTunnelData(msg *i2np.Message) error {
	payload := msg.Payload()

	if msg.Type() == i2np.I2NP_MESSAGE_TYPE_TUNNEL_DATA {
		if len(payload) != i2np.TUNNEL_DATA_MSG_SIZE {
			return oops.Errorf("transit tunnel %d: bad tunnel data size %d", t.tunnelID, len(payload))
		}
		layered, err := t.encryption.Encrypt(payload[4:])
		if err != nil {
			return oops.Wrapf(err, "transit tunnel %d: layer encryption failed", t.tunnelID)
		}
		out := t.fwd.CreateTunnelDataMsgTo(t.nextTunnelID, layered)
		t.fwd.SendTo(t.nextIdent, out)
		return nil
	}

	// gateway side: encapsulate the whole message
	if msg.Length() > i2np.TUNNEL_DATA_MSG_SIZE-4 {
		return oops.Errorf("transit tunnel %d: message of %d bytes needs fragmentation", t.tunnelID, msg.Length())
	}
	block := make([]byte, i2np.TUNNEL_DATA_MSG_SIZE-4)
	copy(block, msg.Bytes())
	out := t.fwd.CreateTunnelDataMsgTo(t.nextTunnelID, block)
	t.fwd.SendTo(t.nextIdent, out)

	log.WithFields(logger.Fields{
		"at":          "tunnel.TransitTunnel.SendTunnelData",
		"tunnel_id":   t.tunnelID,
		"next_tunnel": t.nextTunnelID,
	}).Debug("relayed_gateway_message")
	return nil
}
