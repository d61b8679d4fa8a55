package tunnel

import (
	common "github.com/go-i2p/common/data"

	"github.com/go-i2p/go-i2np/lib/i2np"
)

// OutboundTunnel is a tunnel originating at this router. Replies destined
// for another router's inbound tunnel leave through here.
type OutboundTunnel struct {
	tunnelID i2np.TunnelID
	hops     []HopConfig
	fwd      Forwarder
}

// NewOutboundTunnel wraps an accepted outbound build for sending.
func NewOutboundTunnel(pending *PendingTunnel, fwd Forwarder) *OutboundTunnel {
	return &OutboundTunnel{
		tunnelID: pending.TunnelID(),
		hops:     pending.hops,
		fwd:      fwd,
	}
}

func (t *OutboundTunnel) TunnelID() i2np.TunnelID {
	return t.tunnelID
}

// SendTunnelDataTo delivers msg into the inbound tunnel identified by
// (gateway, replyTunnelID): the message is wrapped in a TunnelGateway for
// the reply tunnel and handed toward the gateway router.
func (t *OutboundTunnel) SendTunnelDataTo(gateway common.Hash, replyTunnelID i2np.TunnelID, msg *i2np.Message) error {
	wrapped := t.fwd.CreateTunnelGatewayMsg(replyTunnelID, msg)
	t.fwd.SendTo(gateway, wrapped)
	return nil
}
