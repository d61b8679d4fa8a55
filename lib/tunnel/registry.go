package tunnel

import (
	"sync"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-i2np/lib/i2np"
)

// DefaultTunnelDataQueueDepth bounds the tunnel-data queue when the
// configuration does not say otherwise.
const DefaultTunnelDataQueueDepth = 1024

// Compile-time interface satisfaction check
var _ i2np.TunnelRegistry = (*Registry)(nil)

// Registry tracks pending, transit, inbound and outbound tunnels and
// queues received tunnel data for the tunnel workers. It implements
// i2np.TunnelRegistry and is safe for concurrent use; the data queue
// preserves per-producer order.
type Registry struct {
	mu       sync.RWMutex
	transit  map[i2np.TunnelID]*TransitTunnel
	pending  map[uint32]*PendingTunnel
	inbound  map[i2np.TunnelID]*PendingTunnel
	outbound []*OutboundTunnel
	nextOut  int

	dataQueue chan *i2np.Message
	fwd       Forwarder
}

// NewRegistry creates an empty registry. queueDepth <= 0 uses the
// default. The forwarder is bound later with SetForwarder because the
// i2np subsystem that implements it is constructed with the registry as a
// collaborator.
func NewRegistry(queueDepth int) *Registry {
	if queueDepth <= 0 {
		queueDepth = DefaultTunnelDataQueueDepth
	}
	return &Registry{
		transit:   make(map[i2np.TunnelID]*TransitTunnel),
		pending:   make(map[uint32]*PendingTunnel),
		inbound:   make(map[i2np.TunnelID]*PendingTunnel),
		dataQueue: make(chan *i2np.Message, queueDepth),
	}
}

// SetForwarder binds the message builder/sender used by tunnels created
// from here on.
func (r *Registry) SetForwarder(fwd Forwarder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fwd = fwd
}

// AddPendingTunnel registers an originated build, keyed by its message ID,
// until the reply arrives.
func (r *Registry) AddPendingTunnel(t *PendingTunnel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[t.MessageID()] = t
}

// GetPendingTunnel looks up an originated build by the reply's message ID.
func (r *Registry) GetPendingTunnel(msgID uint32) i2np.PendingTunnel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.pending[msgID]; ok {
		return t
	}
	return nil
}

// AddInboundTunnel promotes an accepted pending tunnel to inbound.
func (r *Registry) AddInboundTunnel(t i2np.PendingTunnel) {
	pending, ok := t.(*PendingTunnel)
	if !ok {
		log.Error("inbound tunnel of unknown type")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, pending.MessageID())
	r.inbound[pending.TunnelID()] = pending

	log.WithFields(logger.Fields{
		"at":        "tunnel.Registry.AddInboundTunnel",
		"tunnel_id": pending.TunnelID(),
	}).Debug("inbound_tunnel_added")
}

// AddOutboundTunnel promotes an accepted pending tunnel to outbound.
func (r *Registry) AddOutboundTunnel(t i2np.PendingTunnel) {
	pending, ok := t.(*PendingTunnel)
	if !ok {
		log.Error("outbound tunnel of unknown type")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, pending.MessageID())
	r.outbound = append(r.outbound, NewOutboundTunnel(pending, r.fwd))

	log.WithFields(logger.Fields{
		"at":        "tunnel.Registry.AddOutboundTunnel",
		"tunnel_id": pending.TunnelID(),
	}).Debug("outbound_tunnel_added")
}

// CreateTransitTunnel builds the hop state for a build request this
// router accepted.
func (r *Registry) CreateTransitTunnel(receiveTunnelID i2np.TunnelID, nextIdent common.Hash,
	nextTunnelID i2np.TunnelID, layerKey, ivKey session_key.SessionKey,
	isGateway, isEndpoint bool,
) (i2np.TransitTunnel, error) {
	r.mu.RLock()
	fwd := r.fwd
	r.mu.RUnlock()
	return NewTransitTunnel(receiveTunnelID, nextIdent, nextTunnelID, layerKey, ivKey, isGateway, isEndpoint, fwd)
}

// AddTransitTunnel registers a created transit tunnel.
func (r *Registry) AddTransitTunnel(t i2np.TransitTunnel) {
	transit, ok := t.(*TransitTunnel)
	if !ok {
		log.Error("transit tunnel of unknown type")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transit[transit.TunnelID()] = transit
}

// GetTransitTunnel looks up a transit tunnel by its receive tunnel ID.
func (r *Registry) GetTransitTunnel(tunnelID i2np.TunnelID) i2np.TransitTunnel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.transit[tunnelID]; ok {
		return t
	}
	return nil
}

// GetNextOutboundTunnel returns outbound tunnels round robin, nil when
// none exist yet.
func (r *Registry) GetNextOutboundTunnel() i2np.OutboundTunnel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outbound) == 0 {
		return nil
	}
	t := r.outbound[r.nextOut%len(r.outbound)]
	r.nextOut++
	return t
}

// PostTunnelData queues a received TunnelData message for the tunnel
// workers. A full queue drops the message.
func (r *Registry) PostTunnelData(msg *i2np.Message) {
	select {
	case r.dataQueue <- msg:
	default:
		log.Warn("tunnel data queue full, dropping message")
	}
}

// TunnelData exposes the receive side of the tunnel-data queue.
func (r *Registry) TunnelData() <-chan *i2np.Message {
	return r.dataQueue
}

// RemoveExpiredTransit drops transit tunnels past their lifetime and
// returns how many were removed.
func (r *Registry) RemoveExpiredTransit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, t := range r.transit {
		if t.Expired() {
			delete(r.transit, id)
			removed++
		}
	}
	return removed
}
