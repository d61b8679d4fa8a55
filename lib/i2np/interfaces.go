package i2np

import (
	"io"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_info"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/common/session_tag"
	elgamal "github.com/go-i2p/go-i2np/lib/crypto/elg"
)

// Collaborator contracts. The subsystem is a library: it owns no threads
// and reaches the rest of the router only through these interfaces, so
// dispatch can be tested in isolation.

// Clock supplies wall time for header expirations. Injected so tests are
// deterministic.
type Clock interface {
	NowMilliseconds() uint64
}

// RouterContext exposes the local router's long-term material. Read-only
// for this subsystem.
type RouterContext interface {
	// RouterInfoBytes returns the serialized local RouterInfo, as published.
	RouterInfoBytes() []byte
	IdentHash() common.Hash
	PrivateKey() *elgamal.PrivateKey
	// Rng returns the router's random source.
	Rng() io.Reader
}

// Transports hands fully formed messages to the transport layer.
// Ownership of the message transfers on SendTo.
type Transports interface {
	SendTo(ident common.Hash, msg *Message)
}

// NetDB receives network database messages for asynchronous processing and
// serves read-only lookups for builders.
type NetDB interface {
	// PostMessage enqueues a received DatabaseStore or DatabaseSearchReply.
	// Ownership of the message transfers to the queue.
	PostMessage(msg *Message)

	FindRouter(hash common.Hash) (*router_info.RouterInfo, error)
	GetRandomRouter(compatibleWith *router_info.RouterInfo) (*router_info.RouterInfo, error)
	GetClosestFloodfill(dest common.Hash, excluded map[common.Hash]bool) (*router_info.RouterInfo, error)
}

// Garlic is the layered-encryption router.
type Garlic interface {
	// AddSessionKey registers a fresh (key, tag) pair so an encrypted
	// lookup reply can be decrypted when it arrives.
	AddSessionKey(key session_key.SessionKey, tag session_tag.SessionTag)
	HandleGarlicMessage(msg *Message)
	HandleDeliveryStatus(payload []byte)
}

// TransitTunnel is the installed state for a hop we participate in.
type TransitTunnel interface {
	TunnelID() TunnelID
	// SendTunnelData relays a message one hop further: a TunnelData
	// message, or the inner message unwrapped from a TunnelGateway.
	SendTunnelData(msg *Message) error
}

// PendingTunnel is a tunnel this router originated and is waiting on a
// build reply for, keyed by the build's message ID.
type PendingTunnel interface {
	TunnelID() TunnelID
	IsInbound() bool
	// HandleBuildResponse validates the CBC reply chain of every record
	// and reports whether all hops accepted.
	HandleBuildResponse(payload []byte) bool
}

// OutboundTunnel originates at this router.
type OutboundTunnel interface {
	TunnelID() TunnelID
	// SendTunnelDataTo delivers msg into the inbound tunnel identified by
	// (gateway, replyTunnelID).
	SendTunnelDataTo(gateway common.Hash, replyTunnelID TunnelID, msg *Message) error
}

// TunnelPool owns a set of tunnels and correlates delivery statuses.
type TunnelPool interface {
	ProcessDeliveryStatus(msg *Message)
}

// InboundTunnel terminates at this router. Messages received through it
// carry a non-owning reference to it.
type InboundTunnel interface {
	TunnelID() TunnelID
	Pool() TunnelPool
}

// TunnelRegistry tracks pending, transit, inbound and outbound tunnels.
// Implementations run their own workers and must be safe for concurrent
// use; PostTunnelData preserves per-producer order.
type TunnelRegistry interface {
	GetPendingTunnel(msgID uint32) PendingTunnel
	AddInboundTunnel(t PendingTunnel)
	AddOutboundTunnel(t PendingTunnel)

	CreateTransitTunnel(receiveTunnelID TunnelID, nextIdent common.Hash, nextTunnelID TunnelID,
		layerKey, ivKey session_key.SessionKey, isGateway, isEndpoint bool) (TransitTunnel, error)
	AddTransitTunnel(t TransitTunnel)
	GetTransitTunnel(tunnelID TunnelID) TransitTunnel

	GetNextOutboundTunnel() OutboundTunnel
	PostTunnelData(msg *Message)
}

// Collaborators bundles everything the subsystem needs. Clock may be nil,
// in which case the system clock is used.
type Collaborators struct {
	Context    RouterContext
	NetDB      NetDB
	Transports Transports
	Tunnels    TunnelRegistry
	Garlic     Garlic
	Clock      Clock
}
