package i2np

import (
	"io"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_info"
	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/common/session_tag"
	"github.com/samber/oops"

	elgamal "github.com/go-i2p/go-i2np/lib/crypto/elg"
)

// fixedClock reports a constant wall time.
type fixedClock uint64

func (c fixedClock) NowMilliseconds() uint64 { return uint64(c) }

// seqRng yields a fixed byte sequence, then zeros.
type seqRng struct {
	data []byte
	pos  int
}

func (r *seqRng) Read(p []byte) (int, error) {
	for i := range p {
		if r.pos < len(r.data) {
			p[i] = r.data[r.pos]
			r.pos++
		} else {
			p[i] = 0
		}
	}
	return len(p), nil
}

// testContext is a RouterContext double.
type testContext struct {
	ident   common.Hash
	priv    *elgamal.PrivateKey
	riBytes []byte
	rng     io.Reader
}

func (c *testContext) IdentHash() common.Hash          { return c.ident }
func (c *testContext) PrivateKey() *elgamal.PrivateKey { return c.priv }
func (c *testContext) RouterInfoBytes() []byte         { return c.riBytes }
func (c *testContext) Rng() io.Reader                  { return c.rng }

type sentMessage struct {
	ident common.Hash
	msg   *Message
}

// mockTransports records every send.
type mockTransports struct {
	sent []sentMessage
}

func (t *mockTransports) SendTo(ident common.Hash, msg *Message) {
	t.sent = append(t.sent, sentMessage{ident: ident, msg: msg})
}

// mockNetDB records posted messages; lookups always miss.
type mockNetDB struct {
	posted []*Message
}

func (db *mockNetDB) PostMessage(msg *Message) { db.posted = append(db.posted, msg) }
func (db *mockNetDB) FindRouter(hash common.Hash) (*router_info.RouterInfo, error) {
	return nil, oops.Errorf("not found")
}

func (db *mockNetDB) GetRandomRouter(compatibleWith *router_info.RouterInfo) (*router_info.RouterInfo, error) {
	return nil, oops.Errorf("no routers")
}

func (db *mockNetDB) GetClosestFloodfill(dest common.Hash, excluded map[common.Hash]bool) (*router_info.RouterInfo, error) {
	return nil, oops.Errorf("no floodfills")
}

type registeredSession struct {
	key session_key.SessionKey
	tag session_tag.SessionTag
}

// mockGarlic records everything handed to it.
type mockGarlic struct {
	sessions []registeredSession
	messages []*Message
	statuses [][]byte
}

func (g *mockGarlic) AddSessionKey(key session_key.SessionKey, tag session_tag.SessionTag) {
	g.sessions = append(g.sessions, registeredSession{key: key, tag: tag})
}
func (g *mockGarlic) HandleGarlicMessage(msg *Message)  { g.messages = append(g.messages, msg) }
func (g *mockGarlic) HandleDeliveryStatus(payload []byte) {
	g.statuses = append(g.statuses, append([]byte(nil), payload...))
}

// createdTransit captures CreateTransitTunnel arguments.
type createdTransit struct {
	receiveTunnelID TunnelID
	nextIdent       common.Hash
	nextTunnelID    TunnelID
	layerKey        session_key.SessionKey
	ivKey           session_key.SessionKey
	isGateway       bool
	isEndpoint      bool
}

// mockTransitTunnel records relayed messages.
type mockTransitTunnel struct {
	tunnelID TunnelID
	relayed  []*Message
}

func (t *mockTransitTunnel) TunnelID() TunnelID { return t.tunnelID }
func (t *mockTransitTunnel) SendTunnelData(msg *Message) error {
	t.relayed = append(t.relayed, msg)
	return nil
}

// mockPendingTunnel scripts a build response outcome.
type mockPendingTunnel struct {
	tunnelID TunnelID
	inbound  bool
	accept   bool
	handled  [][]byte
}

func (t *mockPendingTunnel) TunnelID() TunnelID { return t.tunnelID }
func (t *mockPendingTunnel) IsInbound() bool    { return t.inbound }
func (t *mockPendingTunnel) HandleBuildResponse(payload []byte) bool {
	t.handled = append(t.handled, append([]byte(nil), payload...))
	return t.accept
}

type outboundSend struct {
	gateway       common.Hash
	replyTunnelID TunnelID
	msg           *Message
}

// mockOutboundTunnel records tunnel sends.
type mockOutboundTunnel struct {
	tunnelID TunnelID
	sent     []outboundSend
}

func (t *mockOutboundTunnel) TunnelID() TunnelID { return t.tunnelID }
func (t *mockOutboundTunnel) SendTunnelDataTo(gateway common.Hash, replyTunnelID TunnelID, msg *Message) error {
	t.sent = append(t.sent, outboundSend{gateway: gateway, replyTunnelID: replyTunnelID, msg: msg})
	return nil
}

// mockRegistry is a scriptable TunnelRegistry.
type mockRegistry struct {
	pending    map[uint32]PendingTunnel
	transit    map[TunnelID]TransitTunnel
	created    []createdTransit
	added      []TransitTunnel
	inbound    []PendingTunnel
	outboundT  []PendingTunnel
	nextOut    OutboundTunnel
	tunnelData []*Message
}

func newMockRegistry() *mockRegistry {
	return &mockRegistry{
		pending: make(map[uint32]PendingTunnel),
		transit: make(map[TunnelID]TransitTunnel),
	}
}

func (r *mockRegistry) GetPendingTunnel(msgID uint32) PendingTunnel {
	if t, ok := r.pending[msgID]; ok {
		return t
	}
	return nil
}

func (r *mockRegistry) AddInboundTunnel(t PendingTunnel)  { r.inbound = append(r.inbound, t) }
func (r *mockRegistry) AddOutboundTunnel(t PendingTunnel) { r.outboundT = append(r.outboundT, t) }

func (r *mockRegistry) CreateTransitTunnel(receiveTunnelID TunnelID, nextIdent common.Hash,
	nextTunnelID TunnelID, layerKey, ivKey session_key.SessionKey, isGateway, isEndpoint bool,
) (TransitTunnel, error) {
	r.created = append(r.created, createdTransit{
		receiveTunnelID: receiveTunnelID,
		nextIdent:       nextIdent,
		nextTunnelID:    nextTunnelID,
		layerKey:        layerKey,
		ivKey:           ivKey,
		isGateway:       isGateway,
		isEndpoint:      isEndpoint,
	})
	return &mockTransitTunnel{tunnelID: receiveTunnelID}, nil
}

func (r *mockRegistry) AddTransitTunnel(t TransitTunnel) {
	r.added = append(r.added, t)
	r.transit[t.TunnelID()] = t
}

func (r *mockRegistry) GetTransitTunnel(tunnelID TunnelID) TransitTunnel {
	if t, ok := r.transit[tunnelID]; ok {
		return t
	}
	return nil
}

func (r *mockRegistry) GetNextOutboundTunnel() OutboundTunnel { return r.nextOut }
func (r *mockRegistry) PostTunnelData(msg *Message)           { r.tunnelData = append(r.tunnelData, msg) }

// mockInboundTunnel carries an optional pool for delivery-status routing.
type mockInboundTunnel struct {
	tunnelID TunnelID
	pool     TunnelPool
}

func (t *mockInboundTunnel) TunnelID() TunnelID { return t.tunnelID }
func (t *mockInboundTunnel) Pool() TunnelPool   { return t.pool }

type mockPool struct {
	statuses []*Message
}

func (p *mockPool) ProcessDeliveryStatus(msg *Message) { p.statuses = append(p.statuses, msg) }

// newTestSubsystem builds a subsystem over fresh mocks.
func newTestSubsystem(ctx RouterContext, clock Clock) (*Subsystem, *mockNetDB, *mockTransports, *mockRegistry, *mockGarlic) {
	db := &mockNetDB{}
	transports := &mockTransports{}
	registry := newMockRegistry()
	garlic := &mockGarlic{}
	s := New(Collaborators{
		Context:    ctx,
		NetDB:      db,
		Transports: transports,
		Tunnels:    registry,
		Garlic:     garlic,
		Clock:      clock,
	})
	return s, db, transports, registry, garlic
}
