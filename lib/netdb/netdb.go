// Package netdb is the queue-backed facade between the I2NP message layer
// and the network database. Received DatabaseStore and DatabaseSearchReply
// messages are enqueued for an external worker; the read-only lookups the
// message builders need are served from an in-memory RouterInfo table.
// Persistence, reseed and the lookup protocol live outside this module.
package netdb

import (
	"encoding/binary"
	"io"
	"sync"

	common "github.com/go-i2p/common/data"
	"github.com/go-i2p/common/router_info"
	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-i2np/lib/i2np"
)

var log = logger.GetGoI2PLogger()

// DefaultQueueDepth bounds the inbound message queue.
const DefaultQueueDepth = 256

// StdNetDB implements i2np.NetDB over an in-memory table and a message
// queue. Safe for concurrent use; the queue preserves per-producer order.
type StdNetDB struct {
	mu         sync.RWMutex
	routers    map[common.Hash]*router_info.RouterInfo
	floodfills map[common.Hash]bool

	queue chan *i2np.Message
	rng   io.Reader
}

// Compile-time interface satisfaction check
var _ i2np.NetDB = (*StdNetDB)(nil)

// NewStdNetDB creates an empty database facade. queueDepth <= 0 uses the
// default; rng nil uses the process CSPRNG.
func NewStdNetDB(queueDepth int, rng io.Reader) *StdNetDB {
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	if rng == nil {
		rng = rand.Reader
	}
	return &StdNetDB{
		routers:    make(map[common.Hash]*router_info.RouterInfo),
		floodfills: make(map[common.Hash]bool),
		queue:      make(chan *i2np.Message, queueDepth),
		rng:        rng,
	}
}

// PostMessage enqueues a received database message for asynchronous
// processing. A full queue drops the message.
func (db *StdNetDB) PostMessage(msg *i2np.Message) {
	select {
	case db.queue <- msg:
	default:
		log.Warn("netdb queue full, dropping message")
	}
}

// Messages exposes the receive side of the queue for the worker.
func (db *StdNetDB) Messages() <-chan *i2np.Message {
	return db.queue
}

// AddRouterInfo stores a RouterInfo under its identity hash.
func (db *StdNetDB) AddRouterInfo(ri *router_info.RouterInfo, floodfill bool) error {
	hash, err := ri.IdentHash()
	if err != nil {
		return oops.Wrapf(err, "failed to hash router identity")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.routers[hash] = ri
	if floodfill {
		db.floodfills[hash] = true
	}
	return nil
}

// Size returns the number of known routers.
func (db *StdNetDB) Size() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.routers)
}

// FindRouter returns the RouterInfo stored under hash.
func (db *StdNetDB) FindRouter(hash common.Hash) (*router_info.RouterInfo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if ri, ok := db.routers[hash]; ok {
		return ri, nil
	}
	return nil, oops.Errorf("router %x not found", hash[:8])
}

// GetRandomRouter picks a uniformly random known router, excluding
// compatibleWith itself when given.
func (db *StdNetDB) GetRandomRouter(compatibleWith *router_info.RouterInfo) (*router_info.RouterInfo, error) {
	var exclude common.Hash
	haveExclude := false
	if compatibleWith != nil {
		if hash, err := compatibleWith.IdentHash(); err == nil {
			exclude = hash
			haveExclude = true
		}
	}

	db.mu.RLock()
	defer db.mu.RUnlock()
	candidates := make([]*router_info.RouterInfo, 0, len(db.routers))
	for hash, ri := range db.routers {
		if haveExclude && hash == exclude {
			continue
		}
		candidates = append(candidates, ri)
	}
	if len(candidates) == 0 {
		return nil, oops.Errorf("no routers known")
	}
	var idx [4]byte
	if _, err := io.ReadFull(db.rng, idx[:]); err != nil {
		return nil, oops.Wrapf(err, "failed to read random index")
	}
	return candidates[int(binary.BigEndian.Uint32(idx[:])%uint32(len(candidates)))], nil
}

// GetClosestFloodfill returns the known floodfill whose identity hash is
// XOR-closest to dest, skipping excluded peers.
func (db *StdNetDB) GetClosestFloodfill(dest common.Hash, excluded map[common.Hash]bool) (*router_info.RouterInfo, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var best *router_info.RouterInfo
	var bestDist common.Hash
	haveBest := false
	for hash := range db.floodfills {
		if excluded[hash] {
			continue
		}
		ri, ok := db.routers[hash]
		if !ok {
			continue
		}
		dist := xorDistance(dest, hash)
		if !haveBest || closer(dist, bestDist) {
			best = ri
			bestDist = dist
			haveBest = true
		}
	}
	if !haveBest {
		return nil, oops.Errorf("no floodfill available")
	}
	return best, nil
}

func xorDistance(a, b common.Hash) common.Hash {
	var d common.Hash
	for i := range d {
		d[i] = a[i] ^ b[i]
	}
	return d
}

func closer(a, b common.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
