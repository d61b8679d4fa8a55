// Package garlic keeps the session-key/tag table the I2NP layer registers
// lookup reply sessions into, and queues received garlic messages for the
// decryption worker. The layered-encryption engine itself lives outside
// this module.
package garlic

import (
	"sync"

	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/common/session_tag"
	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-i2np/lib/i2np"
)

var log = logger.GetGoI2PLogger()

// DefaultQueueDepth bounds the garlic message queue.
const DefaultQueueDepth = 64

// Router is a minimal garlic collaborator: a tag table plus a message
// queue. Safe for concurrent use.
type Router struct {
	mu   sync.Mutex
	tags map[session_tag.SessionTag]session_key.SessionKey

	queue chan *i2np.Message
}

// Compile-time interface satisfaction check
var _ i2np.Garlic = (*Router)(nil)

// NewRouter creates an empty garlic router facade.
func NewRouter(queueDepth int) *Router {
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	return &Router{
		tags:  make(map[session_tag.SessionTag]session_key.SessionKey),
		queue: make(chan *i2np.Message, queueDepth),
	}
}

// AddSessionKey registers a (key, tag) pair so a reply encrypted to the
// tag can be decrypted when it arrives.
func (r *Router) AddSessionKey(key session_key.SessionKey, tag session_tag.SessionTag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags[tag] = key
}

// LookupSessionKey returns the key registered for tag, consuming the tag.
func (r *Router) LookupSessionKey(tag session_tag.SessionTag) (session_key.SessionKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.tags[tag]
	if ok {
		delete(r.tags, tag)
	}
	return key, ok
}

// TagCount returns the number of outstanding session tags.
func (r *Router) TagCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tags)
}

// HandleGarlicMessage queues a received garlic message for decryption.
// A full queue drops the message.
func (r *Router) HandleGarlicMessage(msg *i2np.Message) {
	select {
	case r.queue <- msg:
	default:
		log.Warn("garlic queue full, dropping message")
	}
}

// Messages exposes the receive side of the garlic queue.
func (r *Router) Messages() <-chan *i2np.Message {
	return r.queue
}

// HandleDeliveryStatus records a delivery confirmation for a tag set.
// Tag bookkeeping beyond the table lives with the real engine; here the
// confirmation is only logged.
func (r *Router) HandleDeliveryStatus(payload []byte) {
	log.WithFields(logger.Fields{
		"at":  "garlic.Router.HandleDeliveryStatus",
		"len": len(payload),
	}).Debug("delivery_status_confirmed")
}
