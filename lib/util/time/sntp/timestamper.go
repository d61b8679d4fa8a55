// Package sntp disciplines the wall clock with NTP so message expirations
// stay meaningful between routers with skewed system clocks. The
// timestamper tracks an offset against a pool of NTP servers and exposes
// the corrected time as an i2np.Clock.
package sntp

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-i2np/lib/i2np"
)

var log = logger.GetGoI2PLogger()

const (
	defaultQueryFrequency = 11 * time.Minute
	defaultTimeout        = 10 * time.Second
)

// NTPClient queries one NTP server. Swappable for tests.
type NTPClient interface {
	QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error)
}

// DefaultNTPClient queries with the beevik/ntp package.
type DefaultNTPClient struct{}

func (c *DefaultNTPClient) QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error) {
	return ntp.QueryWithOptions(host, options)
}

// RouterTimestamper keeps a clock offset from periodic NTP queries.
// Implements i2np.Clock; before the first successful sync the offset is
// zero and the system clock is reported as-is.
type RouterTimestamper struct {
	servers        []string
	queryFrequency time.Duration
	ntpClient      NTPClient

	mu         sync.RWMutex
	timeOffset time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Compile-time interface satisfaction check
var _ i2np.Clock = (*RouterTimestamper)(nil)

// NewRouterTimestamper creates a stopped timestamper over servers.
// A nil client uses the default NTP client.
func NewRouterTimestamper(servers []string, client NTPClient) *RouterTimestamper {
	if client == nil {
		client = &DefaultNTPClient{}
	}
	return &RouterTimestamper{
		servers:        servers,
		queryFrequency: defaultQueryFrequency,
		ntpClient:      client,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the periodic query loop.
func (t *RouterTimestamper) Start() {
	t.wg.Add(1)
	go t.run()
}

// Stop ends the query loop and waits for it.
func (t *RouterTimestamper) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	t.wg.Wait()
}

func (t *RouterTimestamper) run() {
	defer t.wg.Done()
	t.querySync()
	ticker := time.NewTicker(t.queryFrequency)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.querySync()
		case <-t.stopChan:
			return
		}
	}
}

// querySync asks the servers in order and keeps the first good offset.
func (t *RouterTimestamper) querySync() {
	for _, server := range t.servers {
		response, err := t.ntpClient.QueryWithOptions(server, ntp.QueryOptions{Timeout: defaultTimeout})
		if err != nil {
			log.WithError(err).WithField("server", server).Debug("ntp query failed")
			continue
		}
		if err := response.Validate(); err != nil {
			log.WithError(err).WithField("server", server).Debug("ntp response invalid")
			continue
		}
		t.mu.Lock()
		t.timeOffset = response.ClockOffset
		t.mu.Unlock()
		log.WithFields(logger.Fields{
			"at":     "sntp.RouterTimestamper.querySync",
			"server": server,
			"offset": response.ClockOffset,
		}).Debug("clock_synced")
		return
	}
	log.Warn("all ntp servers failed, keeping previous offset")
}

// Offset returns the current correction against the system clock.
func (t *RouterTimestamper) Offset() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.timeOffset
}

// NowMilliseconds returns the corrected wall clock in milliseconds since
// the epoch.
func (t *RouterTimestamper) NowMilliseconds() uint64 {
	return uint64(time.Now().Add(t.Offset()).UnixMilli())
}
