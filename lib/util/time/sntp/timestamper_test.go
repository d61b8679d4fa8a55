package sntp

import (
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

type fakeNTPClient struct {
	offset  time.Duration
	err     error
	queried []string
}

func (c *fakeNTPClient) QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error) {
	c.queried = append(c.queried, host)
	if c.err != nil {
		return nil, c.err
	}
	return &ntp.Response{ClockOffset: c.offset, Stratum: 1}, nil
}

func TestQuerySyncTracksOffset(t *testing.T) {
	client := &fakeNTPClient{offset: 2 * time.Second}
	timestamper := NewRouterTimestamper([]string{"ntp.test"}, client)

	timestamper.querySync()
	assert.Equal(t, 2*time.Second, timestamper.Offset())
	assert.Equal(t, []string{"ntp.test"}, client.queried)

	now := time.Now().UnixMilli()
	corrected := int64(timestamper.NowMilliseconds())
	assert.InDelta(t, now+2000, corrected, 200)
}

func TestQuerySyncTriesServersInOrder(t *testing.T) {
	client := &fakeNTPClient{err: oops.Errorf("unreachable")}
	timestamper := NewRouterTimestamper([]string{"a.test", "b.test"}, client)

	timestamper.querySync()
	assert.Equal(t, []string{"a.test", "b.test"}, client.queried)
	assert.Zero(t, timestamper.Offset(), "offset unchanged when all servers fail")
}

func TestStartStop(t *testing.T) {
	client := &fakeNTPClient{}
	timestamper := NewRouterTimestamper([]string{"ntp.test"}, client)
	timestamper.Start()
	timestamper.Stop()
}
