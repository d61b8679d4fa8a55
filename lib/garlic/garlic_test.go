package garlic

import (
	"testing"

	"github.com/go-i2p/common/session_key"
	"github.com/go-i2p/common/session_tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/go-i2np/lib/i2np"
)

func TestSessionTagTable(t *testing.T) {
	router := NewRouter(0)

	var key session_key.SessionKey
	var tag session_tag.SessionTag
	key[0] = 0xAA
	tagBytes := make([]byte, session_tag.SessionTagSize)
	tagBytes[0] = 0xBB
	require.NoError(t, tag.SetBytes(tagBytes))

	router.AddSessionKey(key, tag)
	assert.Equal(t, 1, router.TagCount())

	found, ok := router.LookupSessionKey(tag)
	require.True(t, ok)
	assert.Equal(t, key, found)

	// tags are single use
	_, ok = router.LookupSessionKey(tag)
	assert.False(t, ok)
	assert.Zero(t, router.TagCount())
}

func TestGarlicQueue(t *testing.T) {
	router := NewRouter(1)

	first := i2np.NewMessage()
	second := i2np.NewMessage()
	router.HandleGarlicMessage(first)
	router.HandleGarlicMessage(second) // dropped, queue full

	assert.Same(t, first, <-router.Messages())
	select {
	case <-router.Messages():
		t.Fatal("second message should have been dropped")
	default:
	}
}

func TestHandleDeliveryStatusDoesNotPanic(t *testing.T) {
	router := NewRouter(0)
	router.HandleDeliveryStatus(nil)
	router.HandleDeliveryStatus(make([]byte, 12))
}
