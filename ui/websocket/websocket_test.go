package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain() {
	for {
		select {
		case <-Broadcast:
		default:
			return
		}
	}
}

func TestQueueChangedAndSessionExpired(t *testing.T) {
	drain()
	t.Cleanup(drain)

	QueueChanged(3)
	SessionExpired("/login")

	msg := <-Broadcast
	assert.Equal(t, CodeQueueChanged, msg.Code)
	assert.Equal(t, map[string]int{"pending": 3}, msg.Result)

	msg = <-Broadcast
	assert.Equal(t, CodeSessionExpired, msg.Code)
	assert.Equal(t, map[string]string{"redirect": "/login"}, msg.Result)
}

func TestPublishNeverBlocks(t *testing.T) {
	drain()
	t.Cleanup(drain)

	for i := 0; i < cap(Broadcast)+10; i++ {
		QueueChanged(i)
	}
	require.Len(t, Broadcast, cap(Broadcast))
}
