package stream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := bus.Subscribe(ctx, TopicGraphUpdated)
	require.NoError(t, err)

	payload := map[string]string{"chain_id": "chain-1"}
	require.NoError(t, bus.Publish(TopicGraphUpdated, payload))

	select {
	case msg := <-ch:
		event := DecodeEvent(msg)
		assert.Equal(t, TopicGraphUpdated, event.Topic)

		var got map[string]string
		require.NoError(t, json.Unmarshal(event.Payload, &got))
		assert.Equal(t, "chain-1", got["chain_id"])
		assert.False(t, event.Timestamp.IsZero())
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("未收到已发布的事件")
	}
}

func TestBusTopicsAreIsolated(t *testing.T) {
	bus := NewBus(false)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notifyCh, err := bus.Subscribe(ctx, TopicNotificationCreated)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(TopicStrategiesUpdated, map[string]int{"count": 3}))

	select {
	case <-notifyCh:
		t.Fatal("收到了其它主题的事件")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBusPublishUnserializable(t *testing.T) {
	bus := NewBus(false)
	defer bus.Close()

	err := bus.Publish(TopicGraphUpdated, make(chan int))
	assert.Error(t, err)
}
