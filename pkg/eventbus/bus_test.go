package eventbus

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := New()
	sub := make(Subscriber, 4)
	bus.Subscribe(sub, "a", "b")

	bus.Publish("a", 1)
	bus.Publish("b", 2)
	bus.Publish("c", 3)

	assert.Equal(t, len(sub), 2)
	first, second := <-sub, <-sub
	assert.Equal(t, first.Topic, Topic("a"))
	assert.Equal(t, first.Data, 1)
	assert.Equal(t, second.Topic, Topic("b"))
}

func TestPublishDropsWhenFull(t *testing.T) {
	bus := New()
	sub := make(Subscriber, 1)
	bus.Subscribe(sub, "a")

	bus.Publish("a", 1)
	bus.Publish("a", 2)
	assert.Equal(t, bus.Dropped(), uint64(1))
}

func TestUnSubscribe(t *testing.T) {
	bus := New()
	sub := make(Subscriber, 1)
	bus.Subscribe(sub, "a")
	bus.UnSubscribe(sub, "a")
	bus.Publish("a", 1)
	assert.Equal(t, len(sub), 0)
}

func TestNilBus(t *testing.T) {
	var bus *Bus
	bus.Publish("a", 1)
}
