package eventbus

import (
	"sync"
	"sync/atomic"
)

type Topic string

type Message struct {
	Topic Topic
	Data  interface{}
}

// Subscriber must be buffered; Publish never blocks on a full subscriber,
// the message is dropped and counted instead.
type Subscriber chan Message

type Bus struct {
	topics  map[Topic][]Subscriber
	rw      sync.RWMutex
	dropped uint64
}

func New() *Bus {
	return &Bus{
		topics: map[Topic][]Subscriber{},
	}
}

func (bus *Bus) Subscribe(subscriber Subscriber, topics ...Topic) {
	bus.rw.Lock()
	for _, topic := range topics {
		bus.topics[topic] = append(bus.topics[topic], subscriber)
	}
	bus.rw.Unlock()
}

func (bus *Bus) UnSubscribe(subscriber Subscriber, topics ...Topic) {
	bus.rw.Lock()
	for _, topic := range topics {
		subs := bus.topics[topic]
		for i, s := range subs {
			if s == subscriber {
				bus.topics[topic] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(bus.topics[topic]) == 0 {
			delete(bus.topics, topic)
		}
	}
	bus.rw.Unlock()
}

// Publish is safe on a nil bus so components can run without one.
func (bus *Bus) Publish(topic Topic, data interface{}) {
	if bus == nil {
		return
	}
	msg := Message{Topic: topic, Data: data}
	bus.rw.RLock()
	defer bus.rw.RUnlock()
	for _, subscriber := range bus.topics[topic] {
		select {
		case subscriber <- msg:
		default:
			atomic.AddUint64(&bus.dropped, 1)
		}
	}
}

func (bus *Bus) Dropped() uint64 {
	return atomic.LoadUint64(&bus.dropped)
}
