package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pinged struct{ n int }
type ponged struct{}

func TestPublishIsSynchronousAndOrdered(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(TypeOf(pinged{}), func(e interface{}) { got = append(got, "first") })
	b.Subscribe(TypeOf(pinged{}), func(e interface{}) { got = append(got, "second") })
	b.Subscribe(TypeOf(ponged{}), func(e interface{}) { got = append(got, "pong") })

	b.Publish(pinged{n: 1})
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	count := 0
	unsubscribe := b.Subscribe(TypeOf(pinged{}), func(e interface{}) { count += e.(pinged).n })

	b.Publish(pinged{n: 2})
	unsubscribe()
	b.Publish(pinged{n: 5})
	assert.Equal(t, 2, count)
}

func TestListenerMayPublish(t *testing.T) {
	b := NewBus()
	pongs := 0
	b.Subscribe(TypeOf(pinged{}), func(interface{}) { b.Publish(ponged{}) })
	b.Subscribe(TypeOf(ponged{}), func(interface{}) { pongs++ })

	b.Publish(pinged{})
	assert.Equal(t, 1, pongs)
}

func TestNullBus(t *testing.T) {
	var b EventBus = &NullBus{}
	b.Subscribe("x", func(interface{}) { t.Fatal("must not be called") })()
	b.Publish(pinged{})
}
