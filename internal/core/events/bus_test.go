package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	published int
	delivered int
	lastErr   error
}

func (o *testObserver) OnPublish(string, Event) { o.published++ }

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.delivered += handlers
	o.lastErr = err
}

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := range 3 {
		_, err := b.Subscribe(SceneLoaded, func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	_, err := b.Subscribe(StreamsChanged, func(Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent(SceneLoaded, "engine", SceneLoadedData{Name: "A"})))
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestBus_PayloadAndSource(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe(SceneLoaded, func(e Event) error {
		got = e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent(SceneLoaded, "engine", SceneLoadedData{Name: "A", Index: 2})))
	require.NotNil(t, got)
	assert.Equal(t, "engine", got.Source())
	assert.Equal(t, SceneLoadedData{Name: "A", Index: 2}, got.Data())
	assert.False(t, got.Timestamp().IsZero())
}

func TestBus_ErrorsAreJoined(t *testing.T) {
	b := New()
	errA, errB := errors.New("a"), errors.New("b")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })

	err := b.Publish(NewEvent("x", "test", nil))
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	select {
	case err = <-b.PublishAsync(NewEvent("x", "test", nil)):
		assert.ErrorIs(t, err, errA)
	case <-time.After(time.Second):
		t.Fatal("async publish did not complete")
	}
}

func TestBus_Cancel(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("x", func(Event) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "x", sub.EventType())

	require.NoError(t, b.Publish(NewEvent("x", "test", nil)))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	require.NoError(t, b.Unsubscribe(nil))
	require.NoError(t, b.Publish(NewEvent("x", "test", nil)))

	assert.Equal(t, 1, calls)
	assert.False(t, sub.IsActive())
	assert.Zero(t, b.Metrics().SubscribersActive)
}

func TestBus_ObserverMetrics(t *testing.T) {
	b := New()
	obs := &testObserver{}
	_, _ = b.Subscribe("x", func(Event) error { return nil })
	_, _ = b.Subscribe("x", func(Event) error { return assert.AnError })

	require.Error(t, b.Publish(NewEvent("x", "test", nil)))
	assert.Zero(t, b.Metrics().Published)

	b.AddObserver(obs)
	require.Error(t, b.Publish(NewEvent("x", "test", nil)))
	b.RemoveObserver(obs)
	require.Error(t, b.Publish(NewEvent("x", "test", nil)))

	assert.Equal(t, 1, obs.published)
	assert.Equal(t, 2, obs.delivered)
	assert.ErrorIs(t, obs.lastErr, assert.AnError)

	m := b.Metrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(2), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.Errors)
	assert.Equal(t, uint64(2), m.SubscribersActive)
}

func TestBus_NilHandler(t *testing.T) {
	_, err := New().Subscribe("x", nil)
	assert.Error(t, err)
}
