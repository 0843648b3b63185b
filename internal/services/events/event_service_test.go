package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigil/internal/interfaces"
)

func TestSubscribe_NilHandler(t *testing.T) {
	s := NewService(arbor.NewLogger())
	assert.Error(t, s.Subscribe(interfaces.EventAlertRaised, nil))
}

func TestPublish_DeliversToSubscribers(t *testing.T) {
	s := NewService(arbor.NewLogger())

	var delivered atomic.Int32
	handler := func(ctx context.Context, event interfaces.Event) error {
		assert.Equal(t, interfaces.EventAlertRaised, event.Type)
		delivered.Add(1)
		return nil
	}
	require.NoError(t, s.Subscribe(interfaces.EventAlertRaised, handler))
	require.NoError(t, s.Subscribe(interfaces.EventAlertRaised, handler))

	require.NoError(t, s.Publish(context.Background(), interfaces.Event{Type: interfaces.EventAlertRaised}))

	assert.Eventually(t, func() bool {
		return delivered.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublish_NoSubscribersIsNoop(t *testing.T) {
	s := NewService(arbor.NewLogger())
	assert.NoError(t, s.Publish(context.Background(), interfaces.Event{Type: interfaces.EventCycleCompleted}))
}

func TestPublishSync_WaitsAndCollectsErrors(t *testing.T) {
	s := NewService(arbor.NewLogger())

	var ran atomic.Int32
	require.NoError(t, s.Subscribe(interfaces.EventSeenCleared, func(ctx context.Context, event interfaces.Event) error {
		ran.Add(1)
		return nil
	}))
	require.NoError(t, s.Subscribe(interfaces.EventSeenCleared, func(ctx context.Context, event interfaces.Event) error {
		ran.Add(1)
		return errors.New("handler broke")
	}))

	err := s.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventSeenCleared})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 event handlers failed")
	assert.Equal(t, int32(2), ran.Load(), "PublishSync returns only after every handler ran")
}

func TestClose_DropsSubscribers(t *testing.T) {
	s := NewService(arbor.NewLogger())

	var delivered atomic.Int32
	require.NoError(t, s.Subscribe(interfaces.EventAlertRaised, func(ctx context.Context, event interfaces.Event) error {
		delivered.Add(1)
		return nil
	}))

	require.NoError(t, s.Close())
	require.NoError(t, s.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventAlertRaised}))
	assert.Equal(t, int32(0), delivered.Load())
}
