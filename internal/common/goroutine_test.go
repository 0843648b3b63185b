package common

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestSafeGo_RecoversPanic(t *testing.T) {
	ran := make(chan struct{})
	SafeGo(arbor.NewLogger(), "panics", func() {
		defer close(ran)
		panic("boom")
	})

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("goroutine never ran")
	}
}

func TestSafeGoWithContext_RunsWhenActive(t *testing.T) {
	done := make(chan struct{})
	SafeGoWithContext(context.Background(), arbor.NewLogger(), "active", func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine never ran")
	}
}

func TestSafeGoWithContext_SkipsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	SafeGoWithContext(ctx, arbor.NewLogger(), "cancelled", func() {
		ran.Store(true)
	})

	time.Sleep(50 * time.Millisecond)
	assert.False(t, ran.Load(), "cancelled context must prevent the run")
}

func TestGetGoroutineCount_Increments(t *testing.T) {
	before := GetGoroutineCount()

	done := make(chan struct{})
	SafeGo(arbor.NewLogger(), "counted", func() { close(done) })
	<-done

	assert.Greater(t, GetGoroutineCount(), before)
}
