package syncgroup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstExitCancelsSiblings(t *testing.T) {
	g, ctx := New(context.Background())
	boom := errors.New("boom")

	g.Go("reader", func() error { return boom })
	g.Go("writer", func() error {
		<-ctx.Done()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, boom))
		assert.Contains(t, err.Error(), "reader")
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
	assert.Equal(t, 0, g.Running())
}

func TestPanicBecomesError(t *testing.T) {
	g, _ := New(context.Background())
	g.Go("p", func() error { panic("bad") })
	err := g.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
}

func TestParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g, ctx := New(parent)
	g.Go("loop", func() error {
		<-ctx.Done()
		return nil
	})
	cancel()
	assert.NoError(t, g.Wait())
}
