package rpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoopRunsEventsInOrder(t *testing.T) {
	loop := NewLoop(8)
	ctx, cancel := context.WithCancel(context.Background())

	var got []int
	for i := range 3 {
		loop.Post(func() { got = append(got, i) })
	}
	loop.Post(cancel)

	err := loop.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestLoopPostAfterStopDoesNotBlock(t *testing.T) {
	loop := NewLoop(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = loop.Run(ctx)

	done := make(chan struct{})
	go func() {
		loop.Post(func() {})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Post blocked after loop stopped")
	}
}
