package main

import (
	"context"
	"testing"
)

func TestNotifyContext_FollowsParent(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := notifyContext(parent)
	defer stop()

	if ctx.Err() != nil {
		t.Fatal("context canceled before parent")
	}
	cancel()
	<-ctx.Done()
}
