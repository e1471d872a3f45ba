package async_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/intake/pkg/utils/async"
)

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("async handler did not complete within timeout")
	}
}

func TestDispatch(t *testing.T) {
	t.Run("runs the handler", func(t *testing.T) {
		done := make(chan struct{})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			close(done)
			return nil
		})
		wait(t, done)
	})

	t.Run("errors and panics are contained", func(t *testing.T) {
		errDone := make(chan struct{})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer close(errDone)
			return goerr.New("test error")
		})
		wait(t, errDone)

		panicDone := make(chan struct{})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer close(panicDone)
			panic("test panic")
		})
		wait(t, panicDone)
	})

	t.Run("survives parent cancellation", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		result := make(chan error, 1)

		async.Dispatch(parent, func(ctx context.Context) error {
			<-started
			result <- ctx.Err()
			return nil
		})
		cancel()
		close(started)

		select {
		case err := <-result:
			gt.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("handler did not report")
		}
	})

	t.Run("keeps the request ID and sets a deadline", func(t *testing.T) {
		parent := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
		got := make(chan string, 1)
		hasDeadline := make(chan bool, 1)

		async.Dispatch(parent, func(ctx context.Context) error {
			got <- middleware.GetReqID(ctx)
			_, ok := ctx.Deadline()
			hasDeadline <- ok
			return nil
		})

		gt.Equal(t, <-got, "req-1")
		gt.True(t, <-hasDeadline)
	})
}
