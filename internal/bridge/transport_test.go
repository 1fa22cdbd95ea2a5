package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	errs "github.com/wagiedev/agentwire/internal/errors"
	"github.com/wagiedev/agentwire/internal/queue"
)

func TestTransportDeliverInvokesHandler(t *testing.T) {
	tr := NewTransport()

	var got map[string]any
	tr.SetMessageHandler(func(msg map[string]any) error {
		got = msg

		return nil
	})

	err := tr.Deliver(map[string]any{"method": "ping"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"method": "ping"}, got)
}

func TestTransportDeliverWithoutHandler(t *testing.T) {
	tr := NewTransport()

	err := tr.Deliver(map[string]any{"method": "ping"})
	require.ErrorIs(t, err, errs.ErrTransportNotReady)
}

func TestTransportHandlerErrorReturnedToCaller(t *testing.T) {
	tr := NewTransport()
	boom := errors.New("handler boom")

	tr.SetMessageHandler(func(map[string]any) error { return boom })

	err := tr.Deliver(map[string]any{})
	require.ErrorIs(t, err, boom)
}

func TestTransportHandlerErrorRoutedToErrorHandler(t *testing.T) {
	tr := NewTransport()
	boom := errors.New("handler boom")

	var routed error
	tr.SetMessageHandler(func(map[string]any) error { return boom })
	tr.SetErrorHandler(func(err error) { routed = err })

	err := tr.Deliver(map[string]any{})
	require.NoError(t, err, "routed errors are not returned to the caller")
	require.ErrorIs(t, routed, boom)
}

func TestTransportSendReachesOutboundQueue(t *testing.T) {
	tr := NewTransport()

	require.NoError(t, tr.Send(map[string]any{"id": "1"}))

	msg, err := tr.Messages().Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1", msg["id"])
}

func TestTransportSendAfterCloseFails(t *testing.T) {
	tr := NewTransport()
	require.NoError(t, tr.Close())

	err := tr.Send(map[string]any{})
	require.ErrorIs(t, err, queue.ErrClosed)
}

func TestTransportCloseFiresHandlerOnce(t *testing.T) {
	tr := NewTransport()

	closes := 0
	tr.SetCloseHandler(func() { closes++ })

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	require.Equal(t, 1, closes)
}

func TestTransportSessionIDsAreUnique(t *testing.T) {
	a := NewTransport()
	b := NewTransport()

	require.NotEmpty(t, a.SessionID())
	require.NotEqual(t, a.SessionID(), b.SessionID())
}
