package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSink struct {
	events []Event
	fail   error
}

func (r *recordSink) Publish(_ context.Context, ev Event) error {
	if r.fail != nil {
		return r.fail
	}
	r.events = append(r.events, ev)
	return nil
}

func TestFanout_DeliversToAllSinks(t *testing.T) {
	a, b := &recordSink{}, &recordSink{}
	f := NewFanout(a, nil, b)

	ev := MintPriceUpdated{NewPrice: 100, UpdatedBy: "admin"}
	require.NoError(t, f.Publish(context.Background(), ev))

	assert.Equal(t, []Event{ev}, a.events)
	assert.Equal(t, []Event{ev}, b.events)
}

func TestFanout_ContinuesPastFailingSink(t *testing.T) {
	failing := &recordSink{fail: errors.New("sink down")}
	ok := &recordSink{}
	f := NewFanout(failing, ok)

	ev := BaseURIUpdated{NewBase: "ipfs://x"}
	require.NoError(t, f.Publish(context.Background(), ev))

	assert.Empty(t, failing.events)
	assert.Equal(t, []Event{ev}, ok.events)
}

func TestFanout_NilSafe(t *testing.T) {
	var f *Fanout
	require.NoError(t, f.Publish(context.Background(), BatchMinted{}))
	require.NoError(t, NewFanout().Publish(context.Background(), nil))
}

func TestLogSink_AcceptsEveryEventType(t *testing.T) {
	s := LogSink{}
	ctx := context.Background()
	require.NoError(t, s.Publish(ctx, BatchMinted{Recipient: "acct-1", TokenIDs: nil}))
	require.NoError(t, s.Publish(ctx, MintPriceUpdated{NewPrice: 1}))
	require.NoError(t, s.Publish(ctx, BaseURIUpdated{NewBase: "x"}))
	require.NoError(t, s.Publish(ctx, nil))
}
