package broadcaster

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/infra/ring"
)

type fakeProducer struct {
	mu     sync.Mutex
	sent   []sentMsg
	err    error
	closed bool
}

type sentMsg struct {
	key   string
	value []byte
}

func (f *fakeProducer) Send(ctx context.Context, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMsg{key: string(key), value: append([]byte(nil), value...)})
	return nil
}

func (f *fakeProducer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeProducer) messages() []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMsg(nil), f.sent...)
}

func TestBroadcasterDrainsAttachedRings(t *testing.T) {
	fp := &fakeProducer{}
	b := New(fp, time.Millisecond)

	r := ring.New[Event](8)
	b.Attach(r)
	require.True(t, r.Push(Event{Symbol: "AAA", Qty: 5}))
	require.True(t, r.Push(Event{Symbol: "AAA", Qty: 7}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(fp.messages()) == 2
	}, time.Second, time.Millisecond)

	cancel()
	<-done

	msgs := fp.messages()
	assert.Equal(t, "AAA", msgs[0].key)
	var ev Event
	require.NoError(t, json.Unmarshal(msgs[0].value, &ev))
	assert.Equal(t, int64(5), ev.Qty)
	assert.NotEmpty(t, ev.EventID)
}

func TestBroadcasterFinalSweepOnShutdown(t *testing.T) {
	fp := &fakeProducer{}
	b := New(fp, time.Hour)

	r := ring.New[Event](8)
	b.Attach(r)
	require.True(t, r.Push(Event{Symbol: "BBB", Qty: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b.Run(ctx)

	assert.Len(t, fp.messages(), 1)
}

func TestBroadcasterAssignsUniqueEventIDs(t *testing.T) {
	fp := &fakeProducer{}
	b := New(fp, time.Hour)

	r := ring.New[Event](8)
	b.Attach(r)
	r.Push(Event{Symbol: "CCC"})
	r.Push(Event{Symbol: "CCC"})
	b.drainOnce(context.Background())

	msgs := fp.messages()
	require.Len(t, msgs, 2)
	var a, c Event
	require.NoError(t, json.Unmarshal(msgs[0].value, &a))
	require.NoError(t, json.Unmarshal(msgs[1].value, &c))
	assert.NotEqual(t, a.EventID, c.EventID)
}

func TestBroadcasterSendFailureDoesNotStall(t *testing.T) {
	fp := &fakeProducer{err: errors.New("broker down")}
	b := New(fp, time.Hour)

	r := ring.New[Event](8)
	b.Attach(r)
	r.Push(Event{Symbol: "DDD"})
	r.Push(Event{Symbol: "DDD"})
	b.drainOnce(context.Background())

	assert.Equal(t, 0, r.Len(), "failed sends still consume the ring")
}

func TestBroadcasterClose(t *testing.T) {
	fp := &fakeProducer{}
	b := New(fp, time.Millisecond)
	require.NoError(t, b.Close())
	assert.True(t, fp.closed)
}
