package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/grantly/internal/clock"
	"github.com/viant/grantly/model/authreq"
)

func payload(recipient, resource string) *authreq.Payload {
	return &authreq.Payload{
		Subject:   "alice",
		SubjectID: 42,
		Resource:  resource,
		Recipient: recipient,
	}
}

func TestPutIfAbsent(t *testing.T) {
	reg := New(WithTTL(5 * time.Minute))
	p := payload("123456789012345678", "203.0.113.7")
	key := p.Key()

	assert.True(t, reg.PutIfAbsent(key, &Pending{Payload: p}))
	assert.False(t, reg.PutIfAbsent(key, &Pending{Payload: p}), "duplicate must be suppressed")
	assert.Equal(t, 1, reg.Len())

	// A different resource for the same recipient is a distinct request.
	other := payload("123456789012345678", "203.0.113.8")
	assert.True(t, reg.PutIfAbsent(other.Key(), &Pending{Payload: other}))
	assert.Equal(t, 2, reg.Len())
}

func TestTakeRemovesEntry(t *testing.T) {
	reg := New()
	p := payload("123456789012345678", "203.0.113.7")
	key := p.Key()
	reg.PutIfAbsent(key, &Pending{Payload: p})

	entry, ok := reg.Take(key)
	assert.True(t, ok)
	assert.Equal(t, p, entry.Payload)

	_, ok = reg.Take(key)
	assert.False(t, ok, "second take must find nothing")
}

func TestRestore(t *testing.T) {
	reg := New()
	p := payload("123456789012345678", "203.0.113.7")
	key := p.Key()
	reg.PutIfAbsent(key, &Pending{Payload: p})

	entry, _ := reg.Take(key)
	reg.Restore(key, entry)

	restored, ok := reg.Take(key)
	assert.True(t, ok)
	assert.Equal(t, entry, restored)
}

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	reg := New(WithTTL(5 * time.Minute))
	p := payload("123456789012345678", "203.0.113.7")
	key := p.Key()
	reg.PutIfAbsent(key, &Pending{Payload: p})

	// Advance past the window; the entry behaves as if already resolved.
	now = now.Add(6 * time.Minute)
	_, ok := reg.Take(key)
	assert.False(t, ok)

	// The key becomes reusable for a fresh request.
	assert.True(t, reg.PutIfAbsent(key, &Pending{Payload: p}))
}

func TestSweepNotifies(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	var expired []*Pending
	reg := New(WithTTL(time.Minute), WithOnExpire(func(p *Pending) { expired = append(expired, p) }))
	p := payload("123456789012345678", "203.0.113.7")
	reg.PutIfAbsent(p.Key(), &Pending{Payload: p})

	now = now.Add(2 * time.Minute)
	reg.sweep()

	assert.Equal(t, 0, reg.Len())
	if assert.Len(t, expired, 1) {
		assert.Equal(t, p, expired[0].Payload)
	}
}

func TestSetMessageRef(t *testing.T) {
	reg := New()
	p := payload("123456789012345678", "203.0.113.7")
	key := p.Key()
	reg.PutIfAbsent(key, &Pending{Payload: p})
	reg.SetMessageRef(key, "msg-1")

	entry, ok := reg.Take(key)
	assert.True(t, ok)
	assert.Equal(t, "msg-1", entry.MessageRef)
	assert.Equal(t, authreq.StateDelivered, entry.State)
}

func TestEntryStateLifecycle(t *testing.T) {
	reg := New()
	p := payload("123456789012345678", "203.0.113.7")
	key := p.Key()
	reg.PutIfAbsent(key, &Pending{Payload: p})

	entry, _ := reg.Take(key)
	assert.Equal(t, authreq.StatePendingDelivery, entry.State, "entry awaits courier confirmation")
	assert.False(t, entry.State.Terminal())
}

func TestLazyExpiryNotifies(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	var expired []*Pending
	reg := New(WithTTL(time.Minute), WithOnExpire(func(p *Pending) { expired = append(expired, p) }))
	p := payload("123456789012345678", "203.0.113.7")
	key := p.Key()
	reg.PutIfAbsent(key, &Pending{Payload: p})

	// An expired entry evicted by Take is notified like a swept one, so its
	// message still gets the expired rendering.
	now = now.Add(2 * time.Minute)
	_, ok := reg.Take(key)
	assert.False(t, ok)
	assert.Len(t, expired, 1)

	// Likewise when a fresh request evicts a stale entry under the same key.
	reg.PutIfAbsent(key, &Pending{Payload: p})
	now = now.Add(2 * time.Minute)
	assert.True(t, reg.PutIfAbsent(key, &Pending{Payload: p}))
	assert.Len(t, expired, 2)
}
