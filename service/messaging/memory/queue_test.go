package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/grantly/service/event"
)

func TestQueuePublishConsume(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[event.Event](DefaultConfig())

	err := queue.Publish(ctx, &event.Event{Topic: event.TopicRequestCreated})
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, event.TopicRequestCreated, msg.T().Topic)
	assert.NoError(t, msg.Ack())
	assert.Error(t, msg.Ack(), "double ack is rejected")
	assert.Equal(t, 0, queue.Size())
}

func TestQueueNackRequeues(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue[event.Event](Config{MaxRetries: 1, QueueBuffer: 10})

	assert.NoError(t, queue.Publish(ctx, &event.Event{Topic: event.TopicRequestExpired}))

	msg, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, msg.Nack(assert.AnError))
	assert.Equal(t, 1, queue.Size(), "first failure requeues")

	msg, err = queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, msg.Nack(assert.AnError))
	assert.Equal(t, 0, queue.Size(), "retry limit drops the message")
}

func TestQueueConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[event.Event](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
