package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	deadline bool
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	_, ok := ctx.Deadline()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg, deadline: ok})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_PublishHoursSaved(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, "horas-extras")
	require.NoError(t, err)
	assert.Equal(t, []string{"horas-extras:direct"}, ch.declared)

	savedAt := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	err = p.PublishHoursSaved(context.Background(), HoursSaved{
		UserID:  "u1",
		Month:   "2025-03",
		Days:    4,
		Salary:  "3200",
		SavedAt: savedAt,
	})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "horas-extras", got.exchange)
	assert.Equal(t, RoutingHoursSaved, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.True(t, got.deadline, "publish must be bounded by a timeout")

	msg, err := HoursSavedFromJSON(got.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "u1", msg.UserID)
	assert.Equal(t, 4, msg.Days)
	assert.True(t, savedAt.Equal(msg.SavedAt))
}

func TestAMQPPublisher_PublishModelsChanged(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, "ex")
	require.NoError(t, err)

	require.NoError(t, p.PublishModelsChanged(context.Background(), ModelsChanged{UserID: "u1", Month: "2025-03", Models: 3, Reason: "add"}))
	require.Len(t, ch.published, 1)
	assert.Equal(t, RoutingModelsChanged, ch.published[0].key)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newAMQPPublisher(ch, "ex")
	require.NoError(t, err)

	err = p.PublishHoursSaved(context.Background(), HoursSaved{UserID: "u1"})
	assert.ErrorContains(t, err, "channel closed")
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, "ex")
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishHoursSaved(context.Background(), HoursSaved{}))
	assert.NoError(t, p.PublishModelsChanged(context.Background(), ModelsChanged{}))
	assert.NoError(t, p.Close())
}
