package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/carlmjohnson/be"
	"github.com/charmbracelet/log"
	"github.com/rabbitmq/amqp091-go"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/model"
)

type fakeChannel struct {
	declared   []string
	bound      [3]string
	published  []amqp091.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp091.Table) error {
	f.declared = append(f.declared, "exchange:"+name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp091.Table) (amqp091.Queue, error) {
	f.declared = append(f.declared, "queue:"+name)
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, _ bool, _ amqp091.Table) error {
	f.bound = [3]string{name, key, exchange}
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPSinkSetupAndDeliver(t *testing.T) {
	ch := &fakeChannel{}
	cfg := config.DefaultConfig().AMQP
	s, err := newAMQPSink(ch, cfg)
	be.NilErr(t, err)
	be.Equal(t, "amqp", s.Name())
	be.Equal(t, "exchange:fintrack:direct|queue:fintrack.notifications", strings.Join(ch.declared, "|"))
	be.Equal(t, [3]string{cfg.Queue, cfg.Queue, cfg.Exchange}, ch.bound)

	n := model.Notification{
		ID:        42,
		Title:     "Budget Warning",
		Message:   "You've used 85% of your 'Food' budget",
		Timestamp: noon.UnixMilli(),
	}
	be.NilErr(t, s.Deliver(context.Background(), n))
	be.Equal(t, 1, len(ch.published))
	be.Equal(t, "fintrack/fintrack.notifications", ch.keys[0])

	msg := ch.published[0]
	be.Equal(t, "application/json", msg.ContentType)
	be.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	be.True(t, msg.Timestamp.Equal(time.UnixMilli(n.Timestamp)))

	var got model.Notification
	be.NilErr(t, json.Unmarshal(msg.Body, &got))
	be.Equal(t, n, got)

	be.NilErr(t, s.Close())
	be.True(t, ch.closed)
}

func TestAMQPSinkDeliverError(t *testing.T) {
	ch := &fakeChannel{}
	s, err := newAMQPSink(ch, config.DefaultConfig().AMQP)
	be.NilErr(t, err)

	ch.publishErr = errors.New("channel closed")
	err = s.Deliver(context.Background(), model.Notification{ID: 1, Title: "x"})
	be.True(t, err != nil)
	be.In(t, "channel closed", err.Error())
}

func TestConfiguredSinksSkipsAMQPWithoutURL(t *testing.T) {
	t.Setenv(config.EnvAMQPURL, "")
	t.Setenv(config.EnvMailgunKey, "")

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	cfg := config.DefaultConfig()
	cfg.AMQP.Enabled = true
	sinks, closer := ConfiguredSinks(cfg)
	be.Equal(t, 0, len(sinks))
	closer()
	be.In(t, "no broker url", buf.String())
}
