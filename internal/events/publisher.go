// Showroom - Product Clustering and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/showroom

//go:build nats

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/showroom/internal/metrics"
	"github.com/tomtom215/showroom/internal/recommend"
	"github.com/tomtom215/showroom/internal/resilience"
)

// PublisherConfig holds connection settings for the event publisher.
type PublisherConfig struct {
	URL             string
	Subject         string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// DefaultPublisherConfig returns publisher settings for url and subject.
func DefaultPublisherConfig(url, subject string) PublisherConfig {
	return PublisherConfig{
		URL:             url,
		Subject:         subject,
		MaxReconnects:   -1, // Unlimited
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024, // 8MB
	}
}

// Publisher publishes run completion events and implements recommend.RunObserver.
type Publisher struct {
	publisher message.Publisher
	subject   string
	breaker   *resilience.Breaker
	mu        sync.RWMutex
	closed    bool
}

var _ recommend.RunObserver = (*Publisher)(nil)

// NewPublisher creates a Watermill NATS publisher for JetStream.
// The stream must already exist.
func NewPublisher(cfg PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = NewWatermillLogger()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher: pub,
		subject:   cfg.Subject,
		breaker:   resilience.NewBreaker("nats-publisher", resilience.DefaultBreakerConfig()),
	}, nil
}

// Name implements recommend.RunObserver.
func (p *Publisher) Name() string {
	return "nats-events"
}

// OnRunComplete implements recommend.RunObserver.
func (p *Publisher) OnRunComplete(ctx context.Context, report *recommend.RunReport) error {
	err := p.PublishEvent(ctx, NewRunCompletedEvent(report))
	metrics.RecordNATSPublish(err)
	return err
}

// PublishEvent serializes and publishes a run event.
// The run ID is the message ID, so republishing a run is deduplicated.
func (p *Publisher) PublishEvent(ctx context.Context, event *RunCompletedEvent) error {
	data, err := SerializeEvent(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.RunID, data)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.RunID)
	msg.Metadata.Set("event_type", event.EventType)
	msg.Metadata.Set("status", event.Status)
	msg.Metadata.Set("trigger", event.Trigger)
	msg.SetContext(ctx)

	return p.breaker.Execute(func() error {
		return p.Publish(msg)
	})
}

// Publish sends a message to the configured subject.
func (p *Publisher) Publish(msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	if err := p.publisher.Publish(p.subject, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return nil
}

// Close shuts down the publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}
