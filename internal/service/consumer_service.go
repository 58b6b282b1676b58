// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/events"
	pktNats "ai-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the in-process pipeline event topic and relays
// each event onto the NATS stream the notification worker listens on.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PipelineEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal pipeline event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Relaying %s for session %s", payload.EventType, payload.SessionId)

	// Enrich with the session title so notifications can name it. A
	// session deleted between publish and relay is not an error.
	sessionTitle := ""
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ResearchSessionRepository().FindOne(ctx, specification.ByID{ID: payload.SessionId})
	if err != nil {
		log.Printf("[ERROR] Failed to get session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if session != nil {
		sessionTitle = session.Title
	}

	if cs.eventPublisher == nil {
		log.Printf("[WARN] NATS publisher not configured, dropping %s", payload.EventType)
		msg.Ack()
		return
	}

	evt := events.BaseEvent{
		Type: payload.EventType,
		Data: map[string]interface{}{
			"researcher_id": payload.ResearcherId,
			"session_id":    payload.SessionId,
			"session_title": sessionTitle,
			"step_type":     payload.StepType,
			"record_id":     payload.RecordId,
			"status":        payload.Status,
		},
		OccurredAt: time.Now(),
	}

	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		log.Printf("[ERROR] Failed to relay %s to NATS: %v", payload.EventType, err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Relayed %s for session %s", payload.EventType, payload.SessionId)
	msg.Ack()
}
