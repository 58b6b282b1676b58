package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-research-be/internal/model"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/repository"
	"ai-research-be/pkg/events"
	pktNats "ai-research-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(researcherID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	// Subscribe to all events with a durable consumer
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	// 1. Get Config
	// Strip "events." prefix from type if present (NATS subject includes stream name)
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	config, err := s.repo.GetNotificationTypeByCode(ctx, typeCode)
	if err != nil {
		s.logger.Warn("NotificationService", fmt.Sprintf("Config not found for code: '%s'", typeCode), map[string]interface{}{"error": err.Error()})
		return nil
	}
	if !config.IsActive {
		s.logger.Info("NotificationService", fmt.Sprintf("Notification type '%s' is inactive", typeCode), nil)
		return nil
	}

	// 2. Broadcast Handling
	// Broadcasts are push-only: they reach every connected client but are
	// never written into anyone's inbox.
	if config.TargetType == "BROADCAST" {
		notif := s.buildNotification(uuid.Nil, config, event)

		if s.delivery != nil {
			s.delivery.Broadcast(notif)
		}
		return nil
	}

	// 3. Resolve Recipients
	recipients, err := s.resolveRecipients(config, event)
	if err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error resolving recipients for %s", event.EventType()), map[string]interface{}{"error": err})
		return err // NATS will retry if we return error
	}
	s.logger.Info("NotificationService", "Recipients resolved", map[string]interface{}{"count": len(recipients), "type": config.TargetType})

	// 4. Process Per Recipient
	for _, researcherID := range recipients {
		notif := s.buildNotification(researcherID, config, event)

		// Save to DB
		if err := s.repo.CreateNotification(ctx, &notif); err != nil {
			s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for researcher %s", researcherID), map[string]interface{}{"error": err})
			continue
		}

		// Real-time Delivery
		if s.delivery != nil {
			s.delivery.Send(researcherID, notif)
		}
	}

	return nil
}

func (s *NotificationService) resolveRecipients(config *model.NotificationType, event events.Event) ([]uuid.UUID, error) {
	var researcherIDs []uuid.UUID

	switch config.TargetType {
	case "SELF":
		// Rely on the payload convention every pipeline event follows.
		if idStr, ok := event.Payload()["researcher_id"].(string); ok {
			id, err := uuid.Parse(idStr)
			if err == nil {
				researcherIDs = append(researcherIDs, id)
			}
		} else {
			s.logger.Warn("NotificationService", fmt.Sprintf("TargetType SELF but no researcher_id found in payload for event %s", event.EventType()), nil)
		}

	default:
		s.logger.Warn("NotificationService", fmt.Sprintf("Unknown target type '%s' for event %s", config.TargetType, event.EventType()), nil)
	}

	return researcherIDs, nil
}

func (s *NotificationService) buildNotification(researcherID uuid.UUID, config *model.NotificationType, event events.Event) model.Notification {
	// Simple Template Engine
	msg := config.Template
	payload := event.Payload()

	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		valStr := fmt.Sprintf("%v", v)
		msg = strings.ReplaceAll(msg, placeholder, valStr)
	}

	// Entity?
	entityType := ""
	entityID := ""

	if et, ok := payload["step_type"].(string); ok && et != "" {
		entityType = "step"
		entityID = et
	}

	// Metadata - enrich with action_url for deep linking
	metaMap := make(map[string]interface{})
	for k, v := range payload {
		metaMap[k] = v
	}
	if sid, ok := payload["session_id"].(string); ok && sid != "" {
		metaMap["action_url"] = fmt.Sprintf("/sessions/%s", sid)
		if entityType == "" {
			entityType = "session"
			entityID = sid
		}
	}
	metaJSON, _ := json.Marshal(metaMap)

	return model.Notification{
		ID:           uuid.New(),
		ResearcherID: researcherID,
		TypeCode:     config.Code,
		Title:        config.DisplayName,
		Message:      msg,
		Metadata:     datatypes.JSON(metaJSON),
		EntityType:   entityType,
		EntityID:     entityID,
		CreatedAt:    time.Now(),
		IsRead:       false,
	}
}

// GetNotifications fetches notifications for a researcher.
func (s *NotificationService) GetNotifications(ctx context.Context, researcherID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByResearcherID(ctx, researcherID, limit, offset)
}

// GetUnreadCount fetches unread count.
func (s *NotificationService) GetUnreadCount(ctx context.Context, researcherID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, researcherID)
}

// MarkAsRead marks a notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a researcher.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, researcherID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, researcherID)
}
