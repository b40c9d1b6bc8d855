package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskmarket/internal/common"
	"taskmarket/internal/models"
	"taskmarket/internal/syncer"
)

// MessageService delivers messages between accounts. taskID is 0 for
// messages not tied to a task.
type MessageService interface {
	Send(ctx context.Context, senderID, recipientID, taskID int64, body string) (*models.Message, error)
	ListForAccount(ctx context.Context, accountID int64) ([]models.Message, error)
	MarkRead(ctx context.Context, accountID, messageID int64) (*models.Message, error)
}

type messageService struct {
	engine *syncer.Engine
}

func NewMessageService(engine *syncer.Engine) MessageService {
	return &messageService{engine: engine}
}

func (s *messageService) Send(ctx context.Context, senderID, recipientID, taskID int64, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("message body required: %w", common.ErrValidation)
	}
	if recipientID == 0 || recipientID == senderID {
		return nil, fmt.Errorf("invalid recipient: %w", common.ErrValidation)
	}

	msg := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		TaskID:      taskID,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	doc, err := models.ToDoc(msg)
	if err != nil {
		return nil, err
	}
	created, err := s.engine.Create(ctx, models.CollectionMessages, doc)
	if err != nil {
		return nil, err
	}

	out := &models.Message{}
	if err := models.FromDoc(created, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForAccount returns messages the account sent or received.
func (s *messageService) ListForAccount(ctx context.Context, accountID int64) ([]models.Message, error) {
	docs, err := s.engine.List(ctx, models.CollectionMessages)
	if err != nil {
		return nil, err
	}
	var msgs []models.Message
	for _, doc := range docs {
		var msg models.Message
		if err := models.FromDoc(doc, &msg); err != nil {
			return nil, err
		}
		if msg.SenderID == accountID || msg.RecipientID == accountID {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// MarkRead flags a received message as read. Only the recipient may do so.
func (s *messageService) MarkRead(ctx context.Context, accountID, messageID int64) (*models.Message, error) {
	doc, err := s.engine.Get(ctx, models.CollectionMessages, messageID)
	if err != nil {
		return nil, err
	}
	msg := &models.Message{}
	if err := models.FromDoc(doc, msg); err != nil {
		return nil, err
	}
	if msg.RecipientID != accountID {
		return nil, fmt.Errorf("only the recipient may mark message %d read: %w", messageID, common.ErrUnauthorized)
	}
	if msg.Read {
		return msg, nil
	}

	msg.Read = true
	updatedDoc, err := models.ToDoc(msg)
	if err != nil {
		return nil, err
	}
	updated, err := s.engine.Put(ctx, models.CollectionMessages, updatedDoc)
	if err != nil {
		return nil, err
	}
	out := &models.Message{}
	if err := models.FromDoc(updated, out); err != nil {
		return nil, err
	}
	return out, nil
}
