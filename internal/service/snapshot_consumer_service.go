package service

import (
	"context"
	"encoding/json"

	"typst-collab-be/internal/filetree"
	"typst-collab-be/internal/pkg/logger"
	"typst-collab-be/internal/repository/contract"
	"typst-collab-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type ISnapshotConsumerService interface {
	Consume(ctx context.Context) error
}

// snapshotConsumerService drains the snapshot-save topic and writes each
// tree to the project row. Saves for the same project arrive in publish
// order on the gochannel subscriber, so the last write is the newest tree.
type snapshotConsumerService struct {
	pubSub      *gochannel.GoChannel
	projectRepo contract.ProjectRepository
	logger      logger.ILogger
}

func NewSnapshotConsumerService(
	pubSub *gochannel.GoChannel,
	projectRepo contract.ProjectRepository,
	log logger.ILogger,
) ISnapshotConsumerService {
	return &snapshotConsumerService{
		pubSub:      pubSub,
		projectRepo: projectRepo,
		logger:      log,
	}
}

func (cs *snapshotConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, events.TopicSnapshotSave)
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

func (cs *snapshotConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload events.SnapshotSaveMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("SnapshotConsumer", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages never become valid, do not retry
		return
	}

	var tree filetree.Node
	if err := json.Unmarshal(payload.Tree, &tree); err != nil {
		cs.logger.Error("SnapshotConsumer", "Invalid tree payload", map[string]interface{}{"project_id": payload.ProjectId})
		msg.Ack()
		return
	}

	if err := cs.projectRepo.UpdateTree(ctx, payload.ProjectId, &tree); err != nil {
		cs.logger.Error("SnapshotConsumer", "Failed to persist snapshot", map[string]interface{}{
			"project_id": payload.ProjectId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Debug("SnapshotConsumer", "Snapshot persisted", map[string]interface{}{"project_id": payload.ProjectId})
	msg.Ack()
}
