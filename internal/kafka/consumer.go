package kafka

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"

	"jira-dashboard/internal/config"
	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/notification"
	"jira-dashboard/internal/workload"
)

// Consumer reacts to sheet-update events: the sprint's cached workload is
// dropped and its progress re-checked immediately (cooldown bypassed).
type Consumer struct {
	reader        *kafka.Reader
	notifications *notification.Service
	workload      *workload.Service
	logger        *logging.Logger
}

// sheetEvent is the payload published by the sheet reader on changes.
type sheetEvent struct {
	SheetID    string `json:"sheet_id"`
	SprintName string `json:"sprint_name"`
}

// NewConsumer builds a Consumer for the configured topic.
func NewConsumer(cfg config.Config, n *notification.Service, w *workload.Service, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Kafka.Broker},
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	return &Consumer{
		reader:        reader,
		notifications: n,
		workload:      w,
		logger:        logger,
	}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Infof("Kafka consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}
			c.handle(ctx, msg.Value)
		}
	}()
}

func (c *Consumer) handle(ctx context.Context, value []byte) {
	var event sheetEvent
	if err := json.Unmarshal(value, &event); err != nil {
		c.logger.Errorf("Unmarshal sheet event failed: %v", err)
		return
	}
	if event.SheetID == "" {
		c.logger.Errorf("Invalid sheet event: missing sheet_id")
		return
	}

	if event.SprintName == "" {
		// Sheet-wide change; everything cached may be stale.
		c.workload.InvalidateAll()
		c.logger.Infof("Sheet %s updated, workload cache cleared", event.SheetID)
		return
	}

	c.workload.Invalidate(event.SprintName)
	if _, err := c.notifications.CheckSprint(ctx, event.SprintName); err != nil {
		c.logger.Errorf("Re-check after sheet update failed for sprint %q: %v", event.SprintName, err)
	}
	c.logger.Infof("Sheet %s updated, sprint %q invalidated and re-checked", event.SheetID, event.SprintName)
}

// Close releases the underlying reader.
func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Kafka reader close failed: %v", err)
	}
}
