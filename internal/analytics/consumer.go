package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

// Execer is the slice of *sql.DB the consumer writes through.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Consumer handles consuming and processing game events
type Consumer struct {
	consumer sarama.ConsumerGroup
	db       Execer
}

// ConsumerGroupHandler implements the sarama.ConsumerGroupHandler interface
type ConsumerGroupHandler struct {
	ready chan struct{}
	db    Execer
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, groupID string, db Execer) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("error creating consumer group %s: %w", groupID, err)
	}

	return &Consumer{consumer: group, db: db}, nil
}

// Start consumes topics until ctx is cancelled. It rejoins the group after every rebalance.
func (c *Consumer) Start(ctx context.Context, topics []string) error {
	for {
		handler := &ConsumerGroupHandler{ready: make(chan struct{}), db: c.db}
		if err := c.consumer.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Setup is run before consuming begins
func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

// Cleanup is run when consuming ends
func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim processes a partition in order. Messages that fail are parked
// in failed_events and still marked so the partition keeps moving.
func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handle(session.Context(), msg)
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *ConsumerGroupHandler) handle(ctx context.Context, msg *sarama.ConsumerMessage) {
	err := h.process(ctx, msg.Value)
	if err == nil {
		return
	}

	logger.Error("Error processing message", logger.Fields{
		"topic": msg.Topic, "partition": msg.Partition, "offset": msg.Offset, "error": err.Error(),
	})
	_, dbErr := h.db.ExecContext(ctx, insertFailedEventSQL,
		msg.Topic, msg.Partition, msg.Offset, string(msg.Value), err.Error(),
	)
	if dbErr != nil {
		logger.Error("Error storing failed message", dbErr)
	}
}

func (h *ConsumerGroupHandler) process(ctx context.Context, value []byte) error {
	var event GameEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("error unmarshaling event: %w", err)
	}
	row, err := rowFor(event)
	if err != nil {
		return fmt.Errorf("error processing %s event: %w", event.Type, err)
	}
	extra, err := json.Marshal(row.extra)
	if err != nil {
		return err
	}
	_, err = h.db.ExecContext(ctx, insertAnalyticsSQL,
		event.GameID, event.Type, event.Timestamp, row.player, row.boardSize, row.points, row.duration, extra,
	)
	return err
}

// Database schema for analytics
const (
	CreateAnalyticsTablesSQL = `
		CREATE TABLE IF NOT EXISTS game_analytics (
			game_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_time TIMESTAMPTZ NOT NULL,
			player TEXT,
			board_size INTEGER,
			points INTEGER,
			duration FLOAT,
			additional_data JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_game_analytics_game ON game_analytics (game_id);
		CREATE TABLE IF NOT EXISTS failed_events (
			id SERIAL PRIMARY KEY,
			topic TEXT NOT NULL,
			partition INTEGER NOT NULL,
			"offset" BIGINT NOT NULL,
			message TEXT NOT NULL,
			error TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	insertAnalyticsSQL = `
		INSERT INTO game_analytics (
			game_id, event_type, event_time, player, board_size, points, duration, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertFailedEventSQL = `
		INSERT INTO failed_events (topic, partition, "offset", message, error)
		VALUES ($1, $2, $3, $4, $5)`
)

// EnsureSchema creates the analytics tables.
func EnsureSchema(ctx context.Context, db Execer) error {
	if _, err := db.ExecContext(ctx, CreateAnalyticsTablesSQL); err != nil {
		return fmt.Errorf("error creating analytics tables: %w", err)
	}
	return nil
}

// analyticsRow is one game_analytics row. Nil fields are stored as NULL.
type analyticsRow struct {
	player    interface{}
	boardSize interface{}
	points    interface{}
	duration  interface{}
	extra     map[string]interface{}
}

func rowFor(event GameEvent) (analyticsRow, error) {
	if event.GameID == "" {
		return analyticsRow{}, errors.New("missing game id")
	}
	d := event.Data
	switch event.Type {
	case EventGameStart:
		size, err := number(d, "boardSize")
		if err != nil {
			return analyticsRow{}, err
		}
		players, err := number(d, "players")
		if err != nil {
			return analyticsRow{}, err
		}
		return analyticsRow{
			boardSize: int(size),
			extra:     map[string]interface{}{"players": int(players), "isBotGame": players == 1},
		}, nil

	case EventMove:
		player, ok := d["player"].(string)
		if !ok {
			return analyticsRow{}, errors.New("invalid player data")
		}
		row, err := number(d, "row")
		if err != nil {
			return analyticsRow{}, err
		}
		col, err := number(d, "column")
		if err != nil {
			return analyticsRow{}, err
		}
		points, err := number(d, "points")
		if err != nil {
			return analyticsRow{}, err
		}
		byBot, _ := d["byBot"].(bool)
		return analyticsRow{
			player: player,
			points: int(points),
			extra:  map[string]interface{}{"row": int(row), "column": int(col), "byBot": byBot},
		}, nil

	case EventGameEnd:
		winner, ok := d["winner"].(string)
		if !ok {
			return analyticsRow{}, errors.New("invalid winner data")
		}
		isDraw, ok := d["isDraw"].(bool)
		if !ok {
			return analyticsRow{}, errors.New("invalid isDraw data")
		}
		duration, err := number(d, "duration")
		if err != nil {
			return analyticsRow{}, err
		}
		size, err := number(d, "boardSize")
		if err != nil {
			return analyticsRow{}, err
		}
		one, err := number(d, "playerOneScore")
		if err != nil {
			return analyticsRow{}, err
		}
		two, err := number(d, "playerTwoScore")
		if err != nil {
			return analyticsRow{}, err
		}
		return analyticsRow{
			player:    winner,
			boardSize: int(size),
			points:    int(one + two),
			duration:  duration,
			extra: map[string]interface{}{
				"isDraw": isDraw, "playerOneScore": int(one), "playerTwoScore": int(two),
			},
		}, nil
	}
	return analyticsRow{}, fmt.Errorf("unknown event type %q", event.Type)
}

// number reads a JSON number out of decoded event data.
func number(data map[string]interface{}, key string) (float64, error) {
	switch v := data[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("invalid %s data", key)
}

// Close closes the consumer group
func (c *Consumer) Close() error {
	return c.consumer.Close()
}
