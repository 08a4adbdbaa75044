package analytics

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/kiwikodes/Four-In-A-Row/internal/game"
	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

type execCall struct {
	query string
	args  []interface{}
}

type fakeDB struct {
	calls []execCall
	err   error
}

func (f *fakeDB) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	return nil, f.err
}

func commit(t *testing.T) *game.MoveOutcome {
	t.Helper()
	g, err := game.NewGame(4)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	out, err := g.CommitMove(2)
	if err != nil {
		t.Fatalf("CommitMove: %v", err)
	}
	return out
}

func TestEventBuilders(t *testing.T) {
	start := NewGameStartEvent("g1", 7, 1)
	if start.Type != EventGameStart || start.Data["isBotGame"] != true || start.Data["boardSize"] != 7 {
		t.Fatalf("start = %+v", start)
	}

	move := NewMoveEvent("g1", commit(t), false)
	if move.Type != EventMove || move.Data["player"] != "player_one" || move.Data["column"] != 2 || move.Data["row"] != 0 {
		t.Fatalf("move = %+v", move)
	}

	end := NewGameEndEvent("g1", 4, [2]int{1, 1}, game.Empty, 90*time.Second)
	if end.Data["isDraw"] != true || end.Data["winner"] != "empty" || end.Data["duration"] != 90.0 {
		t.Fatalf("end = %+v", end)
	}
}

func TestProducerSendsKeyedJSON(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	defer mock.Close()

	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event GameEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Type != EventGameStart || event.GameID != "g1" || event.Timestamp.IsZero() {
			return errors.New("unexpected event " + string(val))
		}
		return nil
	})
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newProducer(mock, "game-events")
	if err := p.SendEvent(NewGameStartEvent("g1", 7, 2)); err != nil {
		t.Fatalf("SendEvent: %v", err)
	}
	if err := p.SendEvent(NewGameStartEvent("g2", 7, 2)); !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("SendEvent error = %v, want ErrOutOfBrokers", err)
	}
}

func encode(t *testing.T, event GameEvent) []byte {
	t.Helper()
	event.Timestamp = time.Now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

func TestProcessWritesAnalyticsRows(t *testing.T) {
	events := []GameEvent{
		NewGameStartEvent("g1", 4, 1),
		NewMoveEvent("g1", commit(t), true),
		NewGameEndEvent("g1", 4, [2]int{2, 1}, game.PlayerOne, time.Minute),
	}
	db := &fakeDB{}
	h := &ConsumerGroupHandler{db: db}
	for _, e := range events {
		if err := h.process(context.Background(), encode(t, e)); err != nil {
			t.Fatalf("process %s: %v", e.Type, err)
		}
	}

	if len(db.calls) != 3 {
		t.Fatalf("%d inserts, want 3", len(db.calls))
	}
	end := db.calls[2]
	if !strings.Contains(end.query, "game_analytics") {
		t.Fatalf("query = %s", end.query)
	}
	// game_id, event_type, event_time, player, board_size, points, duration, additional_data
	if end.args[0] != "g1" || end.args[1] != EventGameEnd || end.args[3] != "player_one" || end.args[4] != 4 || end.args[5] != 3 {
		t.Fatalf("game_end args = %v", end.args)
	}
	if move := db.calls[1]; move.args[3] != "player_one" || move.args[4] != nil {
		t.Fatalf("move args = %v", move.args)
	}
}

func TestHandleParksBadMessages(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	defer logger.SetOutput(os.Stdout)

	tests := []struct {
		name  string
		value []byte
	}{
		{"not json", []byte("{")},
		{"unknown type", encode(t, GameEvent{Type: "player_join", GameID: "g1"})},
		{"missing field", encode(t, GameEvent{Type: EventMove, GameID: "g1", Data: map[string]interface{}{"player": "x"}})},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := &fakeDB{}
			h := &ConsumerGroupHandler{db: db}
			h.handle(context.Background(), &sarama.ConsumerMessage{Topic: "game-events", Partition: 1, Offset: 9, Value: tc.value})
			if len(db.calls) != 1 || !strings.Contains(db.calls[0].query, "failed_events") {
				t.Fatalf("calls = %+v", db.calls)
			}
			if db.calls[0].args[2] != int64(9) {
				t.Fatalf("offset arg = %v", db.calls[0].args[2])
			}
		})
	}
}
