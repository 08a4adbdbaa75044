package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kiwikodes/Four-In-A-Row/internal/analytics"
	"github.com/kiwikodes/Four-In-A-Row/internal/bot"
	"github.com/kiwikodes/Four-In-A-Row/internal/database"
	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

// EventPublisher receives analytics events. *analytics.Producer satisfies it.
type EventPublisher interface {
	SendEvent(event analytics.GameEvent) error
}

// ResultStore records finished games.
type ResultStore interface {
	SaveResult(ctx context.Context, r *database.GameResult) error
}

// Options configures a Hub.
type Options struct {
	DefaultBoardSize int
	MaxBoardSize     int
	BotMoveDelay     time.Duration
	BotName          string
	CheckOrigin      func(r *http.Request) bool
}

const (
	eventBuffer = 256
	saveTimeout = 5 * time.Second
)

// Hub maintains the set of active clients and their sessions
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	sessions map[string]*Session
	mu       sync.Mutex

	opts Options
	bot  *bot.Bot

	// Optional analytics and results store (can be nil). Set before Run.
	publisher EventPublisher
	results   ResultStore
	events    chan analytics.GameEvent

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewHub creates a new Hub instance
func NewHub(opts Options) *Hub {
	if opts.MaxBoardSize < 1 {
		opts.MaxBoardSize = 10
	}
	if opts.DefaultBoardSize < 1 || opts.DefaultBoardSize > opts.MaxBoardSize {
		opts.DefaultBoardSize = min(7, opts.MaxBoardSize)
	}
	if opts.BotName == "" {
		opts.BotName = "BOT"
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		sessions:   make(map[string]*Session),
		opts:       opts,
		bot:        bot.NewBot(opts.BotName),
		events:     make(chan analytics.GameEvent, eventBuffer),
		done:       make(chan struct{}),
	}
}

// SetPublisher sets the analytics publisher (optional)
func (h *Hub) SetPublisher(p EventPublisher) {
	h.publisher = p
}

// SetResultStore sets where finished games are recorded (optional)
func (h *Hub) SetResultStore(s ResultStore) {
	h.results = s
}

// Run serves register and unregister requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.publisher != nil {
		h.wg.Add(1)
		go h.publishLoop()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("Client registered", logger.Fields{"client": client.id})

		case client := <-h.unregister:
			h.removeClient(client)

		case <-ctx.Done():
			h.stop()
			return
		}
	}
}

// Wait blocks until pending bot moves, saves and events are flushed.
// Call it after Run has returned.
func (h *Hub) Wait() {
	h.wg.Wait()
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		defer h.mu.Unlock()
		for client := range h.clients {
			client.close()
			delete(h.clients, client)
		}
	})
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
		logger.Debug("Client unregistered", logger.Fields{"client": client.id})
	}
}

func (h *Hub) addSession(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[s.ID] = s
}

func (h *Hub) dropSession(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, s.ID)
}

// emit queues event for the publisher. Events are dropped when the queue is full.
func (h *Hub) emit(event analytics.GameEvent) {
	if h.publisher == nil {
		return
	}
	select {
	case h.events <- event:
	default:
		logger.Warn("Analytics queue full, dropping event", logger.Fields{"type": event.Type, "gameId": event.GameID})
	}
}

func (h *Hub) publishLoop() {
	defer h.wg.Done()
	for {
		select {
		case event := <-h.events:
			h.publish(event)
		case <-h.done:
			// drain what is already queued
			for {
				select {
				case event := <-h.events:
					h.publish(event)
				default:
					return
				}
			}
		}
	}
}

func (h *Hub) publish(event analytics.GameEvent) {
	if err := h.publisher.SendEvent(event); err != nil {
		logger.Error("Error publishing event", logger.Fields{"type": event.Type, "gameId": event.GameID, "error": err.Error()})
	}
}

// storeResult saves r in the background when a results store is configured.
func (h *Hub) storeResult(r *database.GameResult) {
	if h.results == nil {
		return
	}
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := h.results.SaveResult(ctx, r); err != nil {
			logger.Error("Error storing game result", logger.Fields{"gameId": r.ID.String(), "error": err.Error()})
			return
		}
		logger.Info("Game result stored", logger.Fields{"gameId": r.ID.String(), "outcome": r.Outcome})
	}()
}
