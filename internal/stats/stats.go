package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kiwikodes/Four-In-A-Row/internal/cache"
	"github.com/kiwikodes/Four-In-A-Row/internal/database"
	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

const cacheKey = "stats:board_sizes"

// Store is the results backend. *database.DB satisfies it.
type Store interface {
	SaveResult(ctx context.Context, r *database.GameResult) error
	GetStats(ctx context.Context) ([]database.BoardSizeStats, error)
}

// Service serves per board size statistics through a cache and keeps the
// cache fresh as results come in.
type Service struct {
	store Store
	cache cache.Store
	ttl   time.Duration
}

// NewService wires store and cache. A nil store serves empty stats and
// discards results.
func NewService(store Store, c cache.Store, ttl time.Duration) *Service {
	return &Service{store: store, cache: c, ttl: ttl}
}

// SaveResult records r and invalidates the cached stats.
func (s *Service) SaveResult(ctx context.Context, r *database.GameResult) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveResult(ctx, r); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		logger.Warn("Error invalidating stats cache", err)
	}
	return nil
}

// Stats returns the encoded stats and whether they came from the cache.
func (s *Service) Stats(ctx context.Context) ([]byte, bool, error) {
	if data, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
		logger.Warn("Error reading stats cache", err)
	} else if ok {
		return data, true, nil
	}

	rows := []database.BoardSizeStats{}
	if s.store != nil {
		var err error
		if rows, err = s.store.GetStats(ctx); err != nil {
			return nil, false, err
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, cacheKey, data, s.ttl); err != nil {
		logger.Warn("Error writing stats cache", err)
	}
	return data, false, nil
}

// ServeHTTP answers GET /stats.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, hit, err := s.Stats(r.Context())
	if err != nil {
		logger.Error("Error fetching stats", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Write(data)
}
