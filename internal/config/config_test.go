package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "PORT", "DEFAULT_BOARD_SIZE", "MAX_BOARD_SIZE", "BOT_MOVE_DELAY",
		"DATABASE_URL", "DB_HOST", "KAFKA_BROKERS", "REDIS_ADDR", "ALLOWED_ORIGINS", "DEBUG",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "STATS_CACHE_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Game.DefaultBoardSize != 7 || cfg.Game.MaxBoardSize != 10 {
		t.Fatalf("defaults = %+v %+v", cfg.Server, cfg.Game)
	}
	if cfg.Game.BotMoveDelay != 500*time.Millisecond || cfg.Redis.StatsTTL != 30*time.Second {
		t.Fatalf("durations = %v %v", cfg.Game.BotMoveDelay, cfg.Redis.StatsTTL)
	}
	if cfg.Database.Enabled() || len(cfg.Kafka.Brokers) != 0 || cfg.Redis.Addr != "" {
		t.Fatal("optional backends should be off by default")
	}
	if cfg.Debug {
		t.Fatal("debug on by default")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DEFAULT_BOARD_SIZE", "4")
	t.Setenv("BOT_MOVE_DELAY", "0s")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("ALLOWED_ORIGINS", "http://example.com")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/games")
	t.Setenv("DEBUG", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Game.DefaultBoardSize != 4 || cfg.Game.BotMoveDelay != 0 {
		t.Fatalf("cfg = %+v %+v", cfg.Server, cfg.Game)
	}
	if !reflect.DeepEqual(cfg.Kafka.Brokers, []string{"a:9092", "b:9092"}) {
		t.Fatalf("brokers = %q", cfg.Kafka.Brokers)
	}
	if !reflect.DeepEqual(cfg.Security.AllowedOrigins, []string{"http://example.com"}) {
		t.Fatalf("origins = %q", cfg.Security.AllowedOrigins)
	}
	if cfg.Database.DSN() != "postgres://u:p@db/games" || !cfg.Debug {
		t.Fatalf("dsn = %q debug = %v", cfg.Database.DSN(), cfg.Debug)
	}
}

func TestLoadConfigRejectsBadBoardSize(t *testing.T) {
	tests := []struct{ def, max string }{
		{"0", "10"},
		{"11", "10"},
		{"3", "0"},
	}
	for _, tc := range tests {
		t.Run(tc.def+"/"+tc.max, func(t *testing.T) {
			t.Setenv("DEFAULT_BOARD_SIZE", tc.def)
			t.Setenv("MAX_BOARD_SIZE", tc.max)
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestDSNFromParts(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "games"}
	want := "host=db port=5432 user=u password=p dbname=games sslmode=disable"
	if !c.Enabled() || c.DSN() != want {
		t.Fatalf("DSN = %q", c.DSN())
	}
}
