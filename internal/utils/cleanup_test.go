package utils

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/kiwikodes/Four-In-A-Row/internal/logger"
)

func TestCleanupRunsInReverse(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	defer logger.SetOutput(os.Stdout)

	var order []string
	rm := NewResourceManager()
	for _, name := range []string{"database", "kafka", "http"} {
		name := name
		rm.AddCleanupFunc(name, func() error {
			order = append(order, name)
			if name == "kafka" {
				return errors.New("broker gone")
			}
			return nil
		})
	}

	failed := rm.Cleanup()
	if !reflect.DeepEqual(order, []string{"http", "kafka", "database"}) {
		t.Fatalf("order = %v", order)
	}
	if !reflect.DeepEqual(failed, []string{"kafka"}) {
		t.Fatalf("failed = %v", failed)
	}
	if rm.Cleanup() != nil || len(order) != 3 {
		t.Fatal("second Cleanup ran funcs again")
	}
}

func TestWaitForShutdownOnContext(t *testing.T) {
	logger.SetOutput(&bytes.Buffer{})
	defer logger.SetOutput(os.Stdout)

	ran := false
	rm := NewResourceManager()
	rm.AddCleanupFunc("cache", func() error { ran = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rm.WaitForShutdown(ctx)
	if !ran {
		t.Fatal("cleanup did not run")
	}
}
