// The worker repairs cached engagement counters. It watches the domain
// event stream for engagement churn and periodically rebuilds the counters
// of every post touched since the last sweep.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	domainevents "castfeed-backend/domain/events"
	"castfeed-backend/infrastructure/config"
	"castfeed-backend/infrastructure/di"
	pkgerrors "castfeed-backend/pkg/errors"

	"go.uber.org/zap"
)

type dirtySet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newDirtySet() *dirtySet {
	return &dirtySet{ids: make(map[string]struct{})}
}

func (s *dirtySet) add(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

func (s *dirtySet) drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.ids = make(map[string]struct{})
	return out
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	logger := container.Logger

	dirty := newDirtySet()

	// Engagement events carry the target as the aggregate; comment events
	// carry the post in their payload.
	container.EventBus.Subscribe(domainevents.EventTypeEngagementAdded, func(ctx context.Context, event domainevents.DomainEvent) {
		dirty.add(event.GetAggregateID())
	})
	container.EventBus.Subscribe(domainevents.EventTypeEngagementRemoved, func(ctx context.Context, event domainevents.DomainEvent) {
		dirty.add(event.GetAggregateID())
	})
	container.EventBus.Subscribe(domainevents.EventTypeCommentAdded, func(ctx context.Context, event domainevents.DomainEvent) {
		if added, ok := event.(domainevents.CommentAdded); ok {
			dirty.add(added.ContentID)
		}
	})
	container.EventBus.Subscribe(domainevents.EventTypeCommentRemoved, func(ctx context.Context, event domainevents.DomainEvent) {
		if removed, ok := event.(domainevents.CommentRemoved); ok {
			dirty.add(removed.ContentID)
		}
	})

	interval := time.Duration(cfg.ReconcileIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Reconciliation worker started", zap.Duration("interval", interval))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			sweep(ctx, container, dirty, logger)
		case <-sigChan:
			logger.Info("Shutting down, running final sweep")
			sweep(ctx, container, dirty, logger)
			if err := logger.Sync(); err != nil {
				log.Printf("Failed to sync logger: %v", err)
			}
			return
		}
	}
}

func sweep(ctx context.Context, container *di.Container, dirty *dirtySet, logger *zap.Logger) {
	ids := dirty.drain()
	if len(ids) == 0 {
		return
	}

	repaired := 0
	for _, id := range ids {
		changed, err := container.Ledger.ReconcileContent(ctx, id)
		if err != nil {
			// likes on comments surface the comment id as a target;
			// those have no counters to rebuild here
			if pkgerrors.IsNotFound(err) {
				continue
			}
			logger.Error("reconciliation failed",
				zap.String("contentId", id),
				zap.Error(err),
			)
			dirty.add(id)
			continue
		}
		if changed {
			repaired++
		}
	}

	logger.Info("Reconciliation sweep finished",
		zap.Int("checked", len(ids)),
		zap.Int("repaired", repaired),
	)
}
