package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/goodnight/internal/logging"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/repomanager"
)

// Aggregator reconciles queued reaction deltas into the shared message
// counters. It runs off the request path — driven by a fixed-interval ticker
// and an external scheduler trigger — and processes one bounded batch per
// invocation. Re-invocation is always safe: events are deleted only after
// their group's increment succeeded, so a crashed or failed run simply
// leaves them for the next one (at-least-once).
type Aggregator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	batchSize   int
	logger      logging.Logger
}

func NewAggregator(db *sql.DB, m repomanager.RepositoryManager, batchSize int, logger logging.Logger) *Aggregator {
	return &Aggregator{
		db:          db,
		repomanager: m,
		batchSize:   batchSize,
		logger:      logger.With("module", "aggregator"),
	}
}

// RunStats summarizes one aggregation run.
type RunStats struct {
	EventsRead    int
	GroupsApplied int
	GroupsFailed  int
	EventsDeleted int
}

type group struct {
	messageID string
	ids       []string
	dLikes    int
	dDislikes int
	dScore    int
}

// Run consumes one batch of pending delta events: group by message id, apply
// each group's net delta atomically, then delete the consumed events. A
// group whose increment fails is left in place for the next run and never
// aborts the rest of the batch.
func (a *Aggregator) Run(ctx context.Context) (*RunStats, error) {
	reactionRepo := a.repomanager.Reactions(a.db)
	messageRepo := a.repomanager.Messages(a.db)

	events, err := reactionRepo.ListEvents(ctx, a.batchSize)
	if err != nil {
		return nil, err
	}

	stats := &RunStats{EventsRead: len(events)}
	if len(events) == 0 {
		return stats, nil
	}

	groups := groupEvents(events)

	for _, g := range groups {
		if g.dLikes != 0 || g.dDislikes != 0 || g.dScore != 0 {
			if err := messageRepo.ApplyDelta(ctx, g.messageID, g.dLikes, g.dDislikes, g.dScore); err != nil {
				a.logger.Error(ctx, "delta apply failed, leaving events for next run",
					"message_id", g.messageID, "error", err.Error())
				stats.GroupsFailed++
				continue
			}
		}

		if err := reactionRepo.DeleteEvents(ctx, g.ids); err != nil {
			// Best-effort cleanup: the increment is already durable.
			a.logger.Warn(ctx, "consumed event cleanup failed",
				"message_id", g.messageID, "error", err.Error())
		} else {
			stats.EventsDeleted += len(g.ids)
		}
		stats.GroupsApplied++
	}

	return stats, nil
}

// groupEvents sums deltas per message id, preserving first-seen order.
func groupEvents(events []*models.DeltaEvent) []*group {
	byMessage := make(map[string]*group)
	var ordered []*group
	for _, ev := range events {
		g, ok := byMessage[ev.MessageID]
		if !ok {
			g = &group{messageID: ev.MessageID}
			byMessage[ev.MessageID] = g
			ordered = append(ordered, g)
		}
		g.ids = append(g.ids, ev.ID)
		g.dLikes += ev.DeltaLikes
		g.dDislikes += ev.DeltaDis
		g.dScore += ev.DeltaScore
	}
	return ordered
}
