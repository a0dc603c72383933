package dashboard

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/timvw/agent-studio/internal/studio"
)

var tracer = otel.Tracer("agent-studio/dashboard")

// activityLimit is the number of events shown in the activity feed.
const activityLimit = 8

// Snapshot is everything the left panel and header need.
type Snapshot struct {
	Lists    map[studio.Kind][]studio.Summary
	Counts   map[studio.Kind]int
	Activity []studio.Event
}

// Detail is everything the detail section of one entity needs.
type Detail struct {
	Entity  studio.Entity
	Series  studio.Series
	History []studio.Event
}

// Loader fetches dashboard data from the studio client, issuing the
// independent calls of a load in parallel.
type Loader struct {
	Client   *studio.Client
	Parallel int // max concurrent calls; <= 0 means one per call
}

// Snapshot loads every list, the counts and the activity feed.
func (l *Loader) Snapshot(ctx context.Context) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "load snapshot")
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	if l.Parallel > 0 {
		g.SetLimit(l.Parallel)
	}

	lists := make([][]studio.Summary, len(studio.Kinds))
	for i, kind := range studio.Kinds {
		g.Go(func() error {
			s, err := l.Client.List(ctx, kind)
			if err != nil {
				return fmt.Errorf("loading %s: %w", kind, err)
			}
			lists[i] = s
			return nil
		})
	}
	var counts map[studio.Kind]int
	g.Go(func() error {
		c, err := l.Client.Counts(ctx)
		if err != nil {
			return fmt.Errorf("loading counts: %w", err)
		}
		counts = c
		return nil
	})
	var activity []studio.Event
	g.Go(func() error {
		a, err := l.Client.Activity(ctx, activityLimit)
		if err != nil {
			return fmt.Errorf("loading activity: %w", err)
		}
		activity = a
		return nil
	})
	if err := g.Wait(); err != nil {
		span.SetAttributes(attribute.String("error.type", "load_failed"))
		return nil, err
	}

	snap := &Snapshot{
		Lists:    make(map[studio.Kind][]studio.Summary, len(studio.Kinds)),
		Counts:   counts,
		Activity: activity,
	}
	total := 0
	for i, kind := range studio.Kinds {
		snap.Lists[kind] = lists[i]
		total += len(lists[i])
	}
	span.SetAttributes(attribute.Int("entities.total", total))
	return snap, nil
}

// Detail loads one entity with its metrics and history.
func (l *Loader) Detail(ctx context.Context, id string) (*Detail, error) {
	ctx, span := tracer.Start(ctx, "load detail",
		trace.WithAttributes(attribute.String("entity.id", id)))
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	if l.Parallel > 0 {
		g.SetLimit(l.Parallel)
	}
	d := &Detail{}
	g.Go(func() error {
		e, err := l.Client.Get(ctx, id)
		d.Entity = e
		return err
	})
	g.Go(func() error {
		s, err := l.Client.Metrics(ctx, id)
		d.Series = s
		return err
	})
	g.Go(func() error {
		h, err := l.Client.History(ctx, id)
		d.History = h
		return err
	})
	if err := g.Wait(); err != nil {
		span.SetAttributes(attribute.String("error.type", "load_failed"))
		return nil, fmt.Errorf("loading %s: %w", id, err)
	}
	return d, nil
}
