// Package mirror replicates finalized relational records into the MongoDB
// database consumed by the reader application. Sync runs are one-directional,
// incremental, and idempotent: documents are upserted under stable
// identifiers generated on the relational side, so re-running a sync over an
// unchanged source is a no-op.
package mirror

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultPageSize  = 100
	defaultBatchSize = 50
)

// Stats accumulates counters over a single sync run. It is scoped to the run
// and never shared across concurrent runs; concurrent Run calls for the same
// entity are not safe against each other and must be serialized by the
// caller.
type Stats struct {
	Total    int `json:"total"`
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`

	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Pointer is the lightweight cross-reference the target store uses in place
// of a foreign key join.
type Pointer struct {
	Collection string             `bson:"collection" json:"collection"`
	ID         primitive.ObjectID `bson:"id" json:"id"`
}

// Context carries per-run shared state from an entity's pre-sync hook into
// its transform function, so references resolve without per-item I/O.
type Context struct {
	BookRefs   map[int64]Pointer
	LessonRefs map[int64]primitive.ObjectID
}

func newContext() *Context {
	return &Context{
		BookRefs:   make(map[int64]Pointer),
		LessonRefs: make(map[int64]primitive.ObjectID),
	}
}

// Entity configures one table-to-collection sync. Behavior that varied per
// entity in earlier iterations (reference preloading, document shape,
// conflict handling) is expressed as function values rather than subtyping.
type Entity struct {
	Name      string
	PageSize  int
	BatchSize int

	// FetchPage returns one page of source rows, ordered by a deterministic
	// sort key so pages are stable under concurrent writes.
	FetchPage func(ctx context.Context, limit, offset int) ([]any, error)

	// PreSync optionally preloads reference maps into the run context.
	PreSync func(ctx context.Context, rc *Context) error

	// Transform maps a source row to a target document. Returning (nil, nil)
	// skips the row; returning an error counts it and continues the run.
	Transform func(row any, rc *Context) (bson.M, error)

	// Upsert writes one batch and reports how many documents were inserted
	// vs updated.
	Upsert func(ctx context.Context, docs []bson.M) (inserted, updated int, err error)
}

// Run syncs a single entity to completion. Page fetch failures are fatal and
// abort the run; everything below that (bad rows, failed batches) is counted
// and skipped so one poisoned record can't stall the rest of the table.
func Run(ctx context.Context, e Entity) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	finish := func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}

	pageSize := e.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	rc := newContext()
	if e.PreSync != nil {
		if err := e.PreSync(ctx, rc); err != nil {
			finish()
			return stats, fmt.Errorf("%s pre-sync: %w", e.Name, err)
		}
	}

	var batch []bson.M
	flush := func() {
		if len(batch) == 0 {
			return
		}
		inserted, updated, err := e.Upsert(ctx, batch)
		if err != nil {
			// The whole batch is unaccounted for — no partial credit.
			log.Printf("WARN: [sync] %s: batch upsert failed (%d docs): %v", e.Name, len(batch), err)
			stats.Errors += len(batch)
		} else {
			stats.Inserted += inserted
			stats.Updated += updated
		}
		batch = batch[:0]
		log.Printf("[sync] %s: processed=%d inserted=%d updated=%d skipped=%d errors=%d",
			e.Name, stats.Total, stats.Inserted, stats.Updated, stats.Skipped, stats.Errors)
	}

	for offset := 0; ; offset += pageSize {
		rows, err := e.FetchPage(ctx, pageSize, offset)
		if err != nil {
			finish()
			return stats, fmt.Errorf("%s fetch page at offset %d: %w", e.Name, offset, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			stats.Total++

			doc, err := e.Transform(row, rc)
			if err != nil {
				log.Printf("WARN: [sync] %s: transform failed: %v", e.Name, err)
				stats.Errors++
				continue
			}
			if doc == nil {
				stats.Skipped++
				continue
			}

			batch = append(batch, doc)
			if len(batch) >= batchSize {
				flush()
			}
		}

		if len(rows) < pageSize {
			break
		}
	}
	flush()

	finish()
	log.Printf("[sync] %s: done in %s — total=%d inserted=%d updated=%d skipped=%d errors=%d",
		e.Name, stats.Duration.Round(time.Millisecond), stats.Total,
		stats.Inserted, stats.Updated, stats.Skipped, stats.Errors)
	return stats, nil
}
