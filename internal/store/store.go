// Package store persists completed audit runs to MongoDB so history can be
// queried later (spec §10), grounded on internal/config/mongo.go's
// connect-and-index pattern and database.TenantDBManager's collection
// wrapping idiom.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nishaddevendra/webauditor/internal/auditmodel"
)

// Run is one persisted audit, single-URL or crawl.
type Run struct {
	ID         string                         `bson:"_id" json:"id"`
	StartURL   string                         `bson:"startUrl" json:"startUrl"`
	ScheduleID string                         `bson:"scheduleId,omitempty" json:"scheduleId,omitempty"`
	CreatedAt  time.Time                      `bson:"createdAt" json:"createdAt"`
	Result     auditmodel.MultiURLAuditResult `bson:"result" json:"result"`
}

// Store wraps the audit_runs collection.
type Store struct {
	runs *mongo.Collection
}

// New wraps an already-connected database's audit_runs collection (the
// collection and its indexes are created by config.ConnectMongoDB).
func New(db *mongo.Database) *Store {
	return &Store{runs: db.Collection("audit_runs")}
}

// SaveRun inserts one completed run.
func (s *Store) SaveRun(ctx context.Context, id, startURL, scheduleID string, result auditmodel.MultiURLAuditResult) error {
	run := Run{
		ID:         id,
		StartURL:   startURL,
		ScheduleID: scheduleID,
		CreatedAt:  time.Now(),
		Result:     result,
	}
	_, err := s.runs.InsertOne(ctx, run)
	if err != nil {
		return fmt.Errorf("store-save-failed: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs for a start URL, newest first.
func (s *Store) RecentRuns(ctx context.Context, startURL string, limit int64) ([]Run, error) {
	filter := bson.M{}
	if startURL != "" {
		filter["startUrl"] = startURL
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)

	cursor, err := s.runs.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("store-query-failed: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []Run
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("store-query-failed: decode: %w", err)
	}
	return runs, nil
}

// RunsForSchedule returns up to limit runs produced by one schedule, newest first.
func (s *Store) RunsForSchedule(ctx context.Context, scheduleID string, limit int64) ([]Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	cursor, err := s.runs.Find(ctx, bson.M{"scheduleId": scheduleID}, opts)
	if err != nil {
		return nil, fmt.Errorf("store-query-failed: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []Run
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("store-query-failed: decode: %w", err)
	}
	return runs, nil
}
