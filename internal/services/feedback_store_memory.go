package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

var _ FeedbackStore = (*MemoryFeedbackStore)(nil)

type memoryEntry struct {
	record models.Feedback
	seq    uint64
}

// MemoryFeedbackStore is an in-process FeedbackStore with the same ordering,
// filtering and aggregation rules as the MongoDB store.
type MemoryFeedbackStore struct {
	mu      sync.RWMutex
	entries []memoryEntry
	nextSeq uint64
	clock   clockwork.Clock
}

// NewMemoryFeedbackStore creates an empty store.
func NewMemoryFeedbackStore(clock clockwork.Clock) *MemoryFeedbackStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryFeedbackStore{clock: clock}
}

func (s *MemoryFeedbackStore) Insert(_ context.Context, record *models.Feedback) (primitive.ObjectID, error) {
	if err := ValidateFeedback(record); err != nil {
		return primitive.NilObjectID, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.Timestamp.IsZero() {
		record.Timestamp = s.clock.Now()
	}
	record.Timestamp = record.Timestamp.UTC().Truncate(time.Millisecond)
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	s.nextSeq++
	s.entries = append(s.entries, memoryEntry{record: cloneFeedback(*record), seq: s.nextSeq})
	return record.ID, nil
}

func (s *MemoryFeedbackStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.entries {
		if s.entries[i].record.ID == id {
			rec := cloneFeedback(s.entries[i].record)
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryFeedbackStore) ListAll(_ context.Context) ([]models.Feedback, error) {
	return s.collect(func(*models.Feedback) bool { return true }), nil
}

func (s *MemoryFeedbackStore) ListSince(_ context.Context, since time.Time) ([]models.Feedback, error) {
	return s.collect(func(rec *models.Feedback) bool {
		return !rec.Timestamp.Before(since)
	}), nil
}

func (s *MemoryFeedbackStore) ListFiltered(_ context.Context, f models.FeedbackFilter) ([]models.Feedback, error) {
	f = NormalizeFilter(f)
	return s.collect(func(rec *models.Feedback) bool { return matchesFilter(rec, f) }), nil
}

func (s *MemoryFeedbackStore) Query(_ context.Context, f models.FeedbackFilter, page, limit int) (*models.FeedbackPage, error) {
	page, limit = NormalizePage(page, limit)
	f = NormalizeFilter(f)

	matched := s.collect(func(rec *models.Feedback) bool { return matchesFilter(rec, f) })

	stats := newStatistics()
	stats.Total = int64(len(matched))
	for i := range matched {
		stats.CareerBreakdown[breakdownKey(matched[i].Career)]++
		stats.ImpactBreakdown[breakdownKey(matched[i].Impact)]++
	}

	start := PageSkip(page, limit)
	pageRecords := []models.Feedback{}
	if start >= 0 && start < len(matched) {
		end := min(start+limit, len(matched))
		pageRecords = matched[start:end]
	}

	return &models.FeedbackPage{
		Feedback: pageRecords,
		Pagination: models.Pagination{
			CurrentPage: page,
			TotalPages:  TotalPages(stats.Total, limit),
			TotalCount:  stats.Total,
			Limit:       limit,
		},
		Statistics: stats,
	}, nil
}

// collect returns copies of matching records, newest first.
func (s *MemoryFeedbackStore) collect(keep func(*models.Feedback) bool) []models.Feedback {
	s.mu.RLock()
	matched := make([]memoryEntry, 0, len(s.entries))
	for i := range s.entries {
		if keep(&s.entries[i].record) {
			matched = append(matched, s.entries[i])
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].record.Timestamp, matched[j].record.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]models.Feedback, len(matched))
	for i := range matched {
		out[i] = cloneFeedback(matched[i].record)
	}
	return out
}

func cloneFeedback(rec models.Feedback) models.Feedback {
	if rec.WeatherData != nil {
		wd := *rec.WeatherData
		if wd.Precipitation != nil {
			p := *wd.Precipitation
			wd.Precipitation = &p
		}
		rec.WeatherData = &wd
	}
	return rec
}
