package services

import (
	"context"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

const (
	// FeedbackCollection is the MongoDB collection holding feedback records.
	FeedbackCollection = "feedback"

	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// UnspecifiedKey is the breakdown bucket for records without a career or impact.
	UnspecifiedKey = "unspecified"

	filterAll = "all"
)

// FeedbackStore persists and queries feedback records. Records are
// immutable once inserted.
type FeedbackStore interface {
	Insert(ctx context.Context, record *models.Feedback) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error)
	ListAll(ctx context.Context) ([]models.Feedback, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Feedback, error)
	// ListFiltered returns every record matching filter, newest first, without paging.
	ListFiltered(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error)
	Query(ctx context.Context, filter models.FeedbackFilter, page, limit int) (*models.FeedbackPage, error)
}

// ValidateFeedback checks the fields every stored record must carry.
func ValidateFeedback(record *models.Feedback) error {
	switch {
	case strings.TrimSpace(record.Impact) == "":
		return &ValidationError{Field: "impact", Message: "impact is required"}
	case strings.TrimSpace(record.Feedback) == "":
		return &ValidationError{Field: "feedback", Message: "feedback is required"}
	case strings.TrimSpace(record.Suggestion) == "":
		return &ValidationError{Field: "suggestion", Message: "suggestion is required"}
	}
	return nil
}

// NormalizePage applies the page window defaults. Non-positive values fall
// back to the defaults, limit is capped at MaxPageLimit and page is clamped
// so that the skip (page-1)*limit cannot overflow.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// PageSkip is the number of records before the page window.
func PageSkip(page, limit int) int {
	return (page - 1) * limit
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// NormalizeFilter trims values and drops the "all" sentinel so that empty
// and "all" both mean no constraint.
func NormalizeFilter(f models.FeedbackFilter) models.FeedbackFilter {
	f.Career = normalizeFilterValue(f.Career)
	f.Impact = normalizeFilterValue(f.Impact)
	return f
}

func normalizeFilterValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, filterAll) {
		return ""
	}
	return v
}

// BuildFeedbackFilter translates a filter into a MongoDB predicate. Date
// bounds are inclusive.
func BuildFeedbackFilter(f models.FeedbackFilter) bson.M {
	f = NormalizeFilter(f)
	filter := bson.M{}
	if f.Career != "" {
		filter["career"] = f.Career
	}
	if f.Impact != "" {
		filter["impact"] = f.Impact
	}
	if f.StartDate != nil || f.EndDate != nil {
		ts := bson.M{}
		if f.StartDate != nil {
			ts["$gte"] = f.StartDate.UTC()
		}
		if f.EndDate != nil {
			ts["$lte"] = f.EndDate.UTC()
		}
		filter["timestamp"] = ts
	}
	return filter
}

// matchesFilter is the in-process twin of BuildFeedbackFilter.
func matchesFilter(rec *models.Feedback, f models.FeedbackFilter) bool {
	if f.Career != "" && rec.Career != f.Career {
		return false
	}
	if f.Impact != "" && rec.Impact != f.Impact {
		return false
	}
	if f.StartDate != nil && rec.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && rec.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

func breakdownKey(v string) string {
	if v == "" {
		return UnspecifiedKey
	}
	return v
}

func newStatistics() models.FeedbackStatistics {
	return models.FeedbackStatistics{
		CareerBreakdown: map[string]int64{},
		ImpactBreakdown: map[string]int64{},
	}
}

// SummarizeRecent builds the recent-feedback view: per-impact counts for the
// recognized impacts and the window total, which includes unrecognized ones.
func SummarizeRecent(records []models.Feedback) models.RecentFeedback {
	stats := make(map[string]int64, len(models.RecognizedImpacts))
	for _, impact := range models.RecognizedImpacts {
		stats[impact] = 0
	}
	for i := range records {
		if _, ok := stats[records[i].Impact]; ok {
			stats[records[i].Impact]++
		}
	}
	if records == nil {
		records = []models.Feedback{}
	}
	return models.RecentFeedback{
		Feedback: records,
		Stats:    stats,
		Total:    len(records),
	}
}
