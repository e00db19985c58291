package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recognized impact categories. Other values are stored as-is but only these
// four appear in the recent-feedback tally.
const (
	ImpactTransport = "transport"
	ImpactOutdoor   = "outdoor"
	ImpactAnxiety   = "anxiety"
	ImpactHealth    = "health"
)

// RecognizedImpacts lists the impact categories in display order.
var RecognizedImpacts = []string{ImpactTransport, ImpactOutdoor, ImpactAnxiety, ImpactHealth}

// Feedback is one student submission correlating weather with campus life.
type Feedback struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Impact     string             `bson:"impact" json:"impact"`
	Career     string             `bson:"career,omitempty" json:"career,omitempty"`
	Feedback   string             `bson:"feedback" json:"feedback"`
	Suggestion string             `bson:"suggestion" json:"suggestion"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`

	// Snapshot the client saw when submitting; never re-verified server-side.
	WeatherData *WeatherSnapshot `bson:"weatherData,omitempty" json:"weatherData,omitempty"`

	// Diagnostics only
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
}

// WeatherSnapshot is the weather attached to a submission.
type WeatherSnapshot struct {
	Temperature   float64  `bson:"temperature" json:"temperature"`
	Condition     string   `bson:"condition" json:"condition"`
	Humidity      float64  `bson:"humidity" json:"humidity"`
	Precipitation *float64 `bson:"precipitation,omitempty" json:"precipitation,omitempty"`
}

// FeedbackFilter is the admin query predicate. Empty fields and the "all"
// sentinel are ignored.
type FeedbackFilter struct {
	Career    string
	Impact    string
	StartDate *time.Time
	EndDate   *time.Time
}

// Pagination describes the page window of a query result.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	Limit       int   `json:"limit"`
}

// FeedbackStatistics are computed over the whole filtered set, not the page.
type FeedbackStatistics struct {
	Total           int64            `json:"total"`
	CareerBreakdown map[string]int64 `json:"careerBreakdown"`
	ImpactBreakdown map[string]int64 `json:"impactBreakdown"`
}

// FeedbackPage is the result of a filtered, paginated query.
type FeedbackPage struct {
	Feedback   []Feedback         `json:"feedback"`
	Pagination Pagination         `json:"pagination"`
	Statistics FeedbackStatistics `json:"statistics"`
}

// RecentFeedback is the trailing-window summary shown on the feedback wall.
type RecentFeedback struct {
	Feedback []Feedback       `json:"feedback"`
	Stats    map[string]int64 `json:"stats"`
	Total    int              `json:"total"`
}
