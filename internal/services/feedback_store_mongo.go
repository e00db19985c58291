package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/clima-backend/internal/models"
)

var _ FeedbackStore = (*MongoFeedbackStore)(nil)

// newestFirst orders by timestamp, then by _id so records sharing a
// timestamp come back newest insert first.
var newestFirst = bson.D{
	{Key: "timestamp", Value: -1},
	{Key: "_id", Value: -1},
}

// MongoFeedbackStore keeps feedback in a MongoDB collection.
type MongoFeedbackStore struct {
	col   *mongo.Collection
	clock clockwork.Clock
}

// NewMongoFeedbackStore returns a store backed by db's feedback collection.
func NewMongoFeedbackStore(db *mongo.Database, clock clockwork.Clock) *MongoFeedbackStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MongoFeedbackStore{
		col:   db.Collection(FeedbackCollection),
		clock: clock,
	}
}

// EnsureIndexes configures indexes for the feedback collection.
// Called on startup from main after Mongo has connected.
func (s *MongoFeedbackStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "career", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_career_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "impact", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_impact_timestamp"),
		},
	}

	if _, err := s.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create feedback indexes: %w", err)
	}
	return nil
}

func (s *MongoFeedbackStore) Insert(ctx context.Context, record *models.Feedback) (primitive.ObjectID, error) {
	if err := ValidateFeedback(record); err != nil {
		return primitive.NilObjectID, err
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = s.clock.Now()
	}
	// BSON dates carry millisecond precision.
	record.Timestamp = record.Timestamp.UTC().Truncate(time.Millisecond)
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	if _, err := s.col.InsertOne(ctx, record); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert feedback: %w", err)
	}
	return record.ID, nil
}

func (s *MongoFeedbackStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Feedback, error) {
	var rec models.Feedback
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find feedback %s: %w", id.Hex(), err)
	}
	return &rec, nil
}

func (s *MongoFeedbackStore) ListAll(ctx context.Context) ([]models.Feedback, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
}

func (s *MongoFeedbackStore) ListSince(ctx context.Context, since time.Time) ([]models.Feedback, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": since.UTC()}}
	return s.find(ctx, filter, options.Find().SetSort(newestFirst))
}

// ListFiltered returns every record matching f, newest first.
func (s *MongoFeedbackStore) ListFiltered(ctx context.Context, f models.FeedbackFilter) ([]models.Feedback, error) {
	return s.find(ctx, BuildFeedbackFilter(f), options.Find().SetSort(newestFirst))
}

// Query returns one page of the filtered set plus statistics over the whole
// filtered set. Breakdowns are grouped by the database.
func (s *MongoFeedbackStore) Query(ctx context.Context, f models.FeedbackFilter, page, limit int) (*models.FeedbackPage, error) {
	page, limit = NormalizePage(page, limit)
	filter := BuildFeedbackFilter(f)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(PageSkip(page, limit))).
		SetLimit(int64(limit))
	records, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	stats, err := s.breakdowns(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats.Total = total

	return &models.FeedbackPage{
		Feedback: records,
		Pagination: models.Pagination{
			CurrentPage: page,
			TotalPages:  TotalPages(total, limit),
			TotalCount:  total,
			Limit:       limit,
		},
		Statistics: stats,
	}, nil
}

type groupCount struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

type breakdownFacets struct {
	Career []groupCount `bson:"career"`
	Impact []groupCount `bson:"impact"`
}

func groupBy(field string) bson.A {
	return bson.A{
		bson.M{"$group": bson.M{
			"_id":   bson.M{"$ifNull": bson.A{"$" + field, ""}},
			"count": bson.M{"$sum": 1},
		}},
	}
}

func (s *MongoFeedbackStore) breakdowns(ctx context.Context, filter bson.M) (models.FeedbackStatistics, error) {
	stats := newStatistics()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$facet", Value: bson.M{
			"career": groupBy("career"),
			"impact": groupBy("impact"),
		}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return stats, fmt.Errorf("aggregate feedback: %w", err)
	}
	defer cur.Close(ctx)

	var facets []breakdownFacets
	if err := cur.All(ctx, &facets); err != nil {
		return stats, fmt.Errorf("decode feedback breakdowns: %w", err)
	}
	if len(facets) == 0 {
		return stats, nil
	}

	for _, g := range facets[0].Career {
		stats.CareerBreakdown[breakdownKey(g.Key)] += g.Count
	}
	for _, g := range facets[0].Impact {
		stats.ImpactBreakdown[breakdownKey(g.Key)] += g.Count
	}
	return stats, nil
}

func (s *MongoFeedbackStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Feedback, error) {
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	defer cur.Close(ctx)

	records := []models.Feedback{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return records, nil
}
