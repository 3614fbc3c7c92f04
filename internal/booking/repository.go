package booking

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sheisgracious/mindwell/internal/schedule"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, set bson.M) (*Session, error)
	ReservedIntervals(ctx context.Context, providerID, date string) ([]schedule.Interval, error)
	ListUpcomingByPatient(ctx context.Context, patientID, fromDate string) ([]Session, error)
	ListUpcomingByProvider(ctx context.Context, providerID, fromDate string) ([]Session, error)
	ListPastByPatient(ctx context.Context, patientID, beforeDate string, limit int64) ([]Session, error)
	// ListByProviderOnDate returns the provider's scheduled sessions for one
	// date, ordered by time. Completed and cancelled sessions are excluded.
	ListByProviderOnDate(ctx context.Context, providerID, date string) ([]Session, error)
	ListByPlan(ctx context.Context, planID string) ([]Session, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, session *Session) error {
	if session.ID == "" {
		session.ID = primitive.NewObjectID().Hex()
	}
	session.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, session)
	return err
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*Session, error) {
	var session Session
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (*Session, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var session Session
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ReservedIntervals returns the minute ranges of every scheduled session the
// provider has on the given date. Cancelled and completed sessions free their
// slot.
func (r *MongoRepository) ReservedIntervals(ctx context.Context, providerID, date string) ([]schedule.Interval, error) {
	cur, err := r.col.Find(ctx, bson.M{
		"provider_id":  providerID,
		"session_date": date,
		"status":       StatusScheduled,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	intervals := []schedule.Interval{}
	for cur.Next(ctx) {
		var session Session
		if err := cur.Decode(&session); err != nil {
			return nil, err
		}
		start, err := schedule.ParseClockToMinutes(session.SessionTime)
		if err != nil {
			continue
		}
		intervals = append(intervals, schedule.Interval{Start: start, End: start + session.DurationMinutes})
	}
	return intervals, cur.Err()
}

func (r *MongoRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Session, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	sessions := []Session{}
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *MongoRepository) ListUpcomingByPatient(ctx context.Context, patientID, fromDate string) ([]Session, error) {
	return r.list(ctx,
		bson.M{
			"patient_id":   patientID,
			"status":       StatusScheduled,
			"session_date": bson.M{"$gte": fromDate},
		},
		options.Find().SetSort(bson.D{{Key: "session_date", Value: 1}, {Key: "session_time", Value: 1}}),
	)
}

func (r *MongoRepository) ListUpcomingByProvider(ctx context.Context, providerID, fromDate string) ([]Session, error) {
	return r.list(ctx,
		bson.M{
			"provider_id":  providerID,
			"status":       StatusScheduled,
			"session_date": bson.M{"$gte": fromDate},
		},
		options.Find().SetSort(bson.D{{Key: "session_date", Value: 1}, {Key: "session_time", Value: 1}}),
	)
}

func (r *MongoRepository) ListPastByPatient(ctx context.Context, patientID, beforeDate string, limit int64) ([]Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "session_date", Value: -1}, {Key: "session_time", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}
	return r.list(ctx,
		bson.M{
			"patient_id": patientID,
			"status":     bson.M{"$in": []string{StatusCompleted, StatusCancelled, StatusNoShow}},
		},
		opts,
	)
}

func (r *MongoRepository) ListByProviderOnDate(ctx context.Context, providerID, date string) ([]Session, error) {
	return r.list(ctx,
		bson.M{"provider_id": providerID, "session_date": date, "status": StatusScheduled},
		options.Find().SetSort(bson.D{{Key: "session_time", Value: 1}}),
	)
}

func (r *MongoRepository) ListByPlan(ctx context.Context, planID string) ([]Session, error) {
	return r.list(ctx,
		bson.M{"plan_id": planID},
		options.Find().SetSort(bson.D{{Key: "session_date", Value: -1}, {Key: "session_time", Value: -1}}),
	)
}
