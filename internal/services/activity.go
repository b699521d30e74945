package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ActivityCollection = "activity_events"

	ActivityPageView            = "page_view"
	ActivityLogin               = "login"
	ActivityRegistered          = "registered"
	ActivityAppointmentBooked   = "appointment_scheduled"
	ActivityAppointmentCanceled = "appointment_cancelled"
	ActivityMessageSent         = "message_sent"
)

// ActivityEvent is one document in the activity_events collection.
type ActivityEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type      string             `bson:"type" json:"type"`
	UserID    string             `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Path      string             `bson:"path,omitempty" json:"path,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty" json:"-"`
	Metadata  map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ActivityLogger writes activity events to MongoDB. A nil logger or nil database
// disables it and every call is a no-op.
type ActivityLogger struct {
	coll    *mongo.Collection
	log     logrus.FieldLogger
	timeout time.Duration
}

func NewActivityLogger(db *mongo.Database, log logrus.FieldLogger) *ActivityLogger {
	a := &ActivityLogger{log: log, timeout: 5 * time.Second}
	if db != nil {
		a.coll = db.Collection(ActivityCollection)
	}
	return a
}

func (a *ActivityLogger) Enabled() bool {
	return a != nil && a.coll != nil
}

// EnsureIndexes creates the (user_id, created_at) and (type, created_at) indexes.
func (a *ActivityLogger) EnsureIndexes(ctx context.Context) error {
	if !a.Enabled() {
		return nil
	}
	_, err := a.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_user_created"),
		},
		{
			Keys:    bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_type_created"),
		},
	})
	return err
}

// Record inserts the event synchronously.
func (a *ActivityLogger) Record(ctx context.Context, ev ActivityEvent) error {
	if !a.Enabled() {
		return nil
	}
	if ev.ID.IsZero() {
		ev.ID = primitive.NewObjectID()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if len(ev.Path) > 500 {
		ev.Path = ev.Path[:500]
	}
	_, err := a.coll.InsertOne(ctx, ev)
	return err
}

// RecordAsync records the event in the background; failures are logged only.
func (a *ActivityLogger) RecordAsync(ev ActivityEvent) {
	if !a.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.Record(ctx, ev); err != nil {
			a.log.WithError(err).WithField("type", ev.Type).Warn("failed to record activity event")
		}
	}()
}
