package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittracker/internal/telemetry/tracing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*MongoRepo)(nil)

// MongoRepo keeps one mongo collection per modality; documents carry the owning user id.
type MongoRepo struct {
	db *mongo.Database
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		db: db,
	}
}

type mongoRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"userId"`
	Situps     *int               `bson:"situps,omitempty"`
	Pushups    *int               `bson:"pushups,omitempty"`
	SitupTime  *int               `bson:"situpTime,omitempty"`
	PushupTime *int               `bson:"pushupTime,omitempty"`
	Timestamp  time.Time          `bson:"timestamp"`
}

func newMongoRecord(record Record) (mongoRecord, error) {
	mr := mongoRecord{
		UserID:    record.UserID,
		Timestamp: record.Timestamp,
	}
	switch e := record.Entry.(type) {
	case Reps:
		mr.Situps, mr.Pushups = &e.Situps, &e.Pushups
	case Times:
		mr.SitupTime, mr.PushupTime = &e.SitupTime, &e.PushupTime
	default:
		return mongoRecord{}, fmt.Errorf("%w: entry empty", ErrInvalidRecord)
	}
	return mr, nil
}

func (mr mongoRecord) toRecord(modality Modality) Record {
	record := Record{
		ID:        mr.ID.Hex(),
		UserID:    mr.UserID,
		Timestamp: mr.Timestamp,
	}
	switch modality {
	case ModalityTimed:
		record.Entry = Times{SitupTime: derefInt(mr.SitupTime), PushupTime: derefInt(mr.PushupTime)}
	default:
		record.Entry = Reps{Situps: derefInt(mr.Situps), Pushups: derefInt(mr.Pushups)}
	}
	return record
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// EnsureIndexes creates the (userId, timestamp desc) index on every modality collection.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	for _, modality := range []Modality{ModalityCount, ModalityTimed} {
		_, err := r.db.Collection(modality.Collection()).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		})
		if err != nil {
			return fmt.Errorf("create index on %s: %w", modality.Collection(), err)
		}
	}
	return nil
}

func (r *MongoRepo) Create(ctx context.Context, record Record) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "mongorepo.records.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", record.UserID))

	if err := record.Validate(); err != nil {
		return "", err
	}

	doc, err := newMongoRecord(record)
	if err != nil {
		return "", err
	}

	res, err := r.db.Collection(record.Modality().Collection()).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert entry: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	span.SetAttributes(attribute.String("record.id", oid.Hex()))
	return oid.Hex(), nil
}

func (r *MongoRepo) List(ctx context.Context, userID string, modality Modality) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "mongorepo.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user_id", userID))
	span.SetAttributes(attribute.String("modality", modality.String()))

	findOpts := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := r.db.Collection(modality.Collection()).Find(ctx, bson.M{"userId": userID}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.toRecord(modality))
	}
	return records, nil
}

func (r *MongoRepo) Delete(ctx context.Context, userID string, modality Modality, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "mongorepo.records.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// not an id this store could have handed out
		return ErrRecordNotFound
	}

	res, err := r.db.Collection(modality.Collection()).DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrRecordNotFound
	}
	return nil
}
