package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tripplanner/backend/internal/domain"
)

// TripsCollection is the MongoDB collection holding trip documents.
const TripsCollection = "trips"

// tripDocument is the stored shape of a trip.
type tripDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Destination string             `bson:"destination"`
	Days        int                `bson:"days"`
	Budget      float64            `bson:"budget"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d tripDocument) toDomain() domain.Trip {
	return domain.Trip{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Destination: d.Destination,
		Days:        d.Days,
		Budget:      d.Budget,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// mongoTripRepo is the MongoDB implementation of TripRepo.
type mongoTripRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoTripRepo constructs a TripRepo backed by the given collection.
func NewMongoTripRepo(coll *mongo.Collection) TripRepo {
	return &mongoTripRepo{coll: coll, now: time.Now}
}

// EnsureMongoIndexes creates the compound text index over title and destination
// and the createdAt index used by the listing sort. Existing indexes are left alone.
func EnsureMongoIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "destination", Value: "text"}},
			Options: options.Index().SetName("title_text_destination_text"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_-1"),
		},
	})
	if err != nil {
		return fmt.Errorf("repo.EnsureMongoIndexes: %w", err)
	}
	return nil
}

// Create inserts a new document. The id is generated client-side and createdAt
// is truncated to the millisecond precision MongoDB stores.
func (r *mongoTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	doc := tripDocument{
		ID:          primitive.NewObjectID(),
		Title:       trip.Title,
		Destination: trip.Destination,
		Days:        trip.Days,
		Budget:      trip.Budget,
		CreatedAt:   r.now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.MongoTripRepo.Create: %w", err)
	}
	return doc.toDomain(), nil
}

// GetByID finds a document by its hex ObjectID.
func (r *mongoTripRepo) GetByID(ctx context.Context, id string) (domain.Trip, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.MongoTripRepo.GetByID: %w", domain.ErrNotFound)
	}

	var doc tripDocument
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.MongoTripRepo.GetByID: %w", mapMongoErr(err))
	}
	return doc.toDomain(), nil
}

// List returns one page of matching documents, newest first.
func (r *mongoTripRepo) List(ctx context.Context, f domain.TripFilter, p domain.PaginationParams) ([]domain.Trip, error) {
	opts := options.Find().
		SetSort(mongoSort).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))

	cur, err := r.coll.Find(ctx, MongoFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("repo.MongoTripRepo.List: %w", err)
	}

	var docs []tripDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("repo.MongoTripRepo.List: decode: %w", err)
	}

	trips := make([]domain.Trip, len(docs))
	for i, d := range docs {
		trips[i] = d.toDomain()
	}
	return trips, nil
}

// Count returns the number of documents matching f.
func (r *mongoTripRepo) Count(ctx context.Context, f domain.TripFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, MongoFilter(f))
	if err != nil {
		return 0, fmt.Errorf("repo.MongoTripRepo.Count: %w", err)
	}
	return n, nil
}

// Update $sets the present fields and returns the document after the write.
// An input with no fields behaves like GetByID.
func (r *mongoTripRepo) Update(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.MongoTripRepo.Update: %w", domain.ErrNotFound)
	}

	set := bson.D{}
	if in.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *in.Title})
	}
	if in.Destination != nil {
		set = append(set, bson.E{Key: "destination", Value: *in.Destination})
	}
	if in.Days != nil {
		set = append(set, bson.E{Key: "days", Value: *in.Days})
	}
	if in.Budget != nil {
		set = append(set, bson.E{Key: "budget", Value: *in.Budget})
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc tripDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.MongoTripRepo.Update: %w", mapMongoErr(err))
	}
	return doc.toDomain(), nil
}

// mapMongoErr converts "no document" into domain.ErrNotFound.
func mapMongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}
