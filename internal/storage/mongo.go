package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"flighttrack/internal/models"
	"flighttrack/internal/structures"
)

// MongoStore keeps active reports and archives in two collections.
// Mongo stores instants with millisecond precision.
type MongoStore struct {
	client  *mongo.Client
	active  *mongo.Collection
	archive *mongo.Collection
}

// OpenMongo connects, pings the primary and makes sure the query indexes exist.
func OpenMongo(ctx context.Context, cfg structures.MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:  client,
		active:  db.Collection(cfg.ActiveCollection),
		archive: db.Collection(cfg.ArchiveCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.active.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "flightId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = s.archive.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "flightId", Value: 1}, {Key: "logged_at", Value: -1}},
	})
	return err
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// latestFilter selects the reports of a flight, optionally bounded by atOrBefore.
func latestFilter(flightID string, atOrBefore *time.Time) bson.M {
	filter := bson.M{"flightId": flightID}
	if atOrBefore != nil {
		filter["timestamp"] = bson.M{"$lte": atOrBefore.UTC()}
	}
	return filter
}

// trackSort orders by timestamp then _id, which breaks equal timestamps by insertion.
func trackSort(direction int) bson.D {
	return bson.D{{Key: "timestamp", Value: direction}, {Key: "_id", Value: direction}}
}

func (s *MongoStore) Append(ctx context.Context, report *models.PositionReport) error {
	doc := *report
	doc.Timestamp = doc.Timestamp.UTC()
	if _, err := s.active.InsertOne(ctx, doc); err != nil {
		return storageErr("insert position report", err)
	}
	return nil
}

func (s *MongoStore) Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error) {
	var r models.PositionReport
	err := s.active.FindOne(ctx, latestFilter(flightID, atOrBefore), options.FindOne().SetSort(trackSort(-1))).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("query latest position", err)
	}
	r.Timestamp = r.Timestamp.UTC()
	return &r, nil
}

func (s *MongoStore) AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error) {
	cursor, err := s.active.Find(ctx, latestFilter(flightID, nil), options.Find().SetSort(trackSort(1)))
	if err != nil {
		return nil, storageErr("query positions", err)
	}
	var reports []*models.PositionReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, storageErr("decode positions", err)
	}
	for _, r := range reports {
		r.Timestamp = r.Timestamp.UTC()
	}
	return reports, nil
}

func (s *MongoStore) Clear(ctx context.Context, flightID string) error {
	if _, err := s.active.DeleteMany(ctx, bson.M{"flightId": flightID}); err != nil {
		return storageErr("delete positions", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, flight *models.ArchivedFlight) error {
	if _, err := s.archive.InsertOne(ctx, flight); err != nil {
		return storageErr("insert flight log", err)
	}
	return nil
}

func (s *MongoStore) FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	var a models.ArchivedFlight
	opts := options.FindOne().SetSort(bson.D{{Key: "logged_at", Value: -1}, {Key: "_id", Value: -1}})
	err := s.archive.FindOne(ctx, bson.M{"flightId": flightID}, opts).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("query flight log", err)
	}
	a.DepartureTime = a.DepartureTime.UTC()
	a.ArrivalTime = a.ArrivalTime.UTC()
	a.LoggedAt = a.LoggedAt.UTC()
	for i := range a.Path {
		a.Path[i].Ts = a.Path[i].Ts.UTC()
	}
	return &a, nil
}
