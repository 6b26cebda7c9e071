package repository

import (
	"context"
	"time"

	"booking-service/data"
	"booking-service/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AvailabilityStore abstracts the ledger rows so the services are testable
// without a live database.
type AvailabilityStore interface {
	Insert(availability *data.Availability, ctx context.Context) error
	GetByID(id primitive.ObjectID, ctx context.Context) (*data.Availability, error)
	GetByRoomAndDate(roomID string, date time.Time, ctx context.Context) (*data.Availability, error)
	GetByRoomAndRange(roomID string, startDate, endDate time.Time, ctx context.Context) ([]*data.Availability, error)
	// CompareAndSetUnits applies a conditional update guarded by the current
	// available_units value. It reports false when another writer got there
	// first, which callers handle by re-reading and retrying.
	CompareAndSetUnits(roomID string, date time.Time, currentUnits, newUnits int, ctx context.Context) (bool, error)
	Update(id primitive.ObjectID, update *data.UpdateAvailability, ctx context.Context) (*data.Availability, error)
	Delete(id primitive.ObjectID, ctx context.Context) error
}

type MongoAvailabilityStore struct {
	collection *mongo.Collection
}

func NewMongoAvailabilityStore(collection *mongo.Collection, ctx context.Context) (*MongoAvailabilityStore, error) {
	// One row per (room, date); the unique index is what turns a racing
	// double-create into a clean AlreadyExists.
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, err
	}
	return &MongoAvailabilityStore{collection: collection}, nil
}

func (s *MongoAvailabilityStore) Insert(availability *data.Availability, ctx context.Context) error {
	availability.ID = primitive.NewObjectID()
	_, err := s.collection.InsertOne(ctx, availability)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrAvailabilityExists
	}
	return err
}

func (s *MongoAvailabilityStore) GetByID(id primitive.ObjectID, ctx context.Context) (*data.Availability, error) {
	var availability data.Availability
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&availability)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

func (s *MongoAvailabilityStore) GetByRoomAndDate(roomID string, date time.Time, ctx context.Context) (*data.Availability, error) {
	filter := bson.M{
		"room_id": roomID,
		"date":    primitive.NewDateTimeFromTime(data.NormalizeDate(date)),
	}
	var availability data.Availability
	err := s.collection.FindOne(ctx, filter).Decode(&availability)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

func (s *MongoAvailabilityStore) GetByRoomAndRange(roomID string, startDate, endDate time.Time, ctx context.Context) ([]*data.Availability, error) {
	filter := bson.M{
		"room_id": roomID,
		"date": bson.M{
			"$gte": primitive.NewDateTimeFromTime(data.NormalizeDate(startDate)),
			"$lte": primitive.NewDateTimeFromTime(data.NormalizeDate(endDate)),
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var availabilities []*data.Availability
	if err = cursor.All(ctx, &availabilities); err != nil {
		return nil, err
	}
	return availabilities, nil
}

func (s *MongoAvailabilityStore) CompareAndSetUnits(roomID string, date time.Time, currentUnits, newUnits int, ctx context.Context) (bool, error) {
	filter := bson.M{
		"room_id":         roomID,
		"date":            primitive.NewDateTimeFromTime(data.NormalizeDate(date)),
		"available_units": currentUnits,
	}
	update := bson.M{
		"$set": bson.M{"available_units": newUnits},
	}
	result, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (s *MongoAvailabilityStore) Update(id primitive.ObjectID, update *data.UpdateAvailability, ctx context.Context) (*data.Availability, error) {
	set := bson.M{}
	if update.AvailableUnits != nil {
		set["available_units"] = *update.AvailableUnits
	}
	if update.TotalUnits != nil {
		set["total_units"] = *update.TotalUnits
	}
	if update.BasePrice != nil {
		set["base_price"] = *update.BasePrice
	}
	if len(set) == 0 {
		return s.GetByID(id, ctx)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var availability data.Availability
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&availability)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

func (s *MongoAvailabilityStore) Delete(id primitive.ObjectID, ctx context.Context) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrAvailabilityNotFound
	}
	return nil
}
