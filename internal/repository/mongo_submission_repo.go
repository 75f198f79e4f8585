package repository

import (
	"cardiostent/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// submissionDoc keeps the ObjectID next to the record; it orders the collection by insertion
type submissionDoc struct {
	OID              primitive.ObjectID `bson:"_id"`
	model.Submission `bson:",inline"`
}

type mongoSubmissionRepo struct {
	collection *mongo.Collection
}

// NewMongoSubmissionRepo creates a record store backed by the submissions collection
func NewMongoSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &mongoSubmissionRepo{
		collection: db.Collection("submissions"),
	}
}

// EnsureSubmissionIndexes creates the unique index on the record id
func EnsureSubmissionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("submissions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	if err != nil {
		return storageErr("index", err)
	}
	return nil
}

func (r *mongoSubmissionRepo) Append(ctx context.Context, s *model.Submission) error {
	doc := submissionDoc{
		OID:        primitive.NewObjectID(),
		Submission: *s,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return storageErr("insert", err)
	}
	return nil
}

func (r *mongoSubmissionRepo) LoadAll(ctx context.Context) ([]*model.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr("find", err)
	}
	defer cursor.Close(ctx)

	var docs []submissionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storageErr("decode", err)
	}

	records := make([]*model.Submission, 0, len(docs))
	for i := range docs {
		s := docs[i].Submission
		records = append(records, &s)
	}
	fillLegacyIDs(records)
	return records, nil
}

func (r *mongoSubmissionRepo) FindByID(ctx context.Context, id string) (*model.Submission, error) {
	var doc submissionDoc
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		if isLegacyID(id) {
			return r.findLegacy(ctx, id)
		}
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("find", err)
	}
	return &doc.Submission, nil
}

// findLegacy resolves a position-derived id the way LoadAll assigned it
func (r *mongoSubmissionRepo) findLegacy(ctx context.Context, id string) (*model.Submission, error) {
	records, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return findLoaded(records, id), nil
}

func (r *mongoSubmissionRepo) Count(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, storageErr("count", err)
	}
	return int(n), nil
}
