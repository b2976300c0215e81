// Package mongo implements storage.Storage on a MongoDB collection.
//
// Documents look like:
//
//	{ _id: ObjectId, name, email, course, createdAt, updatedAt }
//
// A unique index on email enforces uniqueness; an index on course and a
// compound { createdAt: -1, _id: -1 } index serve the list query.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/aanand-mishra/students-api/internal/pagination"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

const collectionName = "students"

type studentDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Course    string             `bson:"course"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d studentDocument) toStudent() types.Student {
	return types.Student{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Course:    d.Course,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// Mongo is the MongoDB-backed store.
type Mongo struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// New connects to uri, selects database and ensures the indexes exist.
func New(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.New: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo.New: ping: %w", err)
	}

	collection := client.Database(database).Collection(collectionName)
	_, err = collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "course", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo.New: create indexes: %w", err)
	}

	return &Mongo{client: client, collection: collection}, nil
}

// Collection exposes the underlying collection for tests.
func (m *Mongo) Collection() *mongo.Collection { return m.collection }

func (m *Mongo) CreateStudent(ctx context.Context, in types.StudentInput) (types.Student, error) {
	// BSON dates have millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := studentDocument{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     storage.NormalizeEmail(in.Email),
		Course:    in.Course,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return types.Student{}, fmt.Errorf("create student: %w", mapError(err))
	}
	return doc.toStudent(), nil
}

func (m *Mongo) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("get student %s: %w", id, storage.ErrNotFound)
	}

	var doc studentDocument
	if err := m.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return types.Student{}, fmt.Errorf("get student %s: %w", id, mapError(err))
	}
	return doc.toStudent(), nil
}

func (m *Mongo) ListStudents(ctx context.Context, filter types.StudentFilter, page pagination.Params) ([]types.Student, int64, error) {
	query := bson.M{}
	if filter.Course != "" {
		// Substring match, not a user-supplied pattern.
		query["course"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Course), Options: "i"}
	}

	total, err := m.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))

	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find students: %w", err)
	}

	var docs []studentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode students: %w", err)
	}

	students := make([]types.Student, 0, len(docs))
	for _, doc := range docs {
		students = append(students, doc.toStudent())
	}
	return students, total, nil
}

func (m *Mongo) UpdateStudentByID(ctx context.Context, id string, patch types.StudentPatch) (types.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("update student %s: %w", id, storage.ErrNotFound)
	}

	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = storage.NormalizeEmail(*patch.Email)
	}
	if patch.Course != nil {
		set["course"] = *patch.Course
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc studentDocument
	err = m.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return types.Student{}, fmt.Errorf("update student %s: %w", id, mapError(err))
	}
	return doc.toStudent(), nil
}

func (m *Mongo) DeleteStudentByID(ctx context.Context, id string) (types.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("delete student %s: %w", id, storage.ErrNotFound)
	}

	var doc studentDocument
	if err := m.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return types.Student{}, fmt.Errorf("delete student %s: %w", id, mapError(err))
	}
	return doc.toStudent(), nil
}

// ValidID accepts 24-character hex ObjectIDs.
func (m *Mongo) ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func mapError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", storage.ErrDuplicateEmail, err)
	}
	return err
}
