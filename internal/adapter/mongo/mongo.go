// Package mongo implements the domain repositories using MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"accounts/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the collection holding account documents.
const UsersCollection = "users"

// accountDoc is the stored form of an account. lemail carries the lowercased
// email and backs the unique index.
type accountDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	LoweredEmail string             `bson:"lemail"`
	Password     string             `bson:"password"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *accountDoc) account() *domain.Account {
	return &domain.Account{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// AccountRepo implements domain.AccountRepository on a MongoDB collection.
// It's safe to use concurrently from multiple goroutines.
type AccountRepo struct {
	client *mongo.Client
	users  *mongo.Collection
}

var _ domain.AccountRepository = (*AccountRepo)(nil)

// Open connects to MongoDB, pings, and ensures the unique email index.
func Open(ctx context.Context, uri, database string) (*AccountRepo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	r := NewAccountRepo(client, database)
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return r, nil
}

// NewAccountRepo wraps an existing client.
func NewAccountRepo(client *mongo.Client, database string) *AccountRepo {
	return &AccountRepo{
		client: client,
		users:  client.Database(database).Collection(UsersCollection),
	}
}

// Close disconnects the underlying client.
func (r *AccountRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *AccountRepo) ensureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "lemail", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// FindByEmail retrieves an account by email, ignoring case.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, "find by email", bson.M{"lemail": strings.ToLower(email)})
}

// FindByID retrieves an account by its hex ObjectID.
func (r *AccountRepo) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return r.findOne(ctx, "find by id", bson.M{"_id": oid})
}

func (r *AccountRepo) findOne(ctx context.Context, op string, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, repoErr(op, err)
	}
	return doc.account(), nil
}

// List returns all accounts in insertion order.
func (r *AccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	cur, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, repoErr("list", err)
	}
	defer cur.Close(ctx) //nolint:errcheck

	out := make([]domain.Account, 0)
	for cur.Next(ctx) {
		var doc accountDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, repoErr("list", err)
		}
		out = append(out, *doc.account())
	}
	if err := cur.Err(); err != nil {
		return nil, repoErr("list", err)
	}
	return out, nil
}

// Insert creates a new account document.
func (r *AccountRepo) Insert(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := accountDoc{
		ID:           primitive.NewObjectID(),
		Username:     draft.Username,
		Email:        draft.Email,
		LoweredEmail: strings.ToLower(draft.Email),
		Password:     draft.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, repoErr("insert", err)
	}
	return doc.account(), nil
}

// UpdateByID applies a partial update and returns the updated account.
func (r *AccountRepo) UpdateByID(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Email != nil {
		set["email"] = *update.Email
		set["lemail"] = strings.ToLower(*update.Email)
	}

	var doc accountDoc
	err = r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, domain.ErrDuplicateAccount
	}
	if err != nil {
		return nil, repoErr("update", err)
	}
	return doc.account(), nil
}

// DeleteByID removes an account and reports whether a document was deleted.
func (r *AccountRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, repoErr("delete", err)
	}
	return res.DeletedCount > 0, nil
}

func repoErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrRepository, op, err)
}
