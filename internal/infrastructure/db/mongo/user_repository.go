package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rinkside/pickup-api/internal/core/domain"
	"github.com/rinkside/pickup-api/internal/core/ports"
)

const userCollection = "users"

// UserRepository is the MongoDB-backed identity store.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique indexes registration depends on.
// The unique email index is what turns a concurrent duplicate Create
// into domain.ErrUserExists instead of a second account.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty"`
	UserName               string             `bson:"username"`
	Email                  string             `bson:"email"`
	PasswordHash           string             `bson:"password_hash"`
	FirstName              string             `bson:"first_name,omitempty"`
	LastName               string             `bson:"last_name,omitempty"`
	Roles                  []string           `bson:"roles"`
	Active                 bool               `bson:"active"`
	EmailConfirmed         bool               `bson:"email_confirmed"`
	Preferred              bool               `bson:"preferred"`
	PreferredPlus          bool               `bson:"preferred_plus"`
	Rating                 float64            `bson:"rating"`
	NotificationPreference int                `bson:"notification_preference"`
	PayPalEmail            string             `bson:"paypal_email,omitempty"`
	VenmoAccount           string             `bson:"venmo_account,omitempty"`
	MobileLast4            string             `bson:"mobile_last4,omitempty"`
	EmergencyName          string             `bson:"emergency_name,omitempty"`
	EmergencyPhone         string             `bson:"emergency_phone,omitempty"`
	CreatedAt              int64              `bson:"created_at"`
	UpdatedAt              int64              `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := toMongoUser(user)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUserName(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC().Unix(),
	})
}

func (r *UserRepository) MarkEmailConfirmed(ctx context.Context, email string) error {
	return r.updateOne(ctx, bson.M{"email": email}, bson.M{
		"email_confirmed": true,
		"active":          true,
		"updated_at":      time.Now().UTC().Unix(),
	})
}

func (r *UserRepository) SaveProfile(ctx context.Context, id string, input ports.ProfileInput) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	return r.updateOne(ctx, bson.M{"_id": oid}, bson.M{
		"first_name":              input.FirstName,
		"last_name":               input.LastName,
		"notification_preference": input.NotificationPreference,
		"paypal_email":            input.PayPalEmail,
		"venmo_account":           input.VenmoAccount,
		"mobile_last4":            input.MobileLast4,
		"emergency_name":          input.EmergencyName,
		"emergency_phone":         input.EmergencyPhone,
		"active":                  input.Active,
		"preferred":               input.Preferred,
		"updated_at":              time.Now().UTC().Unix(),
	})
}

func (r *UserRepository) ListActive(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *toDomainUser(&mu))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomainUser(&mu), nil
}

func (r *UserRepository) updateOne(ctx context.Context, filter, set bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		UserName:               u.UserName,
		Email:                  u.Email,
		PasswordHash:           u.PasswordHash,
		FirstName:              u.FirstName,
		LastName:               u.LastName,
		Roles:                  u.Roles,
		Active:                 u.Active,
		EmailConfirmed:         u.EmailConfirmed,
		Preferred:              u.Preferred,
		PreferredPlus:          u.PreferredPlus,
		Rating:                 u.Rating,
		NotificationPreference: u.NotificationPreference,
		PayPalEmail:            u.PayPalEmail,
		VenmoAccount:           u.VenmoAccount,
		MobileLast4:            u.MobileLast4,
		EmergencyName:          u.EmergencyName,
		EmergencyPhone:         u.EmergencyPhone,
		CreatedAt:              u.CreatedAt.Unix(),
		UpdatedAt:              u.UpdatedAt.Unix(),
	}
}

func toDomainUser(mu *mongoUser) *domain.User {
	return &domain.User{
		ID:                     mu.ID.Hex(),
		UserName:               mu.UserName,
		Email:                  mu.Email,
		PasswordHash:           mu.PasswordHash,
		FirstName:              mu.FirstName,
		LastName:               mu.LastName,
		Roles:                  mu.Roles,
		Active:                 mu.Active,
		EmailConfirmed:         mu.EmailConfirmed,
		Preferred:              mu.Preferred,
		PreferredPlus:          mu.PreferredPlus,
		Rating:                 mu.Rating,
		NotificationPreference: mu.NotificationPreference,
		PayPalEmail:            mu.PayPalEmail,
		VenmoAccount:           mu.VenmoAccount,
		MobileLast4:            mu.MobileLast4,
		EmergencyName:          mu.EmergencyName,
		EmergencyPhone:         mu.EmergencyPhone,
		CreatedAt:              unixToTime(mu.CreatedAt),
		UpdatedAt:              unixToTime(mu.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
