package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/useraccounts/account-api/internal/core/domain"
	"github.com/useraccounts/account-api/internal/core/ports"
)

const collectionUsers = "users"

var _ ports.AccountRepository = (*AccountRepository)(nil)

type AccountRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionUsers), now: time.Now}
}

type accountDocument struct {
	ID           string               `bson:"_id"`
	Username     string               `bson:"username"`
	Email        string               `bson:"email"`
	PasswordHash string               `bson:"password_hash"`
	ProfilePhoto *string              `bson:"profile_photo,omitempty"`
	PhoneToken   *string              `bson:"phone_token,omitempty"`
	PhoneNumber  *string              `bson:"phone_number,omitempty"`
	Verification *domain.Verification `bson:"verification,omitempty"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func (d accountDocument) toDomain() *domain.Account {
	a := &domain.Account{
		ID:           d.ID,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		ProfilePhoto: d.ProfilePhoto,
		PhoneToken:   d.PhoneToken,
		PhoneNumber:  d.PhoneNumber,
	}
	if d.Verification != nil {
		v := *d.Verification
		v.ExpiresAt = v.ExpiresAt.UTC()
		a.Verification = &v
	}
	return a
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// Create inserts the account under a fresh uuid. The unique email index
// rejects duplicates.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC()
	doc := accountDocument{
		ID:           uuid.NewString(),
		Username:     account.Username,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		ProfilePhoto: account.ProfilePhoto,
		PhoneToken:   account.PhoneToken,
		PhoneNumber:  account.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("insert account: %w", domain.ErrAccountExists)
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) Update(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	set := bson.M{"updated_at": r.now().UTC()}
	unset := bson.M{}

	fields := map[string]*string{
		"username":      update.Username,
		"email":         update.Email,
		"password_hash": update.PasswordHash,
		"profile_photo": update.ProfilePhoto,
		"phone_token":   update.PhoneToken,
		"phone_number":  update.PhoneNumber,
	}
	for key, value := range fields {
		if value != nil {
			set[key] = *value
		}
	}
	switch {
	case update.ClearVerification:
		unset["verification"] = ""
	case update.Verification != nil:
		set["verification"] = update.Verification
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": id}, doc, "update account")
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ConsumeVerificationCode matches and unsets the code in one FindOneAndUpdate.
func (r *AccountRepository) ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (*domain.Account, error) {
	filter := bson.M{
		"email":                   email,
		"verification.code":       code,
		"verification.expires_at": bson.M{"$gt": now},
	}
	update := bson.M{
		"$unset": bson.M{"verification": ""},
		"$set":   bson.M{"updated_at": r.now().UTC()},
	}
	return r.findOneAndUpdate(ctx, filter, update, "consume verification code")
}

func (r *AccountRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, op string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc accountDocument
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrAccountNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, fmt.Errorf("%s: %w", op, domain.ErrAccountExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique email index on the users collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("ensure account indexes: %w", err)
	}
	return nil
}
