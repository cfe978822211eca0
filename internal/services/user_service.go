package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/pinpass/internal/database"
	"github.com/isdelr/pinpass/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or PIN")
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, in models.SignupInput) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	AuthenticateUser(ctx context.Context, email, pin string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	users *mongo.Collection
	now   func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database) *UserService {
	return &UserService{
		users: db.Collection(database.UsersCollection),
		now:   time.Now,
	}
}

// CreateUser stores a new user with a generated ID. Fields are taken as
// submitted apart from surrounding whitespace.
func (s *UserService) CreateUser(ctx context.Context, in models.SignupInput) (models.User, error) {
	user := models.User{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		DOB:       strings.TrimSpace(in.DOB),
		Phone:     strings.TrimSpace(in.Phone),
		PIN:       models.PIN(strings.TrimSpace(in.PIN)),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetUserByEmail retrieves the first user registered with the given email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": strings.TrimSpace(email)})
}

func (s *UserService) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// ListUsers returns every stored user in creation order.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

// AuthenticateUser verifies a user's email and PIN. Both a missing account
// and a wrong PIN are reported as ErrInvalidCredentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, pin string) (models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !user.PIN.Matches(strings.TrimSpace(pin)) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}
