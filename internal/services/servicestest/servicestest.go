// Package servicestest provides in-memory service implementations for tests.
package servicestest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/isdelr/pinpass/internal/models"
	"github.com/isdelr/pinpass/internal/services"
)

// Users is an in-memory services.UserServiceProvider. Setting Err makes
// every call fail as a storage error would.
type Users struct {
	mu    sync.Mutex
	users []models.User
	seq   int
	Err   error
}

var _ services.UserServiceProvider = (*Users)(nil)

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{}
}

func (u *Users) CreateUser(_ context.Context, in models.SignupInput) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return models.User{}, u.Err
	}
	email := strings.TrimSpace(in.Email)
	for _, existing := range u.users {
		if email != "" && existing.Email == email {
			return models.User{}, services.ErrEmailTaken
		}
	}
	u.seq++
	user := models.User{
		ID:        fmt.Sprintf("u-%d", u.seq),
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		DOB:       strings.TrimSpace(in.DOB),
		Phone:     strings.TrimSpace(in.Phone),
		PIN:       models.PIN(strings.TrimSpace(in.PIN)),
		CreatedAt: time.Now().UTC(),
	}
	u.users = append(u.users, user)
	return user, nil
}

func (u *Users) GetUserByID(_ context.Context, id string) (models.User, error) {
	return u.find(func(user models.User) bool { return user.ID == id })
}

func (u *Users) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	email = strings.TrimSpace(email)
	return u.find(func(user models.User) bool { return user.Email == email })
}

func (u *Users) find(match func(models.User) bool) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return models.User{}, u.Err
	}
	for _, user := range u.users {
		if match(user) {
			return user, nil
		}
	}
	return models.User{}, services.ErrUserNotFound
}

func (u *Users) ListUsers(context.Context) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	return append([]models.User{}, u.users...), nil
}

func (u *Users) AuthenticateUser(ctx context.Context, email, pin string) (models.User, error) {
	user, err := u.GetUserByEmail(ctx, email)
	if errors.Is(err, services.ErrUserNotFound) || (err == nil && !user.PIN.Matches(strings.TrimSpace(pin))) {
		return models.User{}, services.ErrInvalidCredentials
	}
	return user, err
}

// Remove deletes a user, simulating an account removed out of band.
func (u *Users) Remove(id string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, user := range u.users {
		if user.ID == id {
			u.users = append(u.users[:i], u.users[i+1:]...)
			return
		}
	}
}

// Events is an in-memory services.EventServiceProvider.
type Events struct {
	mu     sync.Mutex
	events []models.Event
	Err    error
}

var _ services.EventServiceProvider = (*Events)(nil)

// NewEvents returns an empty log.
func NewEvents() *Events {
	return &Events{}
}

func (e *Events) CreateEvent(_ context.Context, eventType, level, message string, userID *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.events = append(e.events, models.Event{
		ID:        fmt.Sprintf("e-%d", len(e.events)+1),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// GetRecentEvents returns the newest events first.
func (e *Events) GetRecentEvents(_ context.Context, limit int) ([]models.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return nil, e.Err
	}
	out := []models.Event{}
	for i := len(e.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, e.events[i])
	}
	return out, nil
}

// Types lists the recorded event types in order.
func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]string, 0, len(e.events))
	for _, ev := range e.events {
		types = append(types, ev.Type)
	}
	return types
}
