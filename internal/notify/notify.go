package notify

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("email dispatcher not configured")
	ErrDelivery      = errors.New("email delivery failed")
)

// PINRecovery is the payload of a PIN reminder email.
type PINRecovery struct {
	Email      string
	PIN        string
	SenderName string
}

// Dispatcher sends transactional emails.
type Dispatcher interface {
	SendPINRecovery(ctx context.Context, msg PINRecovery) error
}
