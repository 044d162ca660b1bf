package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"registration-service/internal/model"
)

const (
	SubjectUserRegistered     = "user.registered"
	SubjectProfileWriteFailed = "user.profile_write_failed"
)

type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *model.User) error
	PublishProfileWriteFailed(ctx context.Context, profile *model.Profile, reason string) error
	Close()
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL, nats.Name("registration-service"))

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type UserRegisteredEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  string    `json:"event_type"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProfileWriteFailedEvent is emitted when a user row was committed but its
// profile document was not. A reconciler can consume it to backfill or clean
// up; none runs inside this service.
type ProfileWriteFailedEvent struct {
	EventID        uuid.UUID `json:"event_id"`
	EventType      string    `json:"event_type"`
	UserID         int64     `json:"user_id"`
	ProfilePicture string    `json:"profile_picture"`
	Reason         string    `json:"reason"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func NewUserRegisteredEvent(user *model.User) UserRegisteredEvent {
	return UserRegisteredEvent{
		EventID:    uuid.New(),
		EventType:  SubjectUserRegistered,
		UserID:     user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		OccurredAt: time.Now().UTC(),
	}
}

func NewProfileWriteFailedEvent(profile *model.Profile, reason string) ProfileWriteFailedEvent {
	return ProfileWriteFailedEvent{
		EventID:        uuid.New(),
		EventType:      SubjectProfileWriteFailed,
		UserID:         profile.UserID,
		ProfilePicture: profile.ProfilePicture,
		Reason:         reason,
		OccurredAt:     time.Now().UTC(),
	}
}

func (p *NatsPublisher) PublishUserRegistered(ctx context.Context, user *model.User) error {
	return p.publish(ctx, SubjectUserRegistered, NewUserRegisteredEvent(user))
}

func (p *NatsPublisher) PublishProfileWriteFailed(ctx context.Context, profile *model.Profile, reason string) error {
	return p.publish(ctx, SubjectProfileWriteFailed, NewProfileWriteFailedEvent(profile, reason))
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, event any) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		slog.ErrorContext(ctx, "Error marshalling event JSON", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	err = p.conn.Publish(subject, eventJSON)

	if err != nil {
		slog.ErrorContext(ctx, "Error publishing to NATS", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	slog.InfoContext(ctx, "Published event to NATS", slog.String("subject", subject))

	return nil
}

// Close flushes pending messages before closing the connection.
func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		slog.Error("Error draining NATS connection", slog.String("error", err.Error()))
	}
}

// NoopPublisher is used when no NATS_URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(context.Context, *model.User) error { return nil }

func (NoopPublisher) PublishProfileWriteFailed(context.Context, *model.Profile, string) error {
	return nil
}

func (NoopPublisher) Close() {}
