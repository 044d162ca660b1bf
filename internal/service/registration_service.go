package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"registration-service/internal/events"
	"registration-service/internal/model"
	"registration-service/internal/repository"
)

type RegistrationInput struct {
	FullName       string
	Email          string
	Password       string
	Phone          string
	ProfilePicture string
}

type RegistrationResult struct {
	UserID int64
}

type RegistrationService interface {
	Register(ctx context.Context, input RegistrationInput) (*RegistrationResult, error)
}

type registrationService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	publisher   events.EventPublisher
	passwords   PasswordEncoder
}

func NewRegistrationService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	pub events.EventPublisher,
	passwords PasswordEncoder,
) RegistrationService {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	if passwords == nil {
		passwords = PlainPasswordEncoder{}
	}

	return &registrationService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		publisher:   pub,
		passwords:   passwords,
	}
}

// FirstName returns the first whitespace-delimited token of fullName.
func FirstName(fullName string) (string, error) {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "", ErrInvalidFullName
	}

	return fields[0], nil
}

// Register creates the user row and then the profile document. The two writes
// are not atomic: if the profile insert fails the user row stays and a
// *ProfileWriteError carrying the new id is returned. Nothing is retried.
func (s *registrationService) Register(ctx context.Context, input RegistrationInput) (*RegistrationResult, error) {
	firstName, err := FirstName(input.FullName)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrEmailAlreadyExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%w: %w", ErrUserWriteFailed, err)
	}

	password, err := s.passwords.Encode(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: encode password: %w", ErrUserWriteFailed, err)
	}

	user := &model.User{
		FirstName: firstName,
		Password:  password,
		Email:     input.Email,
		Phone:     input.Phone,
	}

	user.ID, err = s.userRepo.Create(ctx, user)
	if err != nil {
		// Concurrent registrations can both pass the lookup above; the unique
		// constraint on email decides the winner.
		if isDuplicateEmail(err) {
			return nil, ErrEmailAlreadyExists
		}

		return nil, fmt.Errorf("%w: %w", ErrUserWriteFailed, err)
	}

	profile := &model.Profile{
		UserID:         user.ID,
		ProfilePicture: input.ProfilePicture,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		slog.ErrorContext(ctx, "User created without profile",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)

		if pubErr := s.publisher.PublishProfileWriteFailed(ctx, profile, err.Error()); pubErr != nil {
			slog.WarnContext(ctx, "Failed to publish profile write failure", slog.Int64("user_id", user.ID))
		}

		return nil, &ProfileWriteError{UserID: user.ID, Err: err}
	}

	if err := s.publisher.PublishUserRegistered(ctx, user); err != nil {
		slog.WarnContext(ctx, "Failed to publish user registered event", slog.Int64("user_id", user.ID))
	}

	slog.InfoContext(ctx, "User registered", slog.Int64("user_id", user.ID))

	return &RegistrationResult{UserID: user.ID}, nil
}

func isDuplicateEmail(err error) bool {
	var cErr *repository.ConstraintError

	return errors.As(err, &cErr) && cErr.Kind == repository.ConstraintUnique && cErr.Field == "email"
}
