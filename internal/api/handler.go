package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"registration-service/internal/repository"
	"registration-service/internal/service"
)

type RegistrationHandler struct {
	registrationService service.RegistrationService
	validate            *validator.Validate
	requestTimeout      time.Duration
}

func NewRegistrationHandler(registrationService service.RegistrationService, requestTimeout time.Duration) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		validate:            validator.New(),
		requestTimeout:      requestTimeout,
	}
}

type RegisterRequest struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required"`
	Password       string `json:"password" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	ProfilePicture string `json:"profile_picture" validate:"required"`
}

type RegisterResponse struct {
	UserID int64 `json:"user_id"`
}

func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var request RegisterRequest

	if err := c.BodyParser(&request); err != nil {
		registrationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		registrationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	ctx := c.UserContext()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	result, err := h.registrationService.Register(ctx, service.RegistrationInput{
		FullName:       request.FullName,
		Email:          request.Email,
		Password:       request.Password,
		Phone:          request.Phone,
		ProfilePicture: request.ProfilePicture,
	})

	if err != nil {
		return h.registerError(c, ctx, err)
	}

	registrationsTotal.WithLabelValues(outcomeCreated).Inc()

	return c.Status(fiber.StatusCreated).JSON(RegisterResponse{UserID: result.UserID})
}

// registerError maps workflow errors to responses. Store error text stays in
// the server log.
func (h *RegistrationHandler) registerError(c *fiber.Ctx, ctx context.Context, err error) error {
	var profileErr *service.ProfileWriteError

	switch {
	case errors.Is(err, service.ErrInvalidFullName):
		registrationsTotal.WithLabelValues(outcomeInvalid).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})

	case errors.Is(err, service.ErrEmailAlreadyExists):
		registrationsTotal.WithLabelValues(outcomeDuplicate).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already exists"})

	case errors.As(err, &profileErr):
		registrationsTotal.WithLabelValues(outcomeProfileFailed).Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "User created but profile picture could not be saved",
			"user_id": profileErr.UserID,
		})

	case errors.Is(err, repository.ErrStoreUnavailable):
		slog.ErrorContext(ctx, "Registration failed", slog.String("error", err.Error()))
		registrationsTotal.WithLabelValues(outcomeStoreFailed).Inc()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Service temporarily unavailable"})

	default:
		slog.ErrorContext(ctx, "Registration failed", slog.String("error", err.Error()))
		registrationsTotal.WithLabelValues(outcomeStoreFailed).Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
