package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registration-service/internal/api"
	"registration-service/internal/repository"
	"registration-service/internal/service"
)

type fakeRegistrationService struct {
	calls    int
	lastIn   service.RegistrationInput
	deadline bool
	result   *service.RegistrationResult
	err      error
}

func (f *fakeRegistrationService) Register(ctx context.Context, input service.RegistrationInput) (*service.RegistrationResult, error) {
	f.calls++
	f.lastIn = input
	_, f.deadline = ctx.Deadline()
	return f.result, f.err
}

const janeBody = `{"full_name":"Jane Doe","email":"jane@example.com","password":"secret","phone":"5551234","profile_picture":"http://img/pic.png"}`

func newTestApp(svc service.RegistrationService, checks map[string]api.Pinger) *fiber.App {
	return api.NewApp(
		"registration-service",
		api.NewRegistrationHandler(svc, 5*time.Second),
		api.NewHealthHandler("registration-service", checks),
	)
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return resp.StatusCode, decoded
}

func TestRegister_Created(t *testing.T) {
	svc := &fakeRegistrationService{result: &service.RegistrationResult{UserID: 42}}
	app := newTestApp(svc, nil)

	status, body := doRequest(t, app, http.MethodPost, "/register/", janeBody)
	require.Equal(t, http.StatusCreated, status)
	require.EqualValues(t, 42, body["user_id"])

	require.Equal(t, 1, svc.calls)
	assert.True(t, svc.deadline)
	assert.Equal(t, service.RegistrationInput{
		FullName:       "Jane Doe",
		Email:          "jane@example.com",
		Password:       "secret",
		Phone:          "5551234",
		ProfilePicture: "http://img/pic.png",
	}, svc.lastIn)
}

func TestRegister_WithoutTrailingSlash(t *testing.T) {
	svc := &fakeRegistrationService{result: &service.RegistrationResult{UserID: 1}}
	app := newTestApp(svc, nil)

	status, _ := doRequest(t, app, http.MethodPost, "/register", janeBody)
	require.Equal(t, http.StatusCreated, status)
}

func TestRegister_InvalidJSON(t *testing.T) {
	svc := &fakeRegistrationService{}
	app := newTestApp(svc, nil)

	status, body := doRequest(t, app, http.MethodPost, "/register/", `{"full_name":`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "Cannot parse JSON", body["error"])
	require.Zero(t, svc.calls)
}

func TestRegister_MissingFields(t *testing.T) {
	tests := map[string]string{
		"full_name":       `{"email":"jane@example.com","password":"secret","phone":"5551234","profile_picture":"p"}`,
		"email":           `{"full_name":"Jane Doe","password":"secret","phone":"5551234","profile_picture":"p"}`,
		"password":        `{"full_name":"Jane Doe","email":"jane@example.com","password":"","phone":"5551234","profile_picture":"p"}`,
		"phone":           `{"full_name":"Jane Doe","email":"jane@example.com","password":"secret","profile_picture":"p"}`,
		"profile_picture": `{"full_name":"Jane Doe","email":"jane@example.com","password":"secret","phone":"5551234"}`,
	}

	for field, payload := range tests {
		t.Run(field, func(t *testing.T) {
			svc := &fakeRegistrationService{}
			app := newTestApp(svc, nil)

			status, body := doRequest(t, app, http.MethodPost, "/register/", payload)
			require.Equal(t, http.StatusBadRequest, status)
			require.Equal(t, "Invalid input", body["error"])
			require.Zero(t, svc.calls)
		})
	}
}

func TestRegister_ErrorMapping(t *testing.T) {
	storeErr := &repository.StoreError{Op: "insert user", Err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantUserID any
	}{
		{
			name:       "duplicate email",
			err:        service.ErrEmailAlreadyExists,
			wantStatus: http.StatusBadRequest,
			wantError:  "Email already exists",
		},
		{
			name:       "blank full name",
			err:        service.ErrInvalidFullName,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid input",
		},
		{
			name:       "store unavailable",
			err:        errors.Join(service.ErrUserWriteFailed, storeErr),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "Service temporarily unavailable",
		},
		{
			name:       "unexpected failure",
			err:        errors.Join(service.ErrUserWriteFailed, errors.New("encode password: boom")),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
		{
			name:       "profile write failed",
			err:        &service.ProfileWriteError{UserID: 9, Err: storeErr},
			wantStatus: http.StatusInternalServerError,
			wantError:  "User created but profile picture could not be saved",
			wantUserID: float64(9),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeRegistrationService{err: tt.err}, nil)

			status, body := doRequest(t, app, http.MethodPost, "/register/", janeBody)
			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantError, body["error"])
			require.Equal(t, tt.wantUserID, body["user_id"])

			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			require.NotContains(t, string(encoded), "connection refused")
		})
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&fakeRegistrationService{}, nil)

	status, body := doRequest(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])
}

func TestHealthReady(t *testing.T) {
	ok := api.PingerFunc(func(context.Context) error { return nil })
	down := api.PingerFunc(func(context.Context) error { return errors.New("no reachable servers") })

	app := newTestApp(&fakeRegistrationService{}, map[string]api.Pinger{"postgres": ok, "mongodb": ok})
	status, body := doRequest(t, app, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", body["status"])

	app = newTestApp(&fakeRegistrationService{}, map[string]api.Pinger{"postgres": ok, "mongodb": down})
	status, body = doRequest(t, app, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, "unavailable", body["status"])
	checks, isMap := body["checks"].(map[string]any)
	require.True(t, isMap)
	require.Equal(t, "unavailable", checks["mongodb"])
	require.Equal(t, "ok", checks["postgres"])
}

func TestMetrics(t *testing.T) {
	app := newTestApp(&fakeRegistrationService{result: &service.RegistrationResult{UserID: 1}}, nil)
	doRequest(t, app, http.MethodPost, "/register/", janeBody)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), `registrations_total{outcome="created"}`)
	require.Contains(t, string(raw), "http_requests_total")
}
