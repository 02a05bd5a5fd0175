package controllers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error)
	loginFn    func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
	me         *users.UserDTO
}

func (s stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, req)
	}
	return &auth.LoginResponse{}, nil
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, req)
	}
	return &auth.LoginResponse{}, nil
}

func (s stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	if s.me == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return s.me, nil
}

func TestAuthRegister(t *testing.T) {
	t.Parallel()

	svc := stubAuthService{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) (*auth.LoginResponse, error) {
			if req.Email != "jane@example.com" || req.Name != "Jane" {
				t.Fatalf("unexpected request %+v", req)
			}
			return &auth.LoginResponse{
				AccessToken:  "access",
				RefreshToken: "refresh",
				User:         &users.UserDTO{ID: uuid.New(), Email: req.Email, Name: req.Name},
			}, nil
		},
	}

	body := `{"email":"jane@example.com","password":"secret1","name":"Jane"}`
	resp := serve(AuthRegister(svc, nil), newRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if got := resp.Header().Get(tokenHeader); got != "access" {
		t.Fatalf("expected token header got %q", got)
	}
	var payload auth.LoginResponse
	decodeData(t, resp, &payload)
	if payload.RefreshToken != "refresh" || payload.User == nil || payload.User.Email != "jane@example.com" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"email":"not-an-email","password":"secret1","name":"Jane"}`,
		`{"email":"jane@example.com","password":"short","name":"Jane"}`,
		`{"email":"jane@example.com","password":"secret1"}`,
	} {
		resp := serve(AuthRegister(stubAuthService{}, nil), newRequest(http.MethodPost, "/", strings.NewReader(body)))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s got %d", body, resp.Code)
		}
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	svc := stubAuthService{
		loginFn: func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		},
	}
	resp := serve(AuthLogin(svc, nil), newRequest(http.MethodPost, "/", strings.NewReader(`{"email":"jane@example.com","password":"wrong"}`)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if resp.Header().Get(tokenHeader) != "" {
		t.Fatal("token header must not be set on failure")
	}
}

func TestAuthMe(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := stubAuthService{me: &users.UserDTO{ID: userID, Email: "jane@example.com", IsAdmin: true}}

	resp := serve(AuthMe(svc, nil), asUser(newRequest(http.MethodGet, "/api/v1/auth/me", nil), userID))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var payload users.UserDTO
	decodeData(t, resp, &payload)
	if payload.ID != userID || !payload.IsAdmin {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if resp := serve(AuthMe(svc, nil), newRequest(http.MethodGet, "/api/v1/auth/me", nil)); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user got %d", resp.Code)
	}
}
