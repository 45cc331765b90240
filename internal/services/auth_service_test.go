package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/learning-platform-service/internal/events"
	"github.com/SAP-F-2025/learning-platform-service/internal/models"
	"github.com/SAP-F-2025/learning-platform-service/internal/validator"
)

func newAuthFixture(t *testing.T) (*fakeRepo, *events.MockEventPublisher, AuthService) {
	t.Helper()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewAuthService(repo, nil, testLogger(), validator.New(), publisher, AuthConfig{
		JWTSecret: "test-secret",
		JWTExpiry: time.Hour,
	})
	return repo, publisher, service
}

func registerRequest(email string) *validator.RegisterRequest {
	return &validator.RegisterRequest{
		Email:     email,
		Password:  "Passw0rd123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
}

func TestRegister_DefaultsToStudentAndIssuesToken(t *testing.T) {
	_, publisher, service := newAuthFixture(t)
	ctx := context.Background()

	resp, err := service.Register(ctx, registerRequest("Ada@Example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.User.Role != models.RoleStudent {
		t.Errorf("expected default role student, got %s", resp.User.Role)
	}
	if resp.User.Email != "ada@example.com" {
		t.Errorf("expected lower-cased email, got %s", resp.User.Email)
	}
	if resp.Token == "" {
		t.Fatal("expected a signed token")
	}

	user, err := service.VerifyToken(ctx, resp.Token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if user.ID != resp.User.ID {
		t.Errorf("token resolved to user %d, want %d", user.ID, resp.User.ID)
	}

	if n := countEvents(publisher, events.EventUserRegistered); n != 1 {
		t.Errorf("expected 1 user_registered event, got %d", n)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, _, service := newAuthFixture(t)
	ctx := context.Background()

	if _, err := service.Register(ctx, registerRequest("dup@example.com")); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	// Case differences must not create a second account.
	_, err := service.Register(ctx, registerRequest("DUP@example.com"))
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	_, _, service := newAuthFixture(t)
	ctx := context.Background()

	t.Run("weak password", func(t *testing.T) {
		req := registerRequest("weak@example.com")
		req.Password = "short"
		if _, err := service.Register(ctx, req); !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("admin role is not self-registerable", func(t *testing.T) {
		req := registerRequest("boss@example.com")
		role := models.RoleAdmin
		req.Role = &role
		if _, err := service.Register(ctx, req); !IsValidationError(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("instructor role is allowed", func(t *testing.T) {
		req := registerRequest("teach@example.com")
		role := models.RoleInstructor
		req.Role = &role
		resp, err := service.Register(ctx, req)
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if resp.User.Role != models.RoleInstructor {
			t.Errorf("expected instructor role, got %s", resp.User.Role)
		}
	})
}

func TestLogin(t *testing.T) {
	repo, _, service := newAuthFixture(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, registerRequest("login@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := service.Login(ctx, &validator.LoginRequest{Email: "login@example.com", Password: "Passw0rd123"})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.User.ID != registered.User.ID {
			t.Errorf("logged in as user %d, want %d", resp.User.ID, registered.User.ID)
		}
		if resp.Token == "" {
			t.Error("expected a signed token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, &validator.LoginRequest{Email: "login@example.com", Password: "WrongPass1"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(ctx, &validator.LoginRequest{Email: "nobody@example.com", Password: "Passw0rd123"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("deactivated account", func(t *testing.T) {
		user, err := repo.User().GetByID(ctx, nil, registered.User.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		user.IsActive = false
		if err := repo.User().Update(ctx, nil, user); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		_, err = service.Login(ctx, &validator.LoginRequest{Email: "login@example.com", Password: "Passw0rd123"})
		if !errors.Is(err, ErrAccountInactive) {
			t.Errorf("expected ErrAccountInactive, got %v", err)
		}
	})
}

func TestVerifyToken(t *testing.T) {
	repo, _, service := newAuthFixture(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, registerRequest("verify@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("garbage token", func(t *testing.T) {
		if _, err := service.VerifyToken(ctx, "not-a-token"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewAuthService(repo, nil, testLogger(), validator.New(), events.NewMockEventPublisher(testLogger()), AuthConfig{
			JWTSecret: "different-secret",
			JWTExpiry: time.Hour,
		})
		if _, err := other.VerifyToken(ctx, registered.Token); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("deactivation takes effect before expiry", func(t *testing.T) {
		user, err := repo.User().GetByID(ctx, nil, registered.User.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		user.IsActive = false
		if err := repo.User().Update(ctx, nil, user); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		if _, err := service.VerifyToken(ctx, registered.Token); !errors.Is(err, ErrAccountInactive) {
			t.Errorf("expected ErrAccountInactive, got %v", err)
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	_, _, service := newAuthFixture(t)
	ctx := context.Background()

	registered, err := service.Register(ctx, registerRequest("profile@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	name := "Augusta"
	bio := "Analytical engine enthusiast."
	resp, err := service.UpdateProfile(ctx, registered.User.ID, &validator.ProfileUpdateRequest{
		FirstName: &name,
		Bio:       &bio,
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if resp.FirstName != "Augusta" {
		t.Errorf("expected first name updated, got %s", resp.FirstName)
	}
	if resp.LastName != "Lovelace" {
		t.Errorf("untouched field must survive a partial update, got %s", resp.LastName)
	}
	if resp.Bio == nil || *resp.Bio != bio {
		t.Errorf("expected bio stored, got %v", resp.Bio)
	}

	if _, err := service.UpdateProfile(ctx, 9999, &validator.ProfileUpdateRequest{FirstName: &name}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
