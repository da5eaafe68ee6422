package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"delrio-stay/internal/model"
)

const MinPasswordLength = 6

type AccountService struct {
	backend Backend
}

func NewAccountService(backend Backend) *AccountService {
	return &AccountService{backend: backend}
}

// Authenticate exchanges credentials for a login result. The role falls back
// to ROLE_USER when the backend leaves it out.
func (s *AccountService) Authenticate(ctx context.Context, email string, password string) (model.LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return model.LoginResult{}, model.Invalid("credentials", "Please fill in all fields")
	}

	result, err := s.backend.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		if errors.Is(err, model.ErrNoToken) {
			return model.LoginResult{}, err
		}
		return model.LoginResult{}, fmt.Errorf("%w: %w", model.ErrUnauthorized, err)
	}

	if result.Role == "" {
		result.Role = string(model.RoleUser)
	}
	if result.Email == "" {
		result.Email = email
	}
	return result, nil
}

func ValidateRegistration(form model.RegisterForm) (model.RegisterRequest, error) {
	req := model.RegisterRequest{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Email:     strings.TrimSpace(form.Email),
		Password:  form.Password,
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" || form.ConfirmPassword == "" {
		return model.RegisterRequest{}, model.Invalid("register", "Please fill in all fields")
	}
	if req.Password != form.ConfirmPassword {
		return model.RegisterRequest{}, model.Invalid("confirmPassword", "Password do not match")
	}
	if len(req.Password) < MinPasswordLength {
		return model.RegisterRequest{}, model.Invalid("password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	}
	return req, nil
}

func (s *AccountService) Register(ctx context.Context, form model.RegisterForm) error {
	req, err := ValidateRegistration(form)
	if err != nil {
		return err
	}
	if err := s.backend.Register(ctx, req); err != nil {
		return fmt.Errorf("register %s: %w", req.Email, err)
	}
	return nil
}

// Profile returns the backend's record for email. Callers treat failures as
// "no profile" since the page still works without it.
func (s *AccountService) Profile(ctx context.Context, email string) (model.User, error) {
	user, err := s.backend.GetUser(ctx, email)
	if err != nil {
		return model.User{}, fmt.Errorf("profile %s: %w", email, err)
	}
	return user, nil
}
