package service

import (
	"context"
	"log/slog"
	"strings"

	"delrio-stay/internal/model"
)

// ContactService accepts contact form messages. The backend has no endpoint
// for them, so accepted messages go to the log for staff to pick up.
type ContactService struct {
	logger *slog.Logger
}

func NewContactService(logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactService{logger: logger}
}

func (s *ContactService) Submit(ctx context.Context, form model.ContactForm) error {
	form = model.ContactForm{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Email:     strings.TrimSpace(form.Email),
		Phone:     strings.TrimSpace(form.Phone),
		Subject:   strings.TrimSpace(form.Subject),
		Message:   strings.TrimSpace(form.Message),
	}

	if form.FirstName == "" || form.LastName == "" || form.Email == "" || form.Subject == "" || form.Message == "" {
		return model.Invalid("contact", "Please fill in all required fields")
	}

	s.logger.InfoContext(ctx, "contact message received",
		"name", form.FirstName+" "+form.LastName,
		"email", form.Email,
		"phone", form.Phone,
		"subject", form.Subject,
		"message_length", len(form.Message),
	)
	return nil
}
