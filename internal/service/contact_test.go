package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"delrio-stay/internal/model"
)

func TestContactService_Submit(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	svc := NewContactService(slog.New(slog.NewJSONHandler(&buf, nil)))

	form := model.ContactForm{
		FirstName: " Ana ",
		LastName:  "Rio",
		Email:     "ana@delrio.com",
		Subject:   "Late check-in",
		Message:   "We arrive after midnight.",
	}
	require.NoError(t, svc.Submit(context.Background(), form))
	require.Contains(t, buf.String(), `"name":"Ana Rio"`)
	require.NotContains(t, buf.String(), "midnight")

	buf.Reset()
	form.Message = "   "
	err := svc.Submit(context.Background(), form)
	require.True(t, errors.Is(err, model.ErrInvalidInput))
	require.Empty(t, buf.String())
}
