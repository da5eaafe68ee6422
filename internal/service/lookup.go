package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"delrio-stay/internal/model"
)

type LookupMode string

const (
	LookupByCode  LookupMode = "code"
	LookupByEmail LookupMode = "email"
)

func ParseLookupMode(raw string) LookupMode {
	if strings.EqualFold(strings.TrimSpace(raw), string(LookupByEmail)) {
		return LookupByEmail
	}
	return LookupByCode
}

// LookupService finds bookings for guests: by confirmation code, by email
// and the signed in visitor's own bookings.
type LookupService struct {
	backend Backend
	now     func() time.Time
}

func NewLookupService(backend Backend) *LookupService {
	return &LookupService{backend: backend, now: time.Now}
}

func NormalizeConfirmationCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ByCode fails with model.ErrBookingNotFound for any code the backend does
// not know, whatever the backend's own error looks like.
func (s *LookupService) ByCode(ctx context.Context, raw string) (model.Booking, error) {
	code := NormalizeConfirmationCode(raw)
	if code == "" {
		return model.Booking{}, model.Invalid("code", "Please enter you confirmation code")
	}

	booking, err := s.backend.BookingByConfirmationCode(ctx, code)
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: %s: %w", model.ErrBookingNotFound, code, err)
	}
	return booking, nil
}

func (s *LookupService) ByEmail(ctx context.Context, raw string) ([]model.Booking, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return nil, model.Invalid("email", "Please enter you email")
	}

	bookings, err := s.backend.BookingsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrBookingNotFound, email, err)
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrBookingNotFound, email)
	}
	return bookings, nil
}

// GuestBooking is a booking as the guest sees it in their list.
type GuestBooking struct {
	model.Booking
	Past      bool
	Upcoming  bool
	Active    bool
	CanCancel bool
}

// MyBookings lists the bookings of email, most recent check-in first.
func (s *LookupService) MyBookings(ctx context.Context, email string) ([]GuestBooking, error) {
	bookings, err := s.backend.BookingsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("list bookings of %s: %w", email, err)
	}

	slices.SortStableFunc(bookings, func(a, b model.Booking) int {
		return b.CheckInDate.Compare(a.CheckInDate.Time)
	})

	now := s.now()
	out := make([]GuestBooking, 0, len(bookings))
	for _, booking := range bookings {
		upcoming := booking.IsUpcoming(now)
		out = append(out, GuestBooking{
			Booking:   booking,
			Past:      booking.IsPast(now),
			Upcoming:  upcoming,
			Active:    booking.IsActive(now),
			CanCancel: upcoming,
		})
	}
	return out, nil
}

// CancelOwn cancels one of email's upcoming bookings and returns the list
// without it. Past, running and foreign bookings are refused before any
// cancel call.
func (s *LookupService) CancelOwn(ctx context.Context, email string, id int64) ([]GuestBooking, error) {
	bookings, err := s.MyBookings(ctx, email)
	if err != nil {
		return nil, err
	}

	idx := slices.IndexFunc(bookings, func(b GuestBooking) bool { return b.ID == id })
	if idx < 0 {
		return bookings, fmt.Errorf("booking %d of %s: %w", id, email, model.ErrBookingNotFound)
	}
	if !bookings[idx].CanCancel {
		return bookings, fmt.Errorf("booking %d has started or ended: %w", id, model.ErrForbidden)
	}

	if err := s.backend.CancelBooking(ctx, id); err != nil {
		return bookings, fmt.Errorf("cancel booking %d: %w", id, err)
	}
	return WithoutBooking(bookings, id), nil
}

// WithoutBooking drops exactly the entries with id and keeps the order of
// the rest.
func WithoutBooking[T interface{ BookingID() int64 }](items []T, id int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item.BookingID() != id {
			out = append(out, item)
		}
	}
	return out
}
