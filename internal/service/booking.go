package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"delrio-stay/internal/model"
)

// ErrBookingFailed wraps any backend failure while creating a booking.
var ErrBookingFailed = errors.New("failed to create booking")

type BookingService struct {
	backend Backend
	now     func() time.Time
}

func NewBookingService(backend Backend) *BookingService {
	return &BookingService{backend: backend, now: time.Now}
}

// Quote is the price estimate shown under the booking form.
type Quote struct {
	Nights int
	Total  float64
}

// Estimate prices the stay once both dates parse and checkout is after
// check-in. Guests do not affect the price.
func Estimate(form model.BookingForm, room model.Room) (Quote, bool) {
	checkIn, err := model.ParseDate(form.CheckInDate)
	if err != nil {
		return Quote{}, false
	}
	checkOut, err := model.ParseDate(form.CheckOutDate)
	if err != nil {
		return Quote{}, false
	}

	nights := model.Nights(checkIn, checkOut)
	if nights == 0 {
		return Quote{}, false
	}
	return Quote{Nights: nights, Total: float64(nights) * room.RoomPrice}, true
}

// Validate checks the form in the order a guest would fix it and returns
// the request to send. It never calls the backend.
func (s *BookingService) Validate(form model.BookingForm, room model.Room) (model.BookingRequest, error) {
	today := model.DateOf(s.now())

	checkIn, err := model.ParseDate(form.CheckInDate)
	if err != nil {
		return model.BookingRequest{}, model.Invalid("checkInDate", "Select your arrival and departure dates")
	}
	if checkIn.Before(today) {
		return model.BookingRequest{}, model.Invalid("checkInDate", "The entry date cannot be in the past")
	}

	checkOut, err := model.ParseDate(form.CheckOutDate)
	if err != nil || !checkOut.After(checkIn) {
		return model.BookingRequest{}, model.Invalid("checkOutDate", "The departure date must be later than the arrival date")
	}

	name := strings.TrimSpace(form.GuestFullName)
	if name == "" {
		return model.BookingRequest{}, model.Invalid("guestFullName", "Enter you full name")
	}

	email := strings.TrimSpace(form.GuestEmail)
	if email == "" {
		return model.BookingRequest{}, model.Invalid("guestEmail", "Enter you email")
	}

	adults, err := parseCount(form.NumOfAdults, 1)
	if err != nil || adults < 1 {
		return model.BookingRequest{}, model.Invalid("numOfAdults", "At least one adult is required")
	}

	children, err := parseCount(form.NumOfChildren, 0)
	if err != nil || children < 0 {
		return model.BookingRequest{}, model.Invalid("numOfChildren", "The number of children cannot be negative")
	}

	if room.Capacity > 0 && adults+children > room.Capacity {
		return model.BookingRequest{}, model.Invalid("numOfAdults", fmt.Sprintf("Maximum capacity: %d guests", room.Capacity))
	}

	return model.BookingRequest{
		CheckInDate:   checkIn,
		CheckOutDate:  checkOut,
		GuestFullName: name,
		GuestEmail:    email,
		NumOfAdults:   adults,
		NumOfChildren: children,
	}, nil
}

// Book validates the form and creates the booking, returning the
// confirmation code.
func (s *BookingService) Book(ctx context.Context, room model.Room, form model.BookingForm) (string, error) {
	if room.IsBooked {
		return "", model.Invalid("room", "This room is currently reserved")
	}

	req, err := s.Validate(form, room)
	if err != nil {
		return "", err
	}

	code, err := s.backend.CreateBooking(ctx, room.ID, req)
	if err != nil {
		return "", fmt.Errorf("%w: room %d: %w", ErrBookingFailed, room.ID, err)
	}
	return code, nil
}

// parseCount reads a numeric form field; blank means fallback.
func parseCount(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
