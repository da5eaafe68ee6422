package service

import (
	"context"

	"delrio-stay/internal/model"
)

// Backend is the booking REST API as the services see it. *api.Client
// implements it.
type Backend interface {
	Register(ctx context.Context, req model.RegisterRequest) error
	Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error)

	ListRooms(ctx context.Context) ([]model.Room, error)
	AvailableRooms(ctx context.Context) ([]model.Room, error)
	GetRoom(ctx context.Context, id int64) (model.Room, error)
	RoomTypes(ctx context.Context) ([]string, error)
	AddRoom(ctx context.Context, form model.RoomForm) (model.Room, error)
	UpdateRoom(ctx context.Context, id int64, form model.RoomForm) (model.Room, error)
	DeleteRoom(ctx context.Context, id int64) error

	ListBookings(ctx context.Context) ([]model.Booking, error)
	BookingByConfirmationCode(ctx context.Context, code string) (model.Booking, error)
	BookingsByEmail(ctx context.Context, email string) ([]model.Booking, error)
	CreateBooking(ctx context.Context, roomID int64, req model.BookingRequest) (string, error)
	CancelBooking(ctx context.Context, id int64) error

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, email string) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
