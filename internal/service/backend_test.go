package service

import (
	"context"
	"sync/atomic"

	"delrio-stay/internal/model"
)

// fakeBackend serves fixed data and counts calls. Err fields make the
// matching call fail.
type fakeBackend struct {
	rooms    []model.Room
	types    []string
	bookings []model.Booking
	users    []model.User

	roomsErr    error
	typesErr    error
	bookingsErr error
	usersErr    error
	createErr   error
	cancelErr   error
	loginResult model.LoginResult
	loginErr    error

	createCalls atomic.Int32
	cancelCalls atomic.Int32
	cancelled   []int64
	lastRequest model.BookingRequest
	savedRoom   model.RoomForm
}

func (f *fakeBackend) Register(context.Context, model.RegisterRequest) error {
	return nil
}

func (f *fakeBackend) Login(context.Context, model.LoginRequest) (model.LoginResult, error) {
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) ListRooms(context.Context) ([]model.Room, error) {
	return f.rooms, f.roomsErr
}

func (f *fakeBackend) AvailableRooms(context.Context) ([]model.Room, error) {
	available := make([]model.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		if !room.IsBooked {
			available = append(available, room)
		}
	}
	return available, f.roomsErr
}

func (f *fakeBackend) GetRoom(_ context.Context, id int64) (model.Room, error) {
	for _, room := range f.rooms {
		if room.ID == id {
			return room, nil
		}
	}
	return model.Room{}, model.ErrRoomNotFound
}

func (f *fakeBackend) RoomTypes(context.Context) ([]string, error) {
	return f.types, f.typesErr
}

func (f *fakeBackend) AddRoom(_ context.Context, form model.RoomForm) (model.Room, error) {
	f.savedRoom = form
	return model.Room{ID: 99, RoomType: form.RoomType}, nil
}

func (f *fakeBackend) UpdateRoom(_ context.Context, id int64, form model.RoomForm) (model.Room, error) {
	f.savedRoom = form
	return model.Room{ID: id, RoomType: form.RoomType}, nil
}

func (f *fakeBackend) DeleteRoom(context.Context, int64) error {
	return nil
}

func (f *fakeBackend) ListBookings(context.Context) ([]model.Booking, error) {
	return f.bookings, f.bookingsErr
}

func (f *fakeBackend) BookingByConfirmationCode(_ context.Context, code string) (model.Booking, error) {
	for _, booking := range f.bookings {
		if booking.BookingConfirmationCode == code {
			return booking, nil
		}
	}
	return model.Booking{}, model.ErrBookingNotFound
}

func (f *fakeBackend) BookingsByEmail(_ context.Context, email string) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for _, booking := range f.bookings {
		if booking.GuestEmail == email {
			out = append(out, booking)
		}
	}
	return out, f.bookingsErr
}

func (f *fakeBackend) CreateBooking(_ context.Context, _ int64, req model.BookingRequest) (string, error) {
	f.createCalls.Add(1)
	f.lastRequest = req
	if f.createErr != nil {
		return "", f.createErr
	}
	return "DRS-0001", nil
}

func (f *fakeBackend) CancelBooking(_ context.Context, id int64) error {
	f.cancelCalls.Add(1)
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeBackend) ListUsers(context.Context) ([]model.User, error) {
	return f.users, f.usersErr
}

func (f *fakeBackend) GetUser(_ context.Context, email string) (model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (f *fakeBackend) DeleteUser(context.Context, int64) error {
	return nil
}

var _ Backend = (*fakeBackend)(nil)
