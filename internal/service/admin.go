package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"delrio-stay/internal/model"
)

// AdminService backs the admin panels. Every call still goes through the
// backend's own authorization.
type AdminService struct {
	backend Backend
	catalog *CatalogService
}

func NewAdminService(backend Backend, catalog *CatalogService) *AdminService {
	return &AdminService{backend: backend, catalog: catalog}
}

type AdminRooms struct {
	Rooms []model.Room
	// Total is the number of rooms before filtering.
	Total int
	Types []string
}

func (s *AdminService) Rooms(ctx context.Context, roomType string) (AdminRooms, error) {
	rooms, err := s.backend.ListRooms(ctx)
	if err != nil {
		return AdminRooms{}, fmt.Errorf("list rooms: %w", err)
	}

	return AdminRooms{
		Rooms: FilterRoomsByType(rooms, roomType),
		Total: len(rooms),
		Types: s.catalog.Types(ctx, rooms),
	}, nil
}

func (s *AdminService) Room(ctx context.Context, id int64) (model.Room, error) {
	return s.backend.GetRoom(ctx, id)
}

// RoomTypeOptions merges the predefined types with the ones in use.
func RoomTypeOptions(inUse []string) []string {
	options := slices.Clone(model.PredefinedRoomTypes)
	for _, t := range inUse {
		if !slices.Contains(options, t) {
			options = append(options, t)
		}
	}
	return options
}

// ValidateRoom requires type, price and description; the price must be a
// positive number.
func ValidateRoom(form model.RoomForm) (model.RoomForm, error) {
	form.RoomType = strings.TrimSpace(form.RoomType)
	form.RoomPrice = strings.TrimSpace(form.RoomPrice)
	form.RoomDescription = strings.TrimSpace(form.RoomDescription)

	if form.RoomType == "" || form.RoomPrice == "" || form.RoomDescription == "" {
		return form, model.Invalid("room", "Please fill in all fields")
	}

	price, err := strconv.ParseFloat(form.RoomPrice, 64)
	if err != nil || price <= 0 {
		return form, model.Invalid("roomPrice", "Enter a valid price")
	}
	if form.NumOfAdults < 1 {
		form.NumOfAdults = 1
	}
	if form.NumOfChildren < 0 {
		form.NumOfChildren = 0
	}
	return form, nil
}

// SaveRoom adds the room when id is zero and updates it otherwise.
func (s *AdminService) SaveRoom(ctx context.Context, id int64, form model.RoomForm) (model.Room, error) {
	form, err := ValidateRoom(form)
	if err != nil {
		return model.Room{}, err
	}

	if id == 0 {
		room, err := s.backend.AddRoom(ctx, form)
		if err != nil {
			return model.Room{}, fmt.Errorf("add room: %w", err)
		}
		return room, nil
	}

	room, err := s.backend.UpdateRoom(ctx, id, form)
	if err != nil {
		return model.Room{}, fmt.Errorf("update room %d: %w", id, err)
	}
	return room, nil
}

func (s *AdminService) DeleteRoom(ctx context.Context, id int64) error {
	if err := s.backend.DeleteRoom(ctx, id); err != nil {
		return fmt.Errorf("delete room %d: %w", id, err)
	}
	return nil
}

type AdminBookings struct {
	Bookings []model.Booking
	Total    int
}

func (s *AdminService) Bookings(ctx context.Context, emailFilter string) (AdminBookings, error) {
	bookings, err := s.backend.ListBookings(ctx)
	if err != nil {
		return AdminBookings{}, fmt.Errorf("list bookings: %w", err)
	}
	return AdminBookings{
		Bookings: FilterByEmail(bookings, emailFilter, func(b model.Booking) string { return b.GuestEmail }),
		Total:    len(bookings),
	}, nil
}

func (s *AdminService) CancelBooking(ctx context.Context, id int64) error {
	if err := s.backend.CancelBooking(ctx, id); err != nil {
		return fmt.Errorf("cancel booking %d: %w", id, err)
	}
	return nil
}

type AdminUsers struct {
	Users []model.User
	Total int
}

func (s *AdminService) Users(ctx context.Context, emailFilter string) (AdminUsers, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return AdminUsers{}, fmt.Errorf("list users: %w", err)
	}
	return AdminUsers{
		Users: FilterByEmail(users, emailFilter, func(u model.User) string { return u.Email }),
		Total: len(users),
	}, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.backend.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// FilterByEmail keeps items whose email contains needle, ignoring case.
func FilterByEmail[T any](items []T, needle string, email func(T) string) []T {
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return items
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(email(item)), needle) {
			out = append(out, item)
		}
	}
	return out
}
