package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/go-querystring/query"

	"delrio-stay/internal/model"
)

const (
	RoomsPerPage  = 10
	FeaturedCount = 3
)

// RoomQuery is the room list filter. Its url tags define the query string
// of the list page.
type RoomQuery struct {
	Type      string `url:"type,omitempty"`
	Available bool   `url:"available,omitempty"`
	Page      int    `url:"page,omitempty"`
}

// URL returns the list link for the same filter at another page.
func (q RoomQuery) URL(page int) string {
	q.Page = page
	if q.Page <= 1 {
		q.Page = 0
	}

	values, err := query.Values(q)
	if err != nil || len(values) == 0 {
		return "/rooms"
	}
	return "/rooms?" + values.Encode()
}

// WithType returns the link for another type filter, back on page one.
func (q RoomQuery) WithType(roomType string) string {
	q.Type = roomType
	return q.URL(1)
}

type RoomListing struct {
	Query RoomQuery
	Rooms []model.Room
	Types []string
	Page  model.Page
	// Total is the number of rooms after filtering, across all pages.
	Total int
}

type CatalogService struct {
	backend Backend
}

func NewCatalogService(backend Backend) *CatalogService {
	return &CatalogService{backend: backend}
}

func (s *CatalogService) Featured(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.backend.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured rooms: %w", err)
	}
	if len(rooms) > FeaturedCount {
		rooms = rooms[:FeaturedCount]
	}
	return rooms, nil
}

func (s *CatalogService) Room(ctx context.Context, id int64) (model.Room, error) {
	return s.backend.GetRoom(ctx, id)
}

// Browse filters by type, then pages the result. An out of range page is
// clamped to the nearest valid one.
func (s *CatalogService) Browse(ctx context.Context, q RoomQuery) (RoomListing, error) {
	list := s.backend.ListRooms
	if q.Available {
		list = s.backend.AvailableRooms
	}

	rooms, err := list(ctx)
	if err != nil {
		return RoomListing{}, fmt.Errorf("list rooms: %w", err)
	}

	types := s.Types(ctx, rooms)
	filtered := FilterRoomsByType(rooms, q.Type)

	page := Paginate(len(filtered), q.Page, RoomsPerPage)
	q.Page = page.Number

	start := (page.Number - 1) * page.Size
	end := min(start+page.Size, len(filtered))

	return RoomListing{
		Query: q,
		Rooms: filtered[start:end],
		Types: types,
		Page:  page,
		Total: len(filtered),
	}, nil
}

// Types lists the room types offered by the backend, falling back to the
// distinct types of rooms when that call fails or returns nothing.
func (s *CatalogService) Types(ctx context.Context, rooms []model.Room) []string {
	types, err := s.backend.RoomTypes(ctx)
	if err != nil {
		slog.WarnContext(ctx, "room types unavailable, deriving from rooms", "error", err)
	}

	cleaned := make([]string, 0, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(cleaned, t) {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) > 0 {
		return cleaned
	}
	return DistinctRoomTypes(rooms)
}

// FilterRoomsByType keeps rooms of exactly roomType; "" and "all" keep all.
func FilterRoomsByType(rooms []model.Room, roomType string) []model.Room {
	roomType = strings.TrimSpace(roomType)
	if roomType == "" || strings.EqualFold(roomType, "all") {
		return rooms
	}

	filtered := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.RoomType == roomType {
			filtered = append(filtered, room)
		}
	}
	return filtered
}

func DistinctRoomTypes(rooms []model.Room) []string {
	types := make([]string, 0)
	for _, room := range rooms {
		if room.RoomType != "" && !slices.Contains(types, room.RoomType) {
			types = append(types, room.RoomType)
		}
	}
	return types
}

// Paginate clamps requested into [1, pages]. An empty list still has one
// (empty) page.
func Paginate(total int, requested int, size int) model.Page {
	pages := max(1, (total+size-1)/size)
	number := min(max(requested, 1), pages)
	return model.Page{Number: number, Size: size, TotalItems: total, TotalPages: pages}
}
