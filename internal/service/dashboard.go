package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"delrio-stay/internal/model"
)

type DashboardStats struct {
	TotalBookings    int
	TotalRevenue     float64
	OccupiedRooms    int
	TotalRooms       int
	TotalUsers       int
	UpcomingBookings int
}

type DashboardService struct {
	backend Backend
	now     func() time.Time
}

func NewDashboardService(backend Backend) *DashboardService {
	return &DashboardService{backend: backend, now: time.Now}
}

// Stats fetches bookings, rooms and users concurrently. The first failure
// cancels the other fetches and no partial stats are returned.
func (s *DashboardService) Stats(ctx context.Context) (DashboardStats, error) {
	var (
		bookings []model.Booking
		rooms    []model.Room
		users    []model.User
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		bookings, err = s.backend.ListBookings(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		rooms, err = s.backend.ListRooms(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		users, err = s.backend.ListUsers(groupCtx)
		return err
	})

	if err := group.Wait(); err != nil {
		return DashboardStats{}, fmt.Errorf("load dashboard: %w", err)
	}

	return Aggregate(bookings, rooms, users, s.now()), nil
}

// Aggregate computes the dashboard figures as of now.
func Aggregate(bookings []model.Booking, rooms []model.Room, users []model.User, now time.Time) DashboardStats {
	stats := DashboardStats{
		TotalBookings: len(bookings),
		TotalRooms:    len(rooms),
		TotalUsers:    len(users),
	}

	for _, booking := range bookings {
		stats.TotalRevenue += booking.TotalPrice()
		if booking.IsActive(now) {
			stats.OccupiedRooms++
		}
		if booking.IsUpcoming(now) {
			stats.UpcomingBookings++
		}
	}
	return stats
}
