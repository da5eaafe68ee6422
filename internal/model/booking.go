package model

import "time"

type Booking struct {
	ID                      int64  `json:"id"`
	CheckInDate             Date   `json:"checkInDate"`
	CheckOutDate            Date   `json:"checkOutDate"`
	GuestFullName           string `json:"guestFullName"`
	GuestEmail              string `json:"guestEmail"`
	NumOfAdults             int    `json:"numOfAdults"`
	NumOfChildren           int    `json:"numOfChildren"`
	TotalNumOfGuests        int    `json:"totalNumOfGuests"`
	BookingConfirmationCode string `json:"bookingConfirmationCode"`
	Room                    *Room  `json:"room,omitempty"`
}

func (b Booking) Nights() int {
	return Nights(b.CheckInDate, b.CheckOutDate)
}

func (b Booking) RoomPrice() float64 {
	if b.Room == nil {
		return 0
	}
	return b.Room.RoomPrice
}

// TotalPrice is nights times the nightly room price; guest count does not
// change it.
func (b Booking) TotalPrice() float64 {
	return float64(b.Nights()) * b.RoomPrice()
}

func (b Booking) Guests() int {
	if b.TotalNumOfGuests > 0 {
		return b.TotalNumOfGuests
	}
	return b.NumOfAdults + b.NumOfChildren
}

// IsPast reports whether the stay ended before now.
func (b Booking) IsPast(now time.Time) bool {
	return b.CheckOutDate.Before(DateOf(now))
}

// IsUpcoming reports whether the stay has not started yet.
func (b Booking) IsUpcoming(now time.Time) bool {
	return b.CheckInDate.After(DateOf(now))
}

// IsActive reports whether now falls inside the stay, both ends inclusive.
func (b Booking) IsActive(now time.Time) bool {
	today := DateOf(now)
	return !b.CheckInDate.After(today) && !b.CheckOutDate.Before(today)
}

func (b Booking) BookingID() int64 {
	return b.ID
}
