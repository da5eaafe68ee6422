package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const PlaceholderRoomPhoto = "/static/room-placeholder.svg"

// PredefinedRoomTypes are offered by the admin room form; any other type can
// still be entered as a custom value.
var PredefinedRoomTypes = []string{
	"Single",
	"Double",
	"Family",
	"Suite",
	"Presidencial",
	"King Size",
	"Luxury suite",
}

var DefaultAmenities = []string{
	"WiFi",
	"air-conditioning",
	"TV Smart",
	"Minibar",
	"private bathroom",
	"river views",
}

type Room struct {
	ID              int64    `json:"id"`
	RoomType        string   `json:"roomType"`
	RoomPrice       float64  `json:"roomPrice"`
	RoomDescription string   `json:"roomDescription"`
	IsBooked        bool     `json:"isBooked"`
	RoomPhotoURL    string   `json:"roomPhotoUrl,omitempty"`
	Photo           string   `json:"photo,omitempty"`
	Capacity        int      `json:"capacity,omitempty"`
	BedType         string   `json:"bedType,omitempty"`
	Amenities       []string `json:"amenities,omitempty"`
	NumOfAdults     int      `json:"numOfAdults,omitempty"`
	NumOfChildren   int      `json:"numOfChildren,omitempty"`
}

// UnmarshalJSON tolerates the field spellings different backend versions
// use: booked/reserved for isBooked, description for roomDescription and
// prices sent as strings.
func (r *Room) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              int64           `json:"id"`
		RoomType        string          `json:"roomType"`
		RoomPrice       json.RawMessage `json:"roomPrice"`
		RoomDescription string          `json:"roomDescription"`
		Description     string          `json:"description"`
		IsBooked        *bool           `json:"isBooked"`
		Booked          *bool           `json:"booked"`
		Reserved        *bool           `json:"reserved"`
		RoomPhotoURL    string          `json:"roomPhotoUrl"`
		Photo           string          `json:"photo"`
		Capacity        int             `json:"capacity"`
		BedType         string          `json:"bedType"`
		Amenities       []string        `json:"amenities"`
		NumOfAdults     int             `json:"numOfAdults"`
		NumOfChildren   int             `json:"numOfChildren"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Room{
		ID:              raw.ID,
		RoomType:        raw.RoomType,
		RoomPrice:       flexibleFloat(raw.RoomPrice),
		RoomDescription: raw.RoomDescription,
		RoomPhotoURL:    raw.RoomPhotoURL,
		Photo:           raw.Photo,
		Capacity:        raw.Capacity,
		BedType:         raw.BedType,
		Amenities:       raw.Amenities,
		NumOfAdults:     raw.NumOfAdults,
		NumOfChildren:   raw.NumOfChildren,
	}
	if r.RoomDescription == "" {
		r.RoomDescription = raw.Description
	}

	switch {
	case raw.IsBooked != nil:
		r.IsBooked = *raw.IsBooked
	case raw.Booked != nil:
		r.IsBooked = *raw.Booked
	case raw.Reserved != nil:
		r.IsBooked = *raw.Reserved
	}

	return nil
}

// PhotoSrc returns something an <img src> can use: a URL, a data URI built
// from the base64 payload the backend stores, or the placeholder.
func (r Room) PhotoSrc() string {
	for _, candidate := range []string{r.RoomPhotoURL, r.Photo} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if strings.HasPrefix(candidate, "data:") ||
			strings.HasPrefix(candidate, "http://") ||
			strings.HasPrefix(candidate, "https://") ||
			strings.HasPrefix(candidate, "/") {
			return candidate
		}
		return "data:image/jpeg;base64," + candidate
	}
	return PlaceholderRoomPhoto
}

func (r Room) AmenityList() []string {
	if len(r.Amenities) > 0 {
		return r.Amenities
	}
	return DefaultAmenities
}

func (r Room) MaxAdults() int {
	if r.Capacity > 0 {
		return r.Capacity
	}
	return 10
}

func flexibleFloat(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return parsed
		}
	}

	return 0
}
