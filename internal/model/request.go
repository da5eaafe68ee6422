package model

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginResult is what the backend returns from /auth/login. Everything but the
// token may be missing.
type LoginResult struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	ID        FlexID `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type BookingRequest struct {
	CheckInDate   Date   `json:"checkInDate"`
	CheckOutDate  Date   `json:"checkOutDate"`
	GuestFullName string `json:"guestFullName"`
	GuestEmail    string `json:"guestEmail"`
	NumOfAdults   int    `json:"numOfAdults"`
	NumOfChildren int    `json:"numOfChildren"`
}

// BookingForm is the raw booking form input, kept as strings so it can be
// redisplayed unchanged when validation fails.
type BookingForm struct {
	CheckInDate   string
	CheckOutDate  string
	GuestFullName string
	GuestEmail    string
	NumOfAdults   string
	NumOfChildren string
}

type RegisterForm struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

type ContactForm struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Subject   string
	Message   string
}

// RoomForm carries the admin add/edit room input. Photo is optional.
type RoomForm struct {
	RoomType        string
	RoomPrice       string
	RoomDescription string
	NumOfAdults     int
	NumOfChildren   int
	IsBooked        bool
	Photo           *PhotoUpload
}

type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}
