package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"delrio-stay/internal/model"
	"delrio-stay/pkg/apierror"
)

func (c *Client) ListBookings(ctx context.Context) ([]model.Booking, error) {
	payload, err := c.send(ctx, request{method: http.MethodGet, path: "/bookings/all", auth: true})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Booking](payload)
}

// BookingByConfirmationCode needs no token: the code is the credential.
func (c *Client) BookingByConfirmationCode(ctx context.Context, code string) (model.Booking, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.Booking{}, model.ErrBookingNotFound
	}

	var booking model.Booking
	err := c.do(ctx, request{method: http.MethodGet, path: "/bookings/confirmation/" + url.PathEscape(code)}, &booking)
	if apierror.IsNotFound(err) {
		return model.Booking{}, fmt.Errorf("%w: %w", model.ErrBookingNotFound, err)
	}
	if err != nil {
		return model.Booking{}, err
	}
	if booking.BookingConfirmationCode == "" && booking.ID == 0 {
		return model.Booking{}, model.ErrBookingNotFound
	}
	return booking, nil
}

func (c *Client) BookingsByEmail(ctx context.Context, email string) ([]model.Booking, error) {
	path := "/bookings/user/" + url.PathEscape(strings.TrimSpace(email))
	payload, err := c.send(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Booking](payload)
}

// CreateBooking returns the confirmation code issued by the backend.
func (c *Client) CreateBooking(ctx context.Context, roomID int64, req model.BookingRequest) (string, error) {
	call, err := jsonRequest(http.MethodPost, fmt.Sprintf("/bookings/room/%d", roomID), req, true)
	if err != nil {
		return "", err
	}

	payload, err := c.send(ctx, call)
	if err != nil {
		return "", err
	}
	return confirmationCode(payload), nil
}

func (c *Client) CancelBooking(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/bookings/%d", id), auth: true}, nil)
}

// confirmationCode reads the code out of a JSON string, an object carrying
// bookingConfirmationCode, or a plain text body.
func confirmationCode(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}

	var text string
	if json.Unmarshal(payload, &text) == nil {
		return strings.TrimSpace(text)
	}

	var object struct {
		BookingConfirmationCode string `json:"bookingConfirmationCode"`
		ConfirmationCode        string `json:"confirmationCode"`
	}
	if json.Unmarshal(payload, &object) == nil {
		if object.BookingConfirmationCode != "" {
			return object.BookingConfirmationCode
		}
		return object.ConfirmationCode
	}

	if bytes.ContainsAny(payload, "{}[]") {
		return ""
	}
	return strings.TrimSpace(string(payload))
}
