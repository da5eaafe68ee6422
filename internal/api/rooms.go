package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"delrio-stay/internal/model"
	"delrio-stay/pkg/apierror"
)

func (c *Client) ListRooms(ctx context.Context) ([]model.Room, error) {
	payload, err := c.send(ctx, request{method: http.MethodGet, path: "/rooms/all"})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Room](payload)
}

func (c *Client) AvailableRooms(ctx context.Context) ([]model.Room, error) {
	payload, err := c.send(ctx, request{method: http.MethodGet, path: "/rooms/available"})
	if err != nil {
		return nil, err
	}
	return decodeList[model.Room](payload)
}

func (c *Client) GetRoom(ctx context.Context, id int64) (model.Room, error) {
	var room model.Room
	err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/rooms/%d", id)}, &room)
	if apierror.IsNotFound(err) {
		return model.Room{}, fmt.Errorf("%w: %w", model.ErrRoomNotFound, err)
	}
	if err != nil {
		return model.Room{}, err
	}
	return room, nil
}

func (c *Client) RoomTypes(ctx context.Context) ([]string, error) {
	payload, err := c.send(ctx, request{method: http.MethodGet, path: "/rooms/types"})
	if err != nil {
		return nil, err
	}
	return decodeList[string](payload)
}

func (c *Client) AddRoom(ctx context.Context, form model.RoomForm) (model.Room, error) {
	call, err := roomRequest(http.MethodPost, "/rooms/add", form)
	if err != nil {
		return model.Room{}, err
	}

	payload, err := c.send(ctx, call)
	if err != nil {
		return model.Room{}, err
	}
	return savedRoom(payload, form)
}

func (c *Client) UpdateRoom(ctx context.Context, id int64, form model.RoomForm) (model.Room, error) {
	call, err := roomRequest(http.MethodPut, fmt.Sprintf("/rooms/update/%d", id), form)
	if err != nil {
		return model.Room{}, err
	}

	payload, err := c.send(ctx, call)
	if err != nil {
		return model.Room{}, err
	}
	return savedRoom(payload, form)
}

func (c *Client) DeleteRoom(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/rooms/delete/%d", id), auth: true}, nil)
}

// savedRoom decodes the room echoed back by a write. Backends that answer
// with a bare message get a room built from the submitted form instead.
func savedRoom(payload []byte, form model.RoomForm) (model.Room, error) {
	price, _ := strconv.ParseFloat(strings.TrimSpace(form.RoomPrice), 64)
	submitted := model.Room{
		RoomType:        form.RoomType,
		RoomPrice:       price,
		RoomDescription: form.RoomDescription,
		IsBooked:        form.IsBooked,
		NumOfAdults:     form.NumOfAdults,
		NumOfChildren:   form.NumOfChildren,
	}
	if len(payload) == 0 || payload[0] != '{' {
		return submitted, nil
	}

	var room model.Room
	if err := decodePayload(payload, &room); err != nil {
		return model.Room{}, err
	}
	if room.RoomType == "" {
		submitted.ID = room.ID
		return submitted, nil
	}
	return room, nil
}

// roomRequest encodes the room form as multipart/form-data, the only body
// shape the backend accepts for room writes.
func roomRequest(method string, path string, form model.RoomForm) (request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := []struct {
		name  string
		value string
	}{
		{"roomType", form.RoomType},
		{"roomPrice", form.RoomPrice},
		{"roomDescription", form.RoomDescription},
		{"numOfAdults", strconv.Itoa(form.NumOfAdults)},
		{"numOfChildren", strconv.Itoa(form.NumOfChildren)},
		{"isBooked", strconv.FormatBool(form.IsBooked)},
	}
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return request{}, fmt.Errorf("write field %s: %w", field.name, err)
		}
	}

	if form.Photo != nil && len(form.Photo.Data) > 0 {
		contentType := form.Photo.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, escapeQuotes(form.Photo.Filename)))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return request{}, fmt.Errorf("create photo part: %w", err)
		}
		if _, err := part.Write(form.Photo.Data); err != nil {
			return request{}, fmt.Errorf("write photo part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return request{}, fmt.Errorf("close multipart body: %w", err)
	}

	return request{
		method:      method,
		path:        path,
		body:        &body,
		contentType: writer.FormDataContentType(),
		auth:        true,
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	if s == "" {
		return "photo"
	}
	return quoteEscaper.Replace(s)
}
