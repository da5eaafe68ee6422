package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"delrio-stay/internal/model"
	"delrio-stay/internal/service"
	"delrio-stay/internal/util"
	"delrio-stay/internal/view"
)

type AdminHandler struct {
	pages     *Pages
	admin     *service.AdminService
	dashboard *service.DashboardService
	photos    util.PhotoLimits
}

func NewAdminHandler(pages *Pages, admin *service.AdminService, dashboard *service.DashboardService, photos util.PhotoLimits) *AdminHandler {
	return &AdminHandler{pages: pages, admin: admin, dashboard: dashboard, photos: photos}
}

var (
	dashboardMeta     = pageMeta{name: "admin_dashboard", title: "Admin", active: "admin"}
	adminRoomsMeta    = pageMeta{name: "admin_rooms", title: "Manage rooms", active: "admin"}
	adminBookingsMeta = pageMeta{name: "admin_bookings", title: "Manage bookings", active: "admin"}
	adminUsersMeta    = pageMeta{name: "admin_users", title: "Manage users", active: "admin"}
)

type dashboardPage struct {
	Stats  service.DashboardStats
	Failed bool
}

// Dashboard shows the aggregated stats. Any failed fetch fails the whole
// view.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "dashboard stats unavailable", "error", err)
		h.pages.render(w, r, statusFor(err), dashboardMeta, dashboardPage{Failed: true}, view.Error("Failed to load dashboard statistics"))
		return
	}
	h.pages.render(w, r, http.StatusOK, dashboardMeta, dashboardPage{Stats: stats}, nil)
}

type adminRoomsPage struct {
	Rooms    service.AdminRooms
	Filter   string
	Options  []string
	Form     model.RoomForm
	Editing  int64
	ShowForm bool
	Confirm  int64
}

// Rooms lists the rooms. ?new=1 opens an empty form, ?edit={id} the form
// for that room and ?confirm={id} the delete confirmation.
func (h *AdminHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	page := adminRoomsPage{
		Filter:   strings.TrimSpace(r.URL.Query().Get("type")),
		Confirm:  queryID(r, "confirm"),
		ShowForm: r.URL.Query().Get("new") != "",
		Form:     model.RoomForm{NumOfAdults: 1},
	}

	if id := queryID(r, "edit"); id > 0 {
		room, err := h.admin.Room(r.Context(), id)
		if err != nil {
			h.pages.redirect(w, r, "/admin/rooms", view.Error("Failed to load rooms"))
			return
		}
		page.Editing = id
		page.ShowForm = true
		page.Form = roomFormOf(room)
	}

	h.renderRooms(w, r, http.StatusOK, page, nil)
}

func (h *AdminHandler) renderRooms(w http.ResponseWriter, r *http.Request, status int, page adminRoomsPage, flash *view.Flash) {
	rooms, err := h.admin.Rooms(r.Context(), page.Filter)
	if err != nil {
		slog.WarnContext(r.Context(), "admin rooms unavailable", "error", err)
		if flash == nil {
			flash = view.Error("Failed to load rooms")
			status = statusFor(err)
		}
	}
	page.Rooms = rooms
	page.Options = service.RoomTypeOptions(rooms.Types)

	h.pages.render(w, r, status, adminRoomsMeta, page, flash)
}

func roomFormOf(room model.Room) model.RoomForm {
	return model.RoomForm{
		RoomType:        room.RoomType,
		RoomPrice:       strconv.FormatFloat(room.RoomPrice, 'f', -1, 64),
		RoomDescription: room.RoomDescription,
		NumOfAdults:     room.MaxAdults(),
		NumOfChildren:   room.NumOfChildren,
		IsBooked:        room.IsBooked,
	}
}

// CreateRoom and UpdateRoom share SaveRoom; the id comes from the path.
func (h *AdminHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	h.saveRoom(w, r, 0)
}

func (h *AdminHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.pages.NotFound(w, r)
		return
	}
	h.saveRoom(w, r, id)
}

func (h *AdminHandler) saveRoom(w http.ResponseWriter, r *http.Request, id int64) {
	page := adminRoomsPage{Editing: id, ShowForm: true}

	form, err := h.readRoomForm(w, r)
	page.Form = form
	if err == nil {
		_, err = h.admin.SaveRoom(r.Context(), id, form)
	}
	if err != nil {
		fallback := "Failed to save room"
		if !errors.Is(err, model.ErrInvalidInput) {
			slog.WarnContext(r.Context(), "save room failed", "room_id", id, "error", err)
		}
		// The upload is not kept between attempts.
		page.Form.Photo = nil
		h.renderRooms(w, r, statusFor(err), page, view.Error(serverMessageFor(err, fallback)))
		return
	}

	message := "Room added successfully"
	if id != 0 {
		message = "Room updated successfully"
	}
	slog.InfoContext(r.Context(), "room saved", "room_id", id, "type", form.RoomType)
	h.pages.redirect(w, r, "/admin/rooms", view.Success(message))
}

// readRoomForm parses the multipart room form, preparing the photo when one
// was uploaded.
func (h *AdminHandler) readRoomForm(w http.ResponseWriter, r *http.Request) (model.RoomForm, error) {
	limit := h.photos.MaxBytes
	if limit <= 0 {
		limit = util.DefaultMaxPhotoBytes
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))
	if err := r.ParseMultipartForm(limit + (1 << 20)); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return model.RoomForm{}, model.Invalid("photo", fmt.Sprintf("The photo must be smaller than %d MB", (limit+(1<<20)-1)>>20))
		}
		return model.RoomForm{}, model.Invalid("room", "Please fill in all fields")
	}

	form := model.RoomForm{
		RoomType:        r.FormValue("roomType"),
		RoomPrice:       r.FormValue("roomPrice"),
		RoomDescription: r.FormValue("roomDescription"),
		IsBooked:        r.FormValue("isBooked") == "true",
	}
	if custom := strings.TrimSpace(r.FormValue("customRoomType")); custom != "" {
		form.RoomType = custom
	}
	form.NumOfAdults, _ = strconv.Atoi(r.FormValue("numOfAdults"))
	form.NumOfChildren, _ = strconv.Atoi(r.FormValue("numOfChildren"))

	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, nil
	}
	if err != nil {
		return form, model.Invalid("photo", "The photo could not be read")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return form, model.Invalid("photo", "The photo could not be read")
	}

	photo, err := h.photos.Prepare(header.Filename, data)
	if err != nil {
		return form, err
	}
	form.Photo = photo
	return form, nil
}

func (h *AdminHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.pages.NotFound(w, r)
		return
	}

	if err := h.admin.DeleteRoom(r.Context(), id); err != nil {
		slog.WarnContext(r.Context(), "delete room failed", "room_id", id, "error", err)
		h.pages.redirect(w, r, "/admin/rooms", view.Error(serverMessageFor(err, "Failed to delete room")))
		return
	}

	slog.InfoContext(r.Context(), "room deleted", "room_id", id)
	h.pages.redirect(w, r, "/admin/rooms", view.Success("Room deleted successfully"))
}

type adminBookingsPage struct {
	Bookings service.AdminBookings
	Filter   string
	Confirm  int64
}

func (h *AdminHandler) Bookings(w http.ResponseWriter, r *http.Request) {
	page := adminBookingsPage{
		Filter:  strings.TrimSpace(r.URL.Query().Get("email")),
		Confirm: queryID(r, "confirm"),
	}

	bookings, err := h.admin.Bookings(r.Context(), page.Filter)
	if err != nil {
		slog.WarnContext(r.Context(), "admin bookings unavailable", "error", err)
		h.pages.render(w, r, statusFor(err), adminBookingsMeta, page, view.Error("Failed to load bookings"))
		return
	}

	page.Bookings = bookings
	h.pages.render(w, r, http.StatusOK, adminBookingsMeta, page, nil)
}

func (h *AdminHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.pages.NotFound(w, r)
		return
	}

	if err := h.admin.CancelBooking(r.Context(), id); err != nil {
		slog.WarnContext(r.Context(), "admin cancel booking failed", "booking_id", id, "error", err)
		h.pages.redirect(w, r, "/admin/bookings", view.Error(serverMessageFor(err, "Failed to cancel booking")))
		return
	}

	slog.InfoContext(r.Context(), "booking cancelled by admin", "booking_id", id)
	h.pages.redirect(w, r, "/admin/bookings", view.Success("Booking cancelled successfully"))
}

type adminUsersPage struct {
	Users   service.AdminUsers
	Filter  string
	Confirm int64
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	page := adminUsersPage{
		Filter:  strings.TrimSpace(r.URL.Query().Get("email")),
		Confirm: queryID(r, "confirm"),
	}

	users, err := h.admin.Users(r.Context(), page.Filter)
	if err != nil {
		slog.WarnContext(r.Context(), "admin users unavailable", "error", err)
		h.pages.render(w, r, statusFor(err), adminUsersMeta, page, view.Error("Failed to load users"))
		return
	}

	page.Users = users
	h.pages.render(w, r, http.StatusOK, adminUsersMeta, page, nil)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.pages.NotFound(w, r)
		return
	}

	if err := h.admin.DeleteUser(r.Context(), id); err != nil {
		slog.WarnContext(r.Context(), "delete user failed", "user_id", id, "error", err)
		h.pages.redirect(w, r, "/admin/users", view.Error(serverMessageFor(err, "Failed to delete user")))
		return
	}

	slog.InfoContext(r.Context(), "user deleted", "user_id", id)
	h.pages.redirect(w, r, "/admin/users", view.Success("User deleted successfully"))
}
