package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"delrio-stay/internal/middleware"
	"delrio-stay/internal/model"
	"delrio-stay/internal/service"
	"delrio-stay/internal/view"
)

type RoomHandler struct {
	pages   *Pages
	catalog *service.CatalogService
	booking *service.BookingService
	now     func() time.Time
}

func NewRoomHandler(pages *Pages, catalog *service.CatalogService, booking *service.BookingService) *RoomHandler {
	return &RoomHandler{pages: pages, catalog: catalog, booking: booking, now: time.Now}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := service.RoomQuery{
		Type:      strings.TrimSpace(query.Get("type")),
		Available: query.Get("available") == "true",
	}
	q.Page, _ = strconv.Atoi(query.Get("page"))

	meta := pageMeta{name: "rooms", title: "Rooms", active: "rooms"}

	listing, err := h.catalog.Browse(r.Context(), q)
	if err != nil {
		slog.WarnContext(r.Context(), "room list unavailable", "error", err)
		listing = service.RoomListing{Query: q, Page: service.Paginate(0, 1, service.RoomsPerPage)}
		h.pages.render(w, r, statusFor(err), meta, struct{ Listing service.RoomListing }{listing}, view.Error("Failed to load rooms"))
		return
	}

	h.pages.render(w, r, http.StatusOK, meta, struct{ Listing service.RoomListing }{listing}, nil)
}

type roomPage struct {
	Room         model.Room
	Form         model.BookingForm
	Quote        *service.Quote
	Confirmation string
	QR           template.URL
	Today        string
}

func (h *RoomHandler) newRoomPage(room model.Room, form model.BookingForm) roomPage {
	page := roomPage{Room: room, Form: form, Today: model.DateOf(h.now()).String()}
	if quote, ok := service.Estimate(form, room); ok {
		page.Quote = &quote
	}
	return page
}

// emptyBookingForm is the form as first shown, prefilled for signed in guests.
func guestCounts() model.BookingForm {
	return model.BookingForm{NumOfAdults: "1", NumOfChildren: "0"}
}

// emptyBookingForm is the form a visitor first sees: one adult, and the
// signed in guest's own name and email.
func emptyBookingForm(r *http.Request) model.BookingForm {
	form := guestCounts()
	if session := middleware.SessionFromContext(r.Context()); session.IsAuthenticated() {
		if name := strings.TrimSpace(session.User.FirstName + " " + session.User.LastName); name != "" {
			form.GuestFullName = name
		}
		form.GuestEmail = session.User.Email
	}
	return form
}

// bookingForm reads the booking fields from values on top of form, keeping
// form's value for anything not sent.
func bookingForm(form model.BookingForm, get func(string) string) model.BookingForm {
	set := func(field *string, key string) {
		if v := get(key); v != "" {
			*field = v
		}
	}
	set(&form.CheckInDate, "checkInDate")
	set(&form.CheckOutDate, "checkOutDate")
	set(&form.GuestFullName, "guestFullName")
	set(&form.GuestEmail, "guestEmail")
	set(&form.NumOfAdults, "numOfAdults")
	set(&form.NumOfChildren, "numOfChildren")
	return form
}

func (h *RoomHandler) roomMeta(room model.Room) pageMeta {
	return pageMeta{name: "room", title: room.RoomType, active: "rooms"}
}

// loadRoom fetches the room named in the URL, rendering the not found or
// error page itself when that fails.
func (h *RoomHandler) loadRoom(w http.ResponseWriter, r *http.Request) (model.Room, bool) {
	id, ok := idParam(r, "id")
	if !ok {
		h.pages.NotFound(w, r)
		return model.Room{}, false
	}

	room, err := h.catalog.Room(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrRoomNotFound) {
			h.pages.NotFound(w, r)
			return model.Room{}, false
		}
		h.pages.failure(w, r, err, "Failed to load the room. Please try again.")
		return model.Room{}, false
	}
	return room, true
}

// Detail shows the room and its booking form. The form's "Check price"
// button submits here with GET, so any dates in the query are priced.
func (h *RoomHandler) Detail(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}

	form := bookingForm(emptyBookingForm(r), r.URL.Query().Get)
	h.pages.render(w, r, http.StatusOK, h.roomMeta(room), h.newRoomPage(room, form), nil)
}

func (h *RoomHandler) Book(w http.ResponseWriter, r *http.Request) {
	room, ok := h.loadRoom(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.pages.render(w, r, http.StatusBadRequest, h.roomMeta(room), h.newRoomPage(room, emptyBookingForm(r)), view.Error("Invalid booking form"))
		return
	}

	form := bookingForm(guestCounts(), r.PostForm.Get)

	code, err := h.booking.Book(r.Context(), room, form)
	if err != nil {
		message := messageFor(err, "Failed to create booking. Please try again.")
		if !errors.Is(err, model.ErrInvalidInput) {
			slog.WarnContext(r.Context(), "booking failed", "room_id", room.ID, "error", err)
		}
		h.pages.render(w, r, statusFor(err), h.roomMeta(room), h.newRoomPage(room, form), view.Error(message))
		return
	}

	slog.InfoContext(r.Context(), "booking created", "room_id", room.ID, "code", code)

	page := h.newRoomPage(room, emptyBookingForm(r))
	page.Confirmation = code
	if code != "" {
		qr, err := view.QRDataURI(code)
		if err != nil {
			slog.WarnContext(r.Context(), "qr code failed", "code", code, "error", err)
		}
		page.QR = qr
	}

	h.pages.render(w, r, http.StatusOK, h.roomMeta(room), page, view.Success("Confirmed booking"))
}

// QR serves the confirmation code as a PNG image.
func (h *RoomHandler) QR(w http.ResponseWriter, r *http.Request) {
	code := service.NormalizeConfirmationCode(chi.URLParam(r, "code"))
	if code == "" || len(code) > 64 {
		http.Error(w, "invalid confirmation code", http.StatusBadRequest)
		return
	}

	png, err := view.QRCode(code, view.QRSize)
	if err != nil {
		slog.ErrorContext(r.Context(), "qr code failed", "code", code, "error", err)
		http.Error(w, "could not generate qr code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
