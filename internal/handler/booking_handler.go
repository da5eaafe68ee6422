package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"delrio-stay/internal/middleware"
	"delrio-stay/internal/model"
	"delrio-stay/internal/service"
	"delrio-stay/internal/view"
)

type BookingHandler struct {
	pages    *Pages
	lookup   *service.LookupService
	accounts *service.AccountService
}

func NewBookingHandler(pages *Pages, lookup *service.LookupService, accounts *service.AccountService) *BookingHandler {
	return &BookingHandler{pages: pages, lookup: lookup, accounts: accounts}
}

var (
	findMeta       = pageMeta{name: "find_booking", title: "Find booking", active: "find-booking"}
	myBookingsMeta = pageMeta{name: "my_bookings", title: "My bookings", active: "my-bookings"}
)

type findPage struct {
	Mode     service.LookupMode
	Query    string
	NotFound bool
	Booking  *model.Booking
	Bookings []model.Booking
}

// Find looks a booking up by confirmation code or guest email. Without a q
// parameter only the search form is shown.
func (h *BookingHandler) Find(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := findPage{Mode: service.ParseLookupMode(query.Get("by")), Query: strings.TrimSpace(query.Get("q"))}
	if !query.Has("q") {
		h.pages.render(w, r, http.StatusOK, findMeta, page, nil)
		return
	}

	if page.Mode == service.LookupByEmail {
		h.findByEmail(w, r, page)
		return
	}

	page.Query = service.NormalizeConfirmationCode(page.Query)
	booking, err := h.lookup.ByCode(r.Context(), page.Query)
	if err != nil {
		h.lookupFailed(w, r, page, err, "Confirmation code not found")
		return
	}

	page.Booking = &booking
	h.pages.render(w, r, http.StatusOK, findMeta, page, view.Success("Reservation found!"))
}

func (h *BookingHandler) findByEmail(w http.ResponseWriter, r *http.Request, page findPage) {
	bookings, err := h.lookup.ByEmail(r.Context(), page.Query)
	if err != nil {
		h.lookupFailed(w, r, page, err, "No bookings were found for this email")
		return
	}

	page.Bookings = bookings
	h.pages.render(w, r, http.StatusOK, findMeta, page, view.Success(fmt.Sprintf("Found %d reservation(s)", len(bookings))))
}

func (h *BookingHandler) lookupFailed(w http.ResponseWriter, r *http.Request, page findPage, err error, notFound string) {
	if errors.Is(err, model.ErrInvalidInput) {
		h.pages.render(w, r, statusFor(err), findMeta, page, view.Error(messageFor(err, notFound)))
		return
	}

	slog.InfoContext(r.Context(), "booking lookup found nothing", "mode", page.Mode, "error", err)
	page.NotFound = true
	h.pages.render(w, r, http.StatusNotFound, findMeta, page, view.Error(notFound))
}

type myBookingsPage struct {
	Profile  *model.User
	Failed   bool
	Bookings []service.GuestBooking
	Confirm  int64
}

func (h *BookingHandler) newMyBookingsPage(r *http.Request, email string) myBookingsPage {
	page := myBookingsPage{}
	if profile, err := h.accounts.Profile(r.Context(), email); err == nil {
		page.Profile = &profile
	}
	return page
}

func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	email := middleware.SessionFromContext(r.Context()).User.Email
	page := h.newMyBookingsPage(r, email)
	page.Confirm = queryID(r, "confirm")

	bookings, err := h.lookup.MyBookings(r.Context(), email)
	if err != nil {
		slog.WarnContext(r.Context(), "my bookings unavailable", "email", email, "error", err)
		page.Failed = true
		h.pages.render(w, r, statusFor(err), myBookingsMeta, page, view.Error("Failed to load bookings"))
		return
	}

	page.Bookings = bookings
	h.pages.render(w, r, http.StatusOK, myBookingsMeta, page, nil)
}

// Cancel cancels one of the visitor's own upcoming bookings and shows the
// list without it.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		h.pages.NotFound(w, r)
		return
	}

	email := middleware.SessionFromContext(r.Context()).User.Email
	page := h.newMyBookingsPage(r, email)

	bookings, err := h.lookup.CancelOwn(r.Context(), email, id)
	if err != nil {
		slog.WarnContext(r.Context(), "cancel booking failed", "booking_id", id, "error", err)
		message := "Failed to cancel booking"
		if errors.Is(err, model.ErrForbidden) {
			message = "Only upcoming bookings can be cancelled"
		}
		page.Bookings = bookings
		page.Failed = bookings == nil
		h.pages.render(w, r, statusFor(err), myBookingsMeta, page, view.Error(message))
		return
	}

	slog.InfoContext(r.Context(), "booking cancelled by guest", "booking_id", id, "email", email)
	page.Bookings = bookings
	h.pages.render(w, r, http.StatusOK, myBookingsMeta, page, view.Success("Booking cancelled successfully"))
}
