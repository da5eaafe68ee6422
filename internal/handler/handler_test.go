package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delrio-stay/internal/api"
	"delrio-stay/internal/middleware"
	"delrio-stay/internal/model"
	"delrio-stay/internal/service"
	"delrio-stay/internal/util"
	"delrio-stay/internal/view"
	"delrio-stay/pkg/apierror"
)

func writeBackendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestPages(t *testing.T) *Pages {
	t.Helper()

	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	return NewPages(renderer, false)
}

func newBackendClient(t *testing.T, routes func(r chi.Router)) *api.Client {
	t.Helper()

	r := chi.NewRouter()
	routes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return api.New(server.URL, 5*time.Second, middleware.SessionToken)
}

// signedIn runs every request as an authenticated visitor with role.
func signedIn(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := model.Session{
				State: model.SessionAuthenticated,
				Token: "tok-guest",
				User:  model.Identity{Email: "guest@delrio.com", FirstName: "Gus", LastName: "Test", Role: role},
			}
			next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), session)))
		})
	}
}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestRoomHandler_Book(t *testing.T) {
	t.Parallel()

	var (
		mu       sync.Mutex
		received []map[string]any
		failNext bool
	)
	client := newBackendClient(t, func(r chi.Router) {
		r.Get("/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
			if chi.URLParam(r, "id") != "5" {
				writeBackendJSON(w, http.StatusNotFound, map[string]any{"message": "Room not found"})
				return
			}
			writeBackendJSON(w, http.StatusOK, map[string]any{
				"id": 5, "roomType": "Suite", "roomPrice": 100, "roomDescription": "Sea view", "capacity": 3,
			})
		})
		r.Post("/bookings/room/{id}", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)

			mu.Lock()
			defer mu.Unlock()
			if failNext {
				writeBackendJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
				return
			}
			received = append(received, body)
			writeBackendJSON(w, http.StatusOK, map[string]any{"message": "ok", "data": "XYZ789"})
		})
	})

	catalog := service.NewCatalogService(client)
	h := NewRoomHandler(newTestPages(t), catalog, service.NewBookingService(client))

	r := chi.NewRouter()
	r.Use(signedIn(model.RoleUser))
	r.Get("/rooms/{id}", h.Detail)
	r.Post("/rooms/{id}/book", h.Book)

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/rooms/5/book", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("checkout before check-in keeps the form", func(t *testing.T) {
		rec := post(url.Values{
			"checkInDate":   {day(5)},
			"checkOutDate":  {day(3)},
			"guestFullName": {"Maria Lopez"},
			"guestEmail":    {"maria@delrio.com"},
			"numOfAdults":   {"2"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "The departure date must be later than the arrival date")
		assert.Contains(t, rec.Body.String(), `value="Maria Lopez"`)

		mu.Lock()
		defer mu.Unlock()
		assert.Empty(t, received)
	})

	t.Run("over capacity", func(t *testing.T) {
		rec := post(url.Values{
			"checkInDate":   {day(5)},
			"checkOutDate":  {day(7)},
			"guestFullName": {"Maria Lopez"},
			"guestEmail":    {"maria@delrio.com"},
			"numOfAdults":   {"3"},
			"numOfChildren": {"1"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Maximum capacity: 3 guests")
	})

	t.Run("signed in guest must still name the booking", func(t *testing.T) {
		rec := post(url.Values{
			"checkInDate":   {day(5)},
			"checkOutDate":  {day(8)},
			"guestFullName": {"  "},
			"guestEmail":    {"guest@delrio.com"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Enter you full name")

		rec = post(url.Values{
			"checkInDate":   {day(5)},
			"checkOutDate":  {day(8)},
			"guestFullName": {"Gus Test"},
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Enter you email")

		mu.Lock()
		defer mu.Unlock()
		assert.Empty(t, received)
	})

	t.Run("confirmed", func(t *testing.T) {
		rec := post(url.Values{
			"checkInDate":   {day(5)},
			"checkOutDate":  {day(8)},
			"guestFullName": {"Gus Test"},
			"guestEmail":    {"guest@delrio.com"},
			"numOfAdults":   {"2"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "XYZ789")
		assert.Contains(t, body, "Confirmed booking")
		assert.Contains(t, body, "data:image/png;base64,")

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, received, 1)
		assert.Equal(t, "guest@delrio.com", received[0]["guestEmail"])
		assert.Equal(t, "Gus Test", received[0]["guestFullName"])
		assert.Equal(t, day(5), received[0]["checkInDate"])
	})

	t.Run("backend failure", func(t *testing.T) {
		mu.Lock()
		failNext = true
		mu.Unlock()

		rec := post(url.Values{
			"checkInDate":   {day(5)},
			"checkOutDate":  {day(8)},
			"guestFullName": {"Gus Test"},
			"guestEmail":    {"guest@delrio.com"},
		})
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Failed to create booking. Please try again.")
		assert.Contains(t, rec.Body.String(), day(8))
	})

	t.Run("price estimate ignores guests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms/5?checkInDate="+day(2)+"&checkOutDate="+day(5)+"&numOfAdults=3", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Total: $300.00")
	})

	t.Run("unknown room", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/rooms/99", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Page not found")
	})
}

func TestRoomHandler_QR(t *testing.T) {
	t.Parallel()

	h := NewRoomHandler(newTestPages(t), nil, nil)
	r := chi.NewRouter()
	r.Get("/bookings/qr/{code}", h.QR)

	req := httptest.NewRequest(http.MethodGet, "/bookings/qr/abc123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	require.NoError(t, err)
}

func pngBytes(t *testing.T, width int, height int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func roomUpload(t *testing.T, fields map[string]string, photo []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if photo != nil {
		part, err := writer.CreateFormFile("photo", `../suite "main".png`)
		require.NoError(t, err)
		_, err = part.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestAdminHandler_CreateRoom(t *testing.T) {
	t.Parallel()

	type upload struct {
		roomType    string
		price       string
		filename    string
		contentType string
		size        int
	}
	var (
		mu      sync.Mutex
		uploads []upload
	)
	client := newBackendClient(t, func(r chi.Router) {
		r.Get("/rooms/all", func(w http.ResponseWriter, r *http.Request) {
			writeBackendJSON(w, http.StatusOK, []any{})
		})
		r.Get("/rooms/types", func(w http.ResponseWriter, r *http.Request) {
			writeBackendJSON(w, http.StatusOK, []string{"Suite"})
		})
		r.Post("/rooms/add", func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				writeBackendJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
				return
			}
			u := upload{roomType: r.FormValue("roomType"), price: r.FormValue("roomPrice")}
			if file, header, err := r.FormFile("photo"); err == nil {
				data, _ := io.ReadAll(file)
				_ = file.Close()
				u.filename = header.Filename
				u.contentType = header.Header.Get("Content-Type")
				u.size = len(data)
			}
			mu.Lock()
			uploads = append(uploads, u)
			mu.Unlock()
			writeBackendJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": 11, "roomType": u.roomType}})
		})
	})

	catalog := service.NewCatalogService(client)
	h := NewAdminHandler(newTestPages(t), service.NewAdminService(client, catalog), service.NewDashboardService(client), util.PhotoLimits{MaxBytes: 1 << 20, MaxWidth: 100})

	r := chi.NewRouter()
	r.Use(signedIn(model.RoleAdmin))
	r.Post("/admin/rooms", h.CreateRoom)

	send := func(fields map[string]string, photo []byte) *httptest.ResponseRecorder {
		body, contentType := roomUpload(t, fields, photo)
		req := httptest.NewRequest(http.MethodPost, "/admin/rooms", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	t.Run("custom type and downscaled photo", func(t *testing.T) {
		rec := send(map[string]string{
			"roomType":        "Suite",
			"customRoomType":  "Penthouse",
			"roomPrice":       "450",
			"roomDescription": "Top floor",
			"numOfAdults":     "2",
		}, pngBytes(t, 300, 60))

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/rooms", rec.Header().Get("Location"))

		mu.Lock()
		defer mu.Unlock()
		require.Len(t, uploads, 1)
		assert.Equal(t, "Penthouse", uploads[0].roomType)
		assert.Equal(t, "450", uploads[0].price)
		assert.Equal(t, "image/png", uploads[0].contentType)
		assert.NotContains(t, uploads[0].filename, "/")
		assert.Positive(t, uploads[0].size)
	})

	t.Run("missing price re-renders the form", func(t *testing.T) {
		rec := send(map[string]string{
			"roomType":        "Suite",
			"roomDescription": "No price",
		}, nil)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please fill in all fields")
		assert.Contains(t, rec.Body.String(), "No price")

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, uploads, 1)
	})

	t.Run("not an image", func(t *testing.T) {
		rec := send(map[string]string{
			"roomType":        "Suite",
			"roomPrice":       "100",
			"roomDescription": "Text photo",
		}, []byte("just some text, definitely not a picture"))

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		mu.Lock()
		defer mu.Unlock()
		assert.Len(t, uploads, 1)
	})
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", model.Invalid("email", "Enter you email"), http.StatusUnprocessableEntity},
		{"forbidden", fmt.Errorf("cancel: %w", model.ErrForbidden), http.StatusForbidden},
		{"invalid token", model.ErrInvalidToken, http.StatusUnauthorized},
		{"room not found", fmt.Errorf("room 3: %w", model.ErrRoomNotFound), http.StatusNotFound},
		{"booking failed", fmt.Errorf("%w: boom", service.ErrBookingFailed), http.StatusBadGateway},
		{"backend 404", apierror.New("GET", "/x", http.StatusNotFound, ""), http.StatusNotFound},
		{"backend 500", apierror.New("GET", "/x", http.StatusInternalServerError, ""), http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestServerMessageFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Email already exists", serverMessageFor(apierror.New("POST", "/auth/register", http.StatusConflict, "Email already exists"), "Failed"))
	assert.Equal(t, "Failed", serverMessageFor(apierror.New("POST", "/auth/register", http.StatusInternalServerError, "stack trace"), "Failed"))
	assert.Equal(t, "Passwords do not match", serverMessageFor(model.Invalid("confirmPassword", "Passwords do not match"), "Failed"))
}

func TestLocalPath(t *testing.T) {
	t.Parallel()

	const host = "localhost:8080"
	tests := []struct {
		raw  string
		want string
	}{
		{"http://localhost:8080/rooms?page=2", "/rooms?page=2"},
		{"/my-bookings", "/my-bookings"},
		{"http://localhost:8080/rooms/%3Cb%3E", "/rooms/%3Cb%3E"},
		{"", "/"},
		{"//evil.example/x", "/"},
		{"https://evil.example/rooms", "/"},
		{"http://user@localhost:8080/rooms", "/"},
		{"javascript:alert(1)", "/"},
		{"http://localhost:8080/%5Cevil.example", "/"},
		{"http://localhost:8080/%5cevil.example", "/"},
		{"/\\evil.example", "/"},
		{"http://localhost:8080//evil.example", "/"},
		{"http://localhost:8080/%2F%2Fevil.example", "/"},
		{"rooms", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, localPath(tt.raw, host, "/"))
		})
	}
}

func TestSiteHandler_ToggleThemeStaysOnSite(t *testing.T) {
	t.Parallel()

	h := NewSiteHandler(newTestPages(t), nil, nil, nil)

	tests := map[string]string{
		"http://example.com/rooms?page=2":    "/rooms?page=2",
		"http://example.com/%5Cevil.example": "/",
		"http://evil.example/rooms":          "/",
		"":                                   "/",
	}
	for referer, want := range tests {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/theme", nil)
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		rec := httptest.NewRecorder()
		h.ToggleTheme(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code, referer)
		assert.Equal(t, want, rec.Header().Get("Location"), referer)
		assert.NotEmpty(t, rec.Result().Cookies(), referer)
	}
}
