package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"delrio-stay/internal/config"
	"delrio-stay/internal/handler"
	"delrio-stay/internal/middleware"
	"delrio-stay/internal/session"
	"delrio-stay/internal/view"
)

type Handlers struct {
	Pages    *handler.Pages
	Site     *handler.SiteHandler
	Rooms    *handler.RoomHandler
	Auth     *handler.AuthHandler
	Bookings *handler.BookingHandler
	Admin    *handler.AdminHandler
}

func New(cfg *config.Config, sessions *session.Store, csrfKey []byte, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)
	loadSession := middleware.LoadSession(sessions)
	csrfProtect := middleware.CSRF(csrfKey, cfg.SecureCookies)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimiter.Handler)

	r.Handle("/static/*", view.StaticHandler())
	r.With(middleware.CORS(cfg.CORSOrigins)).Get("/health", handler.Health)

	r.Group(func(web chi.Router) {
		web.Use(middleware.Timeout(cfg.RequestTimeout))
		web.Use(loadSession)

		web.With(middleware.CORS(cfg.CORSOrigins)).Get("/session", h.Site.Session)
		web.With(middleware.CORS(cfg.CORSOrigins)).Get("/bookings/qr/{code}", h.Rooms.QR)

		web.Group(func(pages chi.Router) {
			pages.Use(csrfProtect)

			pages.Get("/", h.Site.Home)
			pages.Get("/services", h.Site.Content("services", "Services"))
			pages.Get("/about", h.Site.Content("about", "About us"))
			pages.Get("/contact", h.Site.ContactForm)
			pages.Post("/contact", h.Site.SubmitContact)
			pages.Post("/theme", h.Site.ToggleTheme)
			pages.Get("/404", h.Pages.NotFound)

			pages.Get("/rooms", h.Rooms.List)
			pages.Get("/rooms/{id}", h.Rooms.Detail)
			pages.With(middleware.RequireAuth).Post("/rooms/{id}/book", h.Rooms.Book)

			pages.Get("/login", h.Auth.LoginForm)
			pages.Post("/login", h.Auth.Login)
			pages.Get("/register", h.Auth.RegisterForm)
			pages.Post("/register", h.Auth.Register)
			pages.Post("/logout", h.Auth.Logout)

			pages.Get("/find-booking", h.Bookings.Find)
			pages.With(middleware.RequireAuth).Get("/my-bookings", h.Bookings.MyBookings)
			pages.With(middleware.RequireAuth).Post("/my-bookings/{id}/cancel", h.Bookings.Cancel)

			pages.Route("/admin", func(admin chi.Router) {
				admin.Use(middleware.RequireAdmin)

				admin.Get("/", h.Admin.Dashboard)
				admin.Get("/rooms", h.Admin.Rooms)
				admin.Post("/rooms", h.Admin.CreateRoom)
				admin.Post("/rooms/{id}", h.Admin.UpdateRoom)
				admin.Post("/rooms/{id}/delete", h.Admin.DeleteRoom)
				admin.Get("/bookings", h.Admin.Bookings)
				admin.Post("/bookings/{id}/cancel", h.Admin.CancelBooking)
				admin.Get("/users", h.Admin.Users)
				admin.Post("/users/{id}/delete", h.Admin.DeleteUser)
			})
		})
	})

	notFound := loadSession(csrfProtect(http.HandlerFunc(h.Pages.NotFound)))
	r.NotFound(notFound.ServeHTTP)

	return r
}
