package handler

import (
	"html/template"
	"net/http"

	"delrio-stay/internal/middleware"
	"delrio-stay/internal/model"
	"delrio-stay/internal/service"
	"delrio-stay/internal/view"
)

type amenity struct {
	Title       string
	Description string
}

var homeAmenities = []amenity{
	{Title: "Free WiFi", Description: "High speed connection in every room and common area."},
	{Title: "Restaurant", Description: "Regional cuisine with a view of the river."},
	{Title: "Pool & Spa", Description: "Relax in our heated pool and wellness area."},
	{Title: "Water sports", Description: "Kayaks, paddle boards and guided boat trips."},
}

// SiteHandler serves the public pages that need no booking data beyond the
// featured rooms.
type SiteHandler struct {
	pages   *Pages
	catalog *service.CatalogService
	contact *service.ContactService
	content view.ContentPages
}

func NewSiteHandler(pages *Pages, catalog *service.CatalogService, contact *service.ContactService, content view.ContentPages) *SiteHandler {
	return &SiteHandler{pages: pages, catalog: catalog, contact: contact, content: content}
}

type homePage struct {
	Featured  []model.Room
	Failed    bool
	Amenities []amenity
}

func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := homePage{Amenities: homeAmenities}

	featured, err := h.catalog.Featured(r.Context())
	if err != nil {
		data.Failed = true
	}
	data.Featured = featured

	h.pages.render(w, r, http.StatusOK, pageMeta{name: "home", active: "home"}, data, nil)
}

// Content serves one of the embedded markdown pages.
func (h *SiteHandler) Content(name string, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := h.content[name]
		if !ok {
			h.pages.NotFound(w, r)
			return
		}
		h.pages.render(w, r, http.StatusOK, pageMeta{name: "content", title: title, active: name}, struct{ Body template.HTML }{Body: body}, nil)
	}
}

type contactPage struct {
	Form model.ContactForm
}

var contactMeta = pageMeta{name: "contact", title: "Contact", active: "contact"}

func (h *SiteHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, contactMeta, contactPage{}, nil)
}

func (h *SiteHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.render(w, r, http.StatusBadRequest, contactMeta, contactPage{}, view.Error("Please fill in all required fields"))
		return
	}

	form := model.ContactForm{
		FirstName: r.PostFormValue("firstName"),
		LastName:  r.PostFormValue("lastName"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("phone"),
		Subject:   r.PostFormValue("subject"),
		Message:   r.PostFormValue("message"),
	}

	if err := h.contact.Submit(r.Context(), form); err != nil {
		h.pages.render(w, r, statusFor(err), contactMeta, contactPage{Form: form}, view.Error(messageFor(err, "Failed to send message")))
		return
	}

	h.pages.redirect(w, r, "/contact", view.Success("Message sent successfully! We will contact you soon."))
}

// ToggleTheme flips the theme cookie and returns to the page it came from.
func (h *SiteHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	view.SetTheme(w, view.ThemeFromRequest(r).Toggled(), h.pages.secure)
	http.Redirect(w, r, localPath(r.Referer(), r.Host, "/"), http.StatusSeeOther)
}

// Session exposes the resolved auth state to client scripts.
func (h *SiteHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.SessionFromContext(r.Context()).View())
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
