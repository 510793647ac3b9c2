// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"realnobroker/internal/adapters/imagedata"
	"realnobroker/internal/adapters/wavsink"
	"realnobroker/internal/app"
	"realnobroker/internal/domain"
)

type Handlers struct {
	Store    *app.ListingStore
	Listings *app.ListingService
	Sessions *app.Sessions
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(s.timeout))
		r.Use(Sessions(h.Sessions))
		r.Get("/v1/areas", h.listAreas)
		r.Get("/v1/listings", h.listListings)
		r.Post("/v1/listings", h.createListing)
		r.Delete("/v1/filters", h.clearFilters)
		r.Get("/v1/listings/{id}", h.getListing)
		r.Post("/v1/listings/{id}/unlock", h.beginUnlock)
		r.Post("/v1/listings/{id}/unlock/callback", h.unlockCallback)
		r.Get("/v1/listings/{id}/contact", h.getContact)
		r.Get("/v1/notices", h.drainNotices)
	})

	// speech streams audio and waits on synthesis, so it skips the timeout
	s.mux.Group(func(r chi.Router) {
		r.Use(Sessions(h.Sessions))
		r.Post("/v1/speech", h.speak)
		r.Post("/v1/listings/{id}/speech", h.speakListing)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- views ----

type listingView struct {
	domain.Listing
	ContactNumber string `json:"contact_number,omitempty"`
	UnlockState   string `json:"unlock_state"`
}

func viewOf(sess *app.Session, l domain.Listing) listingView {
	v := listingView{Listing: l, UnlockState: sess.Gate.State(l.ID).String()}
	if c, err := sess.Gate.ContactNumber(l); err == nil {
		v.ContactNumber = c
	}
	return v
}

type listingsPage struct {
	Items   []listingView `json:"items"`
	Count   int           `json:"count"`
	Filters filterView    `json:"filters"`
}

type filterView struct {
	Area     string `json:"area"`
	Bedrooms string `json:"bedrooms"`
}

func viewOfFilter(f domain.Filter) filterView {
	fv := filterView{Area: f.Area, Bedrooms: "any"}
	if f.Bedrooms != domain.AnyBedrooms {
		fv.Bedrooms = strconv.Itoa(f.Bedrooms)
	}
	return fv
}

// ---- filter parsing ----

var errBadFilter = errors.New("bad filter")

func parseArea(v string) (string, error) {
	if v == "" || strings.EqualFold(v, domain.AllAreas) {
		return domain.AllAreas, nil
	}
	if !domain.Area(v).Valid() {
		return "", errBadFilter
	}
	return v, nil
}

func parseBedrooms(v string) (int, error) {
	if v == "" || strings.EqualFold(v, "any") || strings.EqualFold(v, "all") {
		return domain.AnyBedrooms, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errBadFilter
	}
	return n, nil
}

// ---- handlers ----

func (h *Handlers) listAreas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"areas":    domain.Areas,
		"bedrooms": domain.BedroomOptions,
	})
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	q := r.URL.Query()
	if q.Has("area") {
		area, err := parseArea(q.Get("area"))
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid area", "area must be 'all' or a known area")
			return
		}
		sess.SetAreaFilter(area)
	}
	if q.Has("bedrooms") {
		n, err := parseBedrooms(q.Get("bedrooms"))
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid bedrooms", "bedrooms must be 'any' or a positive integer")
			return
		}
		sess.SetBedroomFilter(n)
	}

	f := sess.Filter()
	visible := h.Store.VisibleFor(f)
	out := listingsPage{Items: make([]listingView, 0, len(visible)), Count: len(visible), Filters: viewOfFilter(f)}
	for _, l := range visible {
		out.Items = append(out.Items, viewOf(sess, l))
	}

	etag, body := calcETagAndBody(out)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listListings body")
	}
}

func (h *Handlers) clearFilters(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.ClearFilters()
	writeJSON(w, http.StatusOK, map[string]any{"filters": viewOfFilter(sess.Filter())})
}

// maxDraftBytes caps a listing body, inline data: images included.
const maxDraftBytes = 32 << 20

var errDraftTooLarge = errors.New("listing body exceeds 32MB")

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDraftBytes)
	d, err := decodeDraft(r)
	if errors.Is(err, errDraftTooLarge) {
		writeProblem(w, http.StatusRequestEntityTooLarge, "Body too large", err.Error())
		return
	}
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	l, err := h.Listings.CreateListing(r.Context(), d)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeProblem(w, http.StatusUnprocessableEntity, "Validation failed", err.Error())
			return
		}
		log.Error().Err(err).Msg("create listing failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Location", "/v1/listings/"+l.ID)
	writeJSON(w, http.StatusCreated, viewOf(sessionFrom(r), l))
}

// decodeDraft accepts either a JSON body or the post-property form as
// multipart/form-data with photos under "images".
func decodeDraft(r *http.Request) (domain.Draft, error) {
	var d domain.Draft
	var tooLarge *http.MaxBytesError
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			if errors.As(err, &tooLarge) {
				return d, errDraftTooLarge
			}
			return d, errors.New("body must be a JSON listing draft")
		}
		return d, nil
	}

	if err := r.ParseMultipartForm(maxDraftBytes); err != nil {
		if errors.As(err, &tooLarge) {
			return d, errDraftTooLarge
		}
		return d, errors.New("malformed multipart form")
	}
	num := func(k string) int64 {
		n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(k)), 10, 64)
		return n
	}
	d = domain.Draft{
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		Price:         num("price"),
		Deposit:       num("deposit"),
		Location:      domain.Area(r.FormValue("location")),
		Bedrooms:      int(num("bhk")),
		Type:          domain.PropertyType(r.FormValue("type")),
		Furnishing:    domain.Furnishing(r.FormValue("furnishing")),
		ContactNumber: r.FormValue("contact_number"),
		Images:        r.MultipartForm.Value["image_urls"],
	}
	if files := r.MultipartForm.File["images"]; len(files) > 0 {
		urls, err := imagedata.FromFiles(files)
		if err != nil {
			return d, err
		}
		d.Images = append(d.Images, urls...)
	}
	return d, nil
}

func (h *Handlers) lookup(w http.ResponseWriter, r *http.Request) (domain.Listing, bool) {
	l, err := h.Store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
		return domain.Listing{}, false
	}
	return l, true
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sessionFrom(r), l))
}

func (h *Handlers) beginUnlock(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	sess := sessionFrom(r)
	checkout, err := sess.Gate.Begin(r.Context(), l.ID)
	switch {
	case errors.Is(err, domain.ErrUnlockPending):
		writeProblem(w, http.StatusConflict, "Unlock in progress", "a payment for this listing is already open")
		return
	case errors.Is(err, domain.ErrAlreadyUnlocked):
		writeProblem(w, http.StatusConflict, "Already unlocked", "contact number is already visible")
		return
	case errors.Is(err, domain.ErrIntegrationUnavailable):
		writeProblem(w, http.StatusServiceUnavailable, "Payment unavailable",
			"Payment provider failed to load. Please check your internet connection.")
		return
	case err != nil:
		log.Error().Err(err).Str("listing_id", l.ID).Msg("begin unlock failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"checkout":     checkout,
		"unlock_state": sess.Gate.State(l.ID).String(),
	})
}

type callbackBody struct {
	Outcome   string `json:"outcome"`
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

func (h *Handlers) unlockCallback(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var body callbackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be a JSON payment outcome")
		return
	}
	kind, ok := domain.ParseOutcomeKind(body.Outcome)
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid outcome", "outcome must be succeeded, failed or dismissed")
		return
	}

	sess := sessionFrom(r)
	state, err := sess.Gate.Resolve(l.ID, domain.PaymentOutcome{Kind: kind, PaymentRef: body.PaymentID, Reason: body.Reason})
	if errors.Is(err, domain.ErrNoPendingUnlock) {
		writeProblem(w, http.StatusConflict, "No unlock in progress", "state is "+state.String())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(sess, l))
}

func (h *Handlers) getContact(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	c, err := sessionFrom(r).Gate.ContactNumber(l)
	if err != nil {
		writeProblem(w, http.StatusForbidden, "Contact locked", "unlock this listing to see the owner's number")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"owner_name": l.OwnerName, "contact_number": c})
}

func (h *Handlers) drainNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notices": sessionFrom(r).DrainNotices()})
}

type speechBody struct {
	Text   string `json:"text"`
	Button string `json:"button"`
}

func (h *Handlers) speak(w http.ResponseWriter, r *http.Request) {
	var body speechBody
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON with a text field")
			return
		}
	}
	if strings.TrimSpace(body.Text) == "" {
		switch body.Button {
		case "form":
			body.Text = domain.FormAssistantMessage
		case "":
			body.Button = "welcome"
			body.Text = domain.WelcomeMessage
		default:
			body.Text = domain.WelcomeMessage
		}
	}
	if body.Button == "" {
		body.Button = "default"
	}
	h.play(w, r, body.Button, body.Text)
}

func (h *Handlers) speakListing(w http.ResponseWriter, r *http.Request) {
	l, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.play(w, r, "listing:"+l.ID, l.SpeechText())
}

func (h *Handlers) play(w http.ResponseWriter, r *http.Request, button, text string) {
	sink := wavsink.New(w)
	events, ok := sessionFrom(r).Speaker(button).Speak(r.Context(), text, sink)
	if !ok {
		writeProblem(w, http.StatusConflict, "Already speaking", "this button is already playing")
		return
	}
	for ev := range events {
		if ev.Kind != domain.SpeechEnded || ev.Err == nil || sink.Written() {
			continue
		}
		if errors.Is(ev.Err, domain.ErrIntegrationUnavailable) {
			writeProblem(w, http.StatusServiceUnavailable, "Speech unavailable", "speech is not configured")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Speech failed", "could not generate speech")
		return
	}
}
