package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"facturatie/internal/app"
	"facturatie/internal/reminder"

	"github.com/go-chi/chi/v5"
	"github.com/invopop/jsonschema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultMaxBody = 1 << 20 // 1 MB

// Options configure the HTTP handler.
type Options struct {
	AllowedOrigins []string
	JWTSecret      string
	// MaxBodyBytes caps JSON request bodies; zero means 1 MB.
	MaxBodyBytes int64
	// Registry receives the HTTP metrics and is served at /metrics.
	// Nil uses the Prometheus default registry.
	Registry *prometheus.Registry
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	schemas   map[string]*jsonschema.Schema
	started   time.Time
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}

	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		schemas:   buildSchemas(),
		started:   time.Now(),
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}
	metrics := NewMetrics(registerer)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(metrics.Middleware)

	// ── Public ───────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// ── Protected API routes (return 401 JSON if unauthenticated) ────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(opts.MaxBodyBytes))

		// Calculations
		r.Post("/api/calc/line", h.calcLine)
		r.Post("/api/calc/invoice", h.calcInvoice)
		r.Post("/api/calc/invoice/journal", h.calcJournal)
		r.Post("/api/calc/cash", h.calcCash)
		r.Post("/api/calc/reminder-stage", h.calcReminderStage)
		r.Get("/api/rates", h.exchangeRates)

		// Reminders
		r.Post("/api/reminders/plan", h.planReminders)
		r.Post("/api/reminders/sent", h.markReminderSent)

		// Preferences
		r.Get("/api/preferences/{key}", h.getPreference)
		r.Put("/api/preferences/{key}", h.setPreference)
		r.Delete("/api/preferences/{key}", h.deletePreference)

		// Request schemas
		r.Get("/api/schema", h.listSchemas)
		r.Get("/api/schema/{name}", h.getSchema)

		// Boekhouding backend
		r.Post("/api/boekhouding/verkoopfacturen", h.createSalesInvoice)
		r.Get("/api/boekhouding/verkoopfacturen/{id}", h.getSalesInvoice)
		r.Post("/api/boekhouding/verkoopfacturen/{id}/betaling", h.addPayment)
		r.Get("/api/boekhouding/verkoopfacturen/{id}/pdf", h.downloadInvoicePDF)
		r.Post("/api/boekhouding/debiteuren", h.createCustomer)
	})

	h.router = r
	return r
}

// health returns service status and uptime.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	writeJSON(w, response{Status: "ok", Uptime: time.Since(h.started).Round(time.Second).String()})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 422 when a number is rejected; HTTP 400 for all
// other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			writeError(w, r, "request body is empty", "BAD_REQUEST", http.StatusBadRequest)
		default:
			status, code := classify(err)
			if status == http.StatusInternalServerError {
				status, code = http.StatusBadRequest, "BAD_REQUEST"
			}
			writeError(w, r, "invalid JSON body: "+err.Error(), code, status)
		}
		return false
	}
	return true
}

// ── Calculations ─────────────────────────────────────────────────────────────

func (h *Handler) calcLine(w http.ResponseWriter, r *http.Request) {
	var req app.CalculateLineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CalculateLine(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) calcInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.CalculateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CalculateInvoice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) calcJournal(w http.ResponseWriter, r *http.Request) {
	var req app.CalculateInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.PreviewJournal(r.Context(), tokenFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) calcCash(w http.ResponseWriter, r *http.Request) {
	var req app.CountCashRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CountCash(r.Context(), tokenFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) calcReminderStage(w http.ResponseWriter, r *http.Request) {
	var req app.ReminderStageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ReminderStage(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) exchangeRates(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.ExchangeRates(r.Context(), tokenFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, q)
}

// ── Reminders ────────────────────────────────────────────────────────────────

func (h *Handler) planReminders(w http.ResponseWriter, r *http.Request) {
	var req app.PlanRemindersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.PlanReminders(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) markReminderSent(w http.ResponseWriter, r *http.Request) {
	var action reminder.Action
	if !decodeJSON(w, r, &action) {
		return
	}
	res, err := h.svc.MarkReminderSent(r.Context(), action)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !res.Recorded {
		status = http.StatusOK
	}
	writeJSONStatus(w, status, res)
}

// ── Preferences ──────────────────────────────────────────────────────────────

func (h *Handler) getPreference(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	entry, err := h.svc.GetPreference(r.Context(), claims.Scope(), chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, entry)
}

func (h *Handler) setPreference(w http.ResponseWriter, r *http.Request) {
	var req app.SetPreferenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	claims := authFromContext(r.Context())
	entry, err := h.svc.SetPreference(r.Context(), claims.Scope(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, entry)
}

func (h *Handler) deletePreference(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if err := h.svc.DeletePreference(r.Context(), claims.Scope(), chi.URLParam(r, "key")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Schemas ──────────────────────────────────────────────────────────────────

func (h *Handler) listSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"schemas": schemaNames(h.schemas)})
}

func (h *Handler) getSchema(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s, ok := h.schemas[name]
	if !ok {
		writeError(w, r, "unknown schema "+name, "NOT_FOUND", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_ = json.NewEncoder(w).Encode(s)
}

// ── Boekhouding ──────────────────────────────────────────────────────────────

func (h *Handler) createSalesInvoice(w http.ResponseWriter, r *http.Request) {
	var req app.CreateSalesInvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateSalesInvoice(r.Context(), tokenFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

func (h *Handler) getSalesInvoice(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.GetSalesInvoice(r.Context(), tokenFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	var req app.AddPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AddPayment(r.Context(), tokenFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) downloadInvoicePDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := h.svc.DownloadInvoicePDF(r.Context(), tokenFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "factuur-" + id + ".pdf"}))
	_, _ = w.Write(pdf)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var customer map[string]any
	if !decodeJSON(w, r, &customer) {
		return
	}
	res, err := h.svc.CreateCustomer(r.Context(), tokenFromContext(r.Context()), customer)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}
