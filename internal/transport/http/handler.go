package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"quiz-intake-service/internal/app"
	"quiz-intake-service/internal/domain"
)

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// Handler exposes the application services over REST.
type Handler struct {
	services *app.Services
	ws       *WSHandler
	opts     Options
}

func NewHandler(services *app.Services, opts Options) *Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	return &Handler{services: services, ws: NewWSHandler(services), opts: opts}
}

// Routes builds the router. The websocket route sits outside the timeout middleware.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.health)
	r.Get("/ws/notices", h.ws.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(h.opts.RequestTimeout))

		r.Route("/api/quizzes/{quizID}", func(r chi.Router) {
			r.Get("/", h.getQuiz)
			r.Post("/submissions", h.submit)
		})
		r.Get("/api/connectivity", h.connectivity)
		r.Post("/api/connectivity", h.setConnectivity)

		r.Route("/api/admin", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Post("/logout", h.logout)
				r.Get("/quizzes", h.listQuizzes)
				r.Post("/quizzes", h.createQuiz)
				r.Post("/sync", h.sync)
				r.Delete("/queue", h.clearQueue)
				r.Delete("/snapshots/{quizID}", h.clearSnapshot)
			})
		})
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "online": h.services.Monitor.IsOnline()})
}

type quizResponse struct {
	domain.Quiz
	Cached bool `json:"cached"`
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, cached, err := h.services.Quizzes.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Quiz: quiz, Cached: cached})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var draft domain.SubmissionDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid submission payload")
		return
	}
	draft.QuizID = chi.URLParam(r, "quizID")

	result, err := h.services.Flow.Submit(r.Context(), draft)
	if err != nil {
		writeJSON(w, statusFor(err), result)
		return
	}
	status := http.StatusCreated
	if result.State == domain.FlowQueued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

type connectivityResponse struct {
	Online  bool `json:"online"`
	Pending int  `json:"pending"`
}

func (h *Handler) connectivity(w http.ResponseWriter, r *http.Request) {
	pending, err := h.services.Submissions.PendingCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, connectivityResponse{Online: h.services.Monitor.IsOnline(), Pending: pending})
}

func (h *Handler) setConnectivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Online *bool `json:"online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Online == nil {
		writeErr(w, http.StatusBadRequest, "expected {\"online\": bool}")
		return
	}
	// The sync pass triggered by coming online must outlive a disconnecting client.
	h.services.Monitor.SetOnline(context.WithoutCancel(r.Context()), *req.Online)
	h.connectivity(w, r)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid login payload")
		return
	}
	token, err := h.services.Admin.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Admin.Logout(r.Context(), bearerToken(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.services.Quizzes.ListQuizzes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	created, err := h.services.Quizzes.CreateQuiz(r.Context(), quiz)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	if !h.services.Monitor.IsOnline() {
		writeError(w, domain.ErrRemoteUnavailable)
		return
	}
	report, err := h.services.Sync.SyncAll(context.WithoutCancel(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) clearQueue(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Submissions.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearSnapshot(w http.ResponseWriter, r *http.Request) {
	h.services.Quizzes.ClearCachedQuiz(r.Context(), chi.URLParam(r, "quizID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.services.Admin.Authorize(r.Context(), bearerToken(r)); err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	v := r.Header.Get("Authorization")
	if !strings.HasPrefix(v, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(v, "Bearer "))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidQuiz), errors.Is(err, domain.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorage):
		return http.StatusInsufficientStorage
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("http: unexpected error: %v", err)
	}
	writeErr(w, status, err.Error())
}
