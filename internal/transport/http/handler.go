package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
)

// DefaultCookieName carries the session token.
const DefaultCookieName = "quiz_session"

// CookieOptions controls the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// Handler exposes the quiz use cases as a JSON API.
type Handler struct {
	auth    *app.AuthService
	quiz    *app.QuizService
	reports *app.ReportService
	cookie  CookieOptions
}

func NewHandler(auth *app.AuthService, quiz *app.QuizService, reports *app.ReportService, cookie CookieOptions) *Handler {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	return &Handler{auth: auth, quiz: quiz, reports: reports, cookie: cookie}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("GET /me", h.me)
	mux.HandleFunc("POST /set_week", h.requireSession(h.setWeek))
	mux.HandleFunc("GET /themes_difs", h.requireSession(h.catalog))
	mux.HandleFunc("POST /start_quiz", h.requireSession(h.startQuiz))
	mux.HandleFunc("GET /question", h.requireSession(h.question))
	mux.HandleFunc("POST /answer", h.requireSession(h.answer))
	mux.HandleFunc("POST /next_question", h.requireSession(h.nextQuestion))
	mux.HandleFunc("GET /history", h.requireSession(h.history))
	mux.HandleFunc("GET /export/users_csv", h.requireSession(h.exportUsers))
	mux.HandleFunc("GET /export/interactions_csv", h.requireSession(h.exportInteractions))
}

// requireSession rejects anonymous requests before the body is read.
func (h *Handler) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.auth.Authenticate(r.Context(), h.token(r)); err != nil {
			writeError(w, err)
			return
		}
		next(w, r)
	}
}

// flexInt accepts both 5 and "5".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %q is not an integer", domain.ErrInvalidInput, s)
	}
	*f = flexInt(n)
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type weekRequest struct {
	Week *flexInt `json:"week"`
}

type startRequest struct {
	Topics     string   `json:"topics"`
	Theme      string   `json:"theme"`
	Difficulty *flexInt `json:"difficulty"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type nextRequest struct {
	Continue bool `json:"continue"`
}

type nextResponse struct {
	End     bool   `json:"end"`
	Message string `json:"message,omitempty"`
	*domain.QuestionView
}

type historyItem struct {
	QuestionID int       `json:"question_id"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"ts"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req domain.Registration
	if !decode(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user_id": user.ID})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), h.token(r)); err != nil {
		log.Printf("logout: %v", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.Authenticate(r.Context(), h.token(r))
	if errors.Is(err, domain.ErrUnauthenticated) {
		writeJSON(w, http.StatusOK, map[string]any{"logged": false})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logged": true, "user_id": session.UserID})
}

func (h *Handler) setWeek(w http.ResponseWriter, r *http.Request) {
	var req weekRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Week == nil {
		writeError(w, fmt.Errorf("%w: week is required", domain.ErrInvalidInput))
		return
	}
	week, err := h.quiz.SetWeek(r.Context(), h.token(r), int(*req.Week))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "week": week})
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.quiz.Catalog(r.Context(), h.token(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Difficulty == nil {
		writeError(w, fmt.Errorf("%w: difficulty is required", domain.ErrInvalidInput))
		return
	}
	topics := req.Topics
	if topics == "" {
		topics = req.Theme
	}
	view, err := h.quiz.Start(r.Context(), h.token(r), topics, int(*req.Difficulty))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) question(w http.ResponseWriter, r *http.Request) {
	view, err := h.quiz.Current(r.Context(), h.token(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.quiz.Answer(r.Context(), h.token(r), req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	var req nextRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.quiz.Next(r.Context(), h.token(r), req.Continue)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNextResponse(res))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	items, err := h.quiz.History(r.Context(), h.token(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]historyItem, 0, len(items))
	for _, it := range items {
		out = append(out, historyItem{QuestionID: it.QuestionID, Success: it.Success, Timestamp: it.Timestamp})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) exportUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=users.csv")
	if err := h.reports.UsersCSV(r.Context(), w); err != nil {
		log.Printf("export users: %v", err)
	}
}

func (h *Handler) exportInteractions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=interactions.csv")
	if err := h.reports.InteractionsCSV(r.Context(), w); err != nil {
		log.Printf("export interactions: %v", err)
	}
}

// token reads the session cookie, falling back to a bearer header for API clients.
func (h *Handler) token(r *http.Request) string {
	if c, err := r.Cookie(h.cookie.Name); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func toNextResponse(res app.NextResult) nextResponse {
	if res.End {
		return nextResponse{End: true, Message: res.Message}
	}
	view := res.Question
	return nextResponse{QuestionView: &view}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, err)
		} else {
			writeError(w, fmt.Errorf("%w: malformed json body", domain.ErrInvalidInput))
		}
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrWeekNotSelected),
		errors.Is(err, domain.ErrNoActiveQuestion),
		errors.Is(err, domain.ErrQuizNotStarted):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoCandidates):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
