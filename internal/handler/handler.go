// Package handler exposes the quiz generator as a JSON HTTP API:
// document upload and listing, question generation, bank browsing, and
// the quiz session lifecycle. Quiz sessions live in memory only and
// are discarded once the result has been returned.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appI18n "github.com/ivyinautumn/Intelligent-question-generator/internal/i18n"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/loader"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/question"
	"github.com/ivyinautumn/Intelligent-question-generator/internal/quiz"
)

const maxUploadBytes = 10 << 20

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	loader *loader.Loader
	gen    *question.Generator
	quiz   *quiz.Agent

	mu       sync.Mutex
	sessions map[string]*model.QuizSession
}

// New creates a new Handler.
func New(l *loader.Loader, g *question.Generator, a *quiz.Agent) *Handler {
	return &Handler{
		loader:   l,
		gen:      g,
		quiz:     a,
		sessions: make(map[string]*model.QuizSession),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/documents", h.handleListDocuments)
	r.Post("/api/documents", h.handleUploadDocument)
	r.Get("/api/banks", h.handleListBanks)
	r.Get("/api/banks/{bank}", h.handleGetBank)
	r.Post("/api/generate", h.handleGenerate)
	r.Post("/api/quiz", h.handleStartQuiz)
	r.Get("/api/quiz/{sessionID}", h.handleQuizState)
	r.Post("/api/quiz/{sessionID}/answer", h.handleAnswer)
	r.Post("/api/quiz/{sessionID}/result", h.handleResult)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps the four error kinds to HTTP statuses. Every error
// is user-visible and re-attemptable; none is fatal to the process.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var (
		formatErr   *model.FormatError
		parseErr    *model.ParseError
		providerErr *model.ProviderError
	)
	switch {
	case errors.As(err, &formatErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &parseErr), errors.As(err, &providerErr):
		status = http.StatusBadGateway
	}
	slog.Error("request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.loader.ListDocuments()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.loader.SaveDocument(header.Filename, data); err != nil {
		writeError(w, err)
		return
	}
	items, _ := loader.ValidateDocument(data)
	writeJSON(w, http.StatusCreated, map[string]any{
		"file":  header.Filename,
		"items": len(items),
	})
}

func (h *Handler) handleListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := h.loader.ListBanks()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"banks": banks})
}

func (h *Handler) handleGetBank(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "bank")
	questions, err := h.loader.LoadBank(name)
	if err != nil {
		writeError(w, err)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bank": name, "questions": questions})
}

type generateRequest struct {
	File         string               `json:"file"`
	CountPerType int                  `json:"count_per_type"`
	Types        []model.QuestionType `json:"types,omitempty"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file and count_per_type are required"})
		return
	}
	if req.CountPerType <= 0 {
		req.CountPerType = 1
	}

	generated, err := h.gen.Generate(r.Context(), req.File, req.CountPerType, req.Types...)
	if err != nil {
		writeError(w, err)
		return
	}
	bank, err := h.gen.SaveBank(req.File, generated)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bank":      bank,
		"generated": len(generated),
		"questions": generated,
	})
}

// questionView is a question as shown to the quiz taker: no answer.
type questionView struct {
	Idx      int                `json:"idx"`
	Type     model.QuestionType `json:"type"`
	Question string             `json:"question"`
	Options  []string           `json:"options,omitempty"`
}

func viewOf(q model.Question) questionView {
	return questionView{Idx: q.Idx, Type: q.Type, Question: q.Question, Options: q.Options}
}

type startQuizRequest struct {
	Bank  string `json:"bank"`
	Count int    `json:"count"`
}

func (h *Handler) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Bank == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bank and count are required"})
		return
	}

	bank, err := h.loader.LoadBank(req.Bank)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(bank) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "bank is empty or does not exist"})
		return
	}

	selected := quiz.Select(bank, req.Count)
	sess := &model.QuizSession{
		ID:        uuid.NewString(),
		Bank:      req.Bank,
		Questions: selected,
		StartedAt: time.Now(),
	}

	h.mu.Lock()
	h.sessions[sess.ID] = sess
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": sess.ID,
		"total":      len(selected),
		"question":   viewOf(selected[0]),
	})
}

func (h *Handler) session(r *http.Request) *model.QuizSession {
	id := chi.URLParam(r, "sessionID")
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[id]
}

func (h *Handler) handleQuizState(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	resp := map[string]any{
		"session_id": sess.ID,
		"total":      len(sess.Questions),
		"answered":   len(sess.Answers),
		"done":       sess.Done(),
	}
	if !sess.Done() {
		resp["question"] = viewOf(sess.Questions[sess.Current])
	}
	writeJSON(w, http.StatusOK, resp)
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	if sess.Done() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quiz already finished"})
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Answer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "answer is required"})
		return
	}

	q := sess.Questions[sess.Current]
	result, err := h.quiz.Grade(r.Context(), q, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}

	sess.Answers = append(sess.Answers, model.Answer{
		Question:   q,
		UserAnswer: req.Answer,
		Result:     result,
	})
	sess.Current++

	feedback := appI18n.T(r.Context(), "answer_correct")
	if !result.Correct {
		feedback = appI18n.T(r.Context(), "answer_wrong") + q.Answer
	}

	resp := map[string]any{
		"correct":  result.Correct,
		"detail":   result.Detail,
		"feedback": feedback,
		"done":     sess.Done(),
	}
	if !sess.Done() {
		resp["question"] = viewOf(sess.Questions[sess.Current])
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleResult renders the summary and discards the session.
func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	if sess == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}

	summary := quiz.Summarize(r.Context(), sess.Answers)

	h.mu.Lock()
	delete(h.sessions, sess.ID)
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, summary)
}
