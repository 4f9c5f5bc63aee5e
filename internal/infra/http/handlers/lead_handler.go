package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/contactship-crm/internal/entity"
	"github.com/xavierca1/contactship-crm/internal/usecase"
)

type LeadHandler struct {
	leadUC      *usecase.LeadUseCase
	summaryUC   *usecase.GenerateSummaryUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(leadUC *usecase.LeadUseCase, summaryUC *usecase.GenerateSummaryUseCase) *LeadHandler {
	return &LeadHandler{
		leadUC:      leadUC,
		summaryUC:   summaryUC,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min por IP na captura pública
	}
}

// HandleCreate é a rota pública de captura; por isso o rate limit por IP.
func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many requests, try again later"})
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	lead, err := h.leadUC.Create(r.Context(), input)
	if err != nil {
		var derr *usecase.DomainError
		if errors.As(err, &derr) {
			status := http.StatusBadRequest
			if derr.Code == "EMAIL_CONFLICT" {
				status = http.StatusConflict
			}
			writeJSON(w, status, map[string]string{"error": derr.Message, "code": derr.Code})
			return
		}
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create lead"})
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.leadUC.GetByID(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load lead"})
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

type listLeadsResponse struct {
	Data  []entity.Lead `json:"data"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Take  int           `json:"take"`
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	take, _ := strconv.Atoi(q.Get("take"))
	if take <= 0 {
		take = 10
	}

	opts := usecase.FindLeadsOptions{
		Skip:   (page - 1) * take,
		Take:   take,
		Status: q.Get("status"),
		Search: q.Get("search"),
	}

	leads, total, err := h.leadUC.List(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list leads"})
		return
	}
	if leads == nil {
		leads = []entity.Lead{}
	}

	writeJSON(w, http.StatusOK, listLeadsResponse{Data: leads, Total: total, Page: page, Take: take})
}

func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	lead, err := h.leadUC.Update(r.Context(), id, input)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}
	if errors.Is(err, entity.ErrEmailAlreadyExists) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update lead"})
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.leadUC.Delete(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete lead"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LeadHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.leadUC.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load stats"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *LeadHandler) HandleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := h.summaryUC.Execute(r.Context(), id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lead not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to generate summary"})
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
