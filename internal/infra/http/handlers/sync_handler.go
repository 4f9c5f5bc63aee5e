package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/contactship-crm/internal/entity"
	"github.com/xavierca1/contactship-crm/internal/infra/http/middleware"
	"github.com/xavierca1/contactship-crm/internal/usecase"
)

type SyncHandler struct {
	syncUC *usecase.TriggerSyncUseCase
}

func NewSyncHandler(syncUC *usecase.TriggerSyncUseCase) *SyncHandler {
	return &SyncHandler{syncUC: syncUC}
}

type triggerSyncRequest struct {
	Source    string `json:"source"`
	BatchSize int    `json:"batch_size"`
}

// HandleTrigger cria o job PENDING e responde na hora com 202; o chamador
// acompanha o desfecho via GET /sync/jobs/{id}.
func (h *SyncHandler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerSyncRequest
	if r.Body != nil {
		// Body vazio é válido: usa source e batch size default
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	job, err := h.syncUC.Execute(r.Context(), req.Source, req.BatchSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to trigger sync"})
		return
	}

	middleware.RecordSyncTriggered()
	writeJSON(w, http.StatusAccepted, job)
}

func (h *SyncHandler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	jobs, err := h.syncUC.ListRecentSyncJobs(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list sync jobs"})
		return
	}
	if jobs == nil {
		jobs = []entity.SyncJob{}
	}

	writeJSON(w, http.StatusOK, jobs)
}

func (h *SyncHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.syncUC.GetSyncJob(r.Context(), id)
	if errors.Is(err, entity.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "sync job not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load sync job"})
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
