package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sitebrief/toolboxtalk/backend/internal/api/middleware"
	"github.com/sitebrief/toolboxtalk/backend/internal/application/services"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
)

// MeetingHandler handles toolbox meeting HTTP requests
type MeetingHandler struct {
	meetingService *services.MeetingService
	autosave       *services.SummaryAutosaveService
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingService *services.MeetingService, autosave *services.SummaryAutosaveService) *MeetingHandler {
	return &MeetingHandler{
		meetingService: meetingService,
		autosave:       autosave,
	}
}

// CreateMeeting handles POST /api/meetings
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var meeting entities.Meeting
	if err := json.NewDecoder(r.Body).Decode(&meeting); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.meetingService.Create(r.Context(), user, &meeting)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, created)
}

// ListMeetings handles GET /api/meetings?limit=&page=
func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := queryInt(r, "limit", 10)
	page := queryInt(r, "page", 1)

	list, err := h.meetingService.List(r.Context(), user, limit, page)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, list)
}

// GetMeeting handles GET /api/meetings/{id}
func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	meeting, err := h.meetingService.Get(r.Context(), user, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, meeting)
}

type updateSummaryRequest struct {
	HTML  string `json:"html"`
	Flush bool   `json:"flush"`
}

// UpdateSummary handles PATCH /api/meetings/{id}/summary. Edits are
// debounced server-side; a flush writes through immediately.
func (h *MeetingHandler) UpdateSummary(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	meetingID := r.PathValue("id")

	if req.Flush {
		if err := h.autosave.Flush(r.Context(), user, meetingID, req.HTML); err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "saved"})
		return
	}

	if err := h.autosave.Queue(user, meetingID, req.HTML); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
