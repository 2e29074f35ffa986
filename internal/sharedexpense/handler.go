package sharedexpense

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/sharedexpenses/pkg/middleware"
	"github.com/fkhayef/sharedexpenses/pkg/response"
)

// Handler handles HTTP requests for shared expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new shared expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for shared expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/settle", h.Settle)
	r.Get("/{id}/events", h.ListEvents)

	// Participant operations
	r.Post("/{id}/participants/{participantId}/pay", h.MarkPaid)
	r.Post("/{id}/participants/{participantId}/dispute", h.Dispute)
	r.Post("/{id}/participants/{participantId}/waive", h.Waive)

	return r
}

// Create handles POST /shared-expenses
// @Summary      Split an expense
// @Description  Divide an expense among participants using EQUAL, PERCENTAGE, EXACT_AMOUNT or SHARES
// @Tags         shared-expenses
// @Accept       json
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        request body CreateSplitRequest true "Split creation request"
// @Success      201 {object} response.APIResponse{data=SharedExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /shared-expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID required")
		return
	}

	var req CreateSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	se, err := h.service.CreateSplit(r.Context(), payerID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, se.ToResponse())
}

// List handles GET /shared-expenses
// @Summary      List shared expenses
// @Description  List splits the caller pays for or participates in, newest first
// @Tags         shared-expenses
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        group query string false "Group name substring"
// @Param        settled query bool false "Only settled (true) or open (false) splits"
// @Param        page query int false "Page number, starting at 1"
// @Param        per_page query int false "Page size (default 20, max 100)"
// @Success      200 {object} response.APIResponse{data=[]SharedExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /shared-expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID required")
		return
	}

	filter := ListFilter{GroupName: r.URL.Query().Get("group")}
	if raw := r.URL.Query().Get("settled"); raw != "" {
		settled, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "Invalid settled filter")
			return
		}
		filter.Settled = &settled
	}

	var page Page
	for param, dst := range map[string]*int{"page": &page.Number, "per_page": &page.Size} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, "Invalid "+param)
			return
		}
		*dst = n
	}
	page = page.Normalize()

	splits, err := h.service.ListSplits(r.Context(), callerID, filter)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	window := page.Slice(splits)
	responses := make([]*SharedExpenseResponse, len(window))
	for i, se := range window {
		responses[i] = se.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, responses, &response.Meta{
		Page:       page.Number,
		PerPage:    page.Size,
		Total:      len(splits),
		TotalPages: page.TotalPages(len(splits)),
	})
}

// GetByID handles GET /shared-expenses/{id}
// @Summary      Get shared expense by ID
// @Description  Get a split with all its participants
// @Tags         shared-expenses
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Success      200 {object} response.APIResponse{data=SharedExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /shared-expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, ok := h.splitRequest(w, r)
	if !ok {
		return
	}

	se, err := h.service.GetSplit(r.Context(), callerID, splitID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, se.ToResponse())
}

// Update handles PUT /shared-expenses/{id}
// @Summary      Update a shared expense
// @Description  Change description or group, or replace all participants while no payments exist
// @Tags         shared-expenses
// @Accept       json
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Param        request body UpdateSplitRequest true "Split update request"
// @Success      200 {object} response.APIResponse{data=SharedExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /shared-expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, ok := h.splitRequest(w, r)
	if !ok {
		return
	}

	var req UpdateSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	se, err := h.service.UpdateSplit(r.Context(), callerID, splitID, &req)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, se.ToResponse())
}

// Delete handles DELETE /shared-expenses/{id}
// @Summary      Delete a shared expense
// @Description  Delete a split that has no recorded payments
// @Tags         shared-expenses
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Success      204
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /shared-expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, ok := h.splitRequest(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteSplit(r.Context(), callerID, splitID); err != nil {
		response.FromError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Settle handles POST /shared-expenses/{id}/settle
// @Summary      Settle a shared expense
// @Description  Mark every outstanding share as paid and close the split
// @Tags         shared-expenses
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Success      200 {object} response.APIResponse{data=SharedExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /shared-expenses/{id}/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, ok := h.splitRequest(w, r)
	if !ok {
		return
	}

	se, err := h.service.SettleSplit(r.Context(), callerID, splitID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, se.ToResponse())
}

// ListEvents handles GET /shared-expenses/{id}/events
// @Summary      Shared expense history
// @Description  List every recorded change to a split, oldest first
// @Tags         shared-expenses
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /shared-expenses/{id}/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, ok := h.splitRequest(w, r)
	if !ok {
		return
	}

	events, err := h.service.ListSplitEvents(r.Context(), callerID, splitID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	responses := make([]*EventResponse, len(events))
	for i, e := range events {
		responses[i] = e.ToResponse()
	}

	response.JSON(w, http.StatusOK, responses)
}

// MarkPaid handles POST /shared-expenses/{id}/participants/{participantId}/pay
// @Summary      Mark a share as paid
// @Description  Record that a participant paid their share; the split settles when every share is paid or waived
// @Tags         shared-expenses
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Param        participantId path int true "Participant ID"
// @Success      200 {object} response.APIResponse{data=SharedExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /shared-expenses/{id}/participants/{participantId}/pay [post]
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, participantID, ok := h.participantRequest(w, r)
	if !ok {
		return
	}

	se, err := h.service.MarkParticipantPaid(r.Context(), callerID, splitID, participantID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, se.ToResponse())
}

// Dispute handles POST /shared-expenses/{id}/participants/{participantId}/dispute
// @Summary      Dispute a share
// @Description  Flag a pending share as disputed with a reason
// @Tags         shared-expenses
// @Accept       json
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Param        participantId path int true "Participant ID"
// @Param        request body DisputeParticipantRequest true "Dispute request"
// @Success      200 {object} response.APIResponse{data=SharedExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /shared-expenses/{id}/participants/{participantId}/dispute [post]
func (h *Handler) Dispute(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, participantID, ok := h.participantRequest(w, r)
	if !ok {
		return
	}

	var req DisputeParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	se, err := h.service.DisputeParticipant(r.Context(), callerID, splitID, participantID, req.Reason)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, se.ToResponse())
}

// Waive handles POST /shared-expenses/{id}/participants/{participantId}/waive
// @Summary      Waive a share
// @Description  Forgive a pending share; the split settles when every share is paid or waived
// @Tags         shared-expenses
// @Accept       json
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Param        id path int true "Shared expense ID"
// @Param        participantId path int true "Participant ID"
// @Param        request body WaiveParticipantRequest false "Waive request"
// @Success      200 {object} response.APIResponse{data=SharedExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /shared-expenses/{id}/participants/{participantId}/waive [post]
func (h *Handler) Waive(w http.ResponseWriter, r *http.Request) {
	callerID, splitID, participantID, ok := h.participantRequest(w, r)
	if !ok {
		return
	}

	var req WaiveParticipantRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	se, err := h.service.WaiveParticipant(r.Context(), callerID, splitID, participantID, req.Note)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, se.ToResponse())
}

// splitRequest reads the caller and the {id} path parameter
func (h *Handler) splitRequest(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	callerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID required")
		return 0, 0, false
	}

	splitID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid shared expense ID")
		return 0, 0, false
	}

	return callerID, splitID, true
}

func (h *Handler) participantRequest(w http.ResponseWriter, r *http.Request) (int64, int64, int64, bool) {
	callerID, splitID, ok := h.splitRequest(w, r)
	if !ok {
		return 0, 0, 0, false
	}

	participantID, err := strconv.ParseInt(chi.URLParam(r, "participantId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid participant ID")
		return 0, 0, 0, false
	}

	return callerID, splitID, participantID, true
}
