package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/sharedexpenses/pkg/middleware"
	"github.com/fkhayef/sharedexpenses/pkg/response"
)

// Handler handles HTTP requests for balance queries
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/summary", h.GetSummary)
	r.Get("/owed-by-me", h.GetOwedByMe)
	r.Get("/owed-to-me", h.GetOwedToMe)
	r.Get("/counterparties", h.GetCounterparties)

	return r
}

// GetSummary handles GET /balances/summary
// @Summary      Balance summary
// @Description  Totals the caller owes and is owed across every split the caller is on
// @Tags         balances
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Success      200 {object} response.APIResponse{data=SummaryResponse}
// @Router       /balances/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID required")
		return
	}

	summary, err := h.service.GetSummary(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, summary.ToResponse())
}

// GetOwedByMe handles GET /balances/owed-by-me
// @Summary      Amount the caller owes
// @Tags         balances
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Success      200 {object} response.APIResponse{data=AmountResponse}
// @Router       /balances/owed-by-me [get]
func (h *Handler) GetOwedByMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID required")
		return
	}

	amount, err := h.service.GetOwedByUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, &AmountResponse{Amount: amount.String()})
}

// GetOwedToMe handles GET /balances/owed-to-me
// @Summary      Amount owed to the caller
// @Tags         balances
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Success      200 {object} response.APIResponse{data=AmountResponse}
// @Router       /balances/owed-to-me [get]
func (h *Handler) GetOwedToMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID required")
		return
	}

	amount, err := h.service.GetOwedToUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, &AmountResponse{Amount: amount.String()})
}

// GetCounterparties handles GET /balances/counterparties
// @Summary      Net balance per counterparty
// @Description  Positive amounts are owed to the caller, negative amounts are owed by the caller
// @Tags         balances
// @Produce      json
// @Param        X-User-ID header int true "Caller user ID"
// @Success      200 {object} response.APIResponse{data=[]CounterpartyResponse}
// @Router       /balances/counterparties [get]
func (h *Handler) GetCounterparties(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User ID required")
		return
	}

	balances, err := h.service.GetCounterpartyBalances(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, balances)
}
