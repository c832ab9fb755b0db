package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/plateful/delivery-notifier/internal/api/middleware"
	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/repository"
)

// defaultPrice is the price parameter handed to the cost function when the
// caller omits it.
const defaultPrice = 50

// DeliveryHandler serves the delivery-cost query endpoint. The geospatial
// computation itself is an opaque database function; this handler only
// validates inputs and shapes the response.
type DeliveryHandler struct {
	repo   repository.DeliveryRepository
	logger *zap.Logger
}

func NewDeliveryHandler(repo repository.DeliveryRepository, logger *zap.Logger) *DeliveryHandler {
	return &DeliveryHandler{repo: repo, logger: logger}
}

// GetQuote handles GET /api/v1/branches/{id}/delivery
//
// @Summary  Compute delivery distance and cost for a branch
// @Tags     delivery
// @Produce  json
// @Param    id     path      string  true   "Branch UUID"
// @Param    lat    query     number  true   "Destination latitude"
// @Param    lng    query     number  true   "Destination longitude"
// @Param    price  query     number  false  "Order price (default 50)"
// @Success  200    {object}  domain.DeliveryQuote
// @Failure  400    {object}  map[string]string
// @Failure  404    {object}  map[string]string
// @Router   /api/v1/branches/{id}/delivery [get]
func (h *DeliveryHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "id")
	if branchID == "" {
		mapError(w, domain.ErrMissingBranchID)
		return
	}

	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		mapError(w, domain.ErrInvalidCoordinate)
		return
	}

	price := float64(defaultPrice)
	if p := q.Get("price"); p != "" {
		parsed, err := strconv.ParseFloat(p, 64)
		if err != nil || parsed <= 0 {
			mapError(w, domain.ErrInvalidPrice)
			return
		}
		price = parsed
	}

	quote, err := h.repo.ComputeForBranch(r.Context(), branchID, lat, lng, price)
	if err != nil {
		h.logger.Warn("delivery quote failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("branch_id", branchID),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quote)
}
