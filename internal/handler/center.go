package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/logger"
	"github.com/iliyamo/fitness-center-listings/internal/metrics"
	"github.com/iliyamo/fitness-center-listings/internal/middleware"
	"github.com/iliyamo/fitness-center-listings/internal/model"
	"github.com/iliyamo/fitness-center-listings/internal/queue"
	"github.com/iliyamo/fitness-center-listings/internal/repository"
	"github.com/iliyamo/fitness-center-listings/internal/validation"
)

// CenterHandler serves the /centers endpoints.
type CenterHandler struct {
	Store     repository.CenterStore
	Validator *validation.Validator
	Events    queue.Publisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func NewCenterHandler(store repository.CenterStore, v *validation.Validator, events queue.Publisher, m *metrics.Metrics) *CenterHandler {
	if store == nil || v == nil || m == nil {
		panic("nil dependency passed to NewCenterHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &CenterHandler{Store: store, Validator: v, Events: events, Metrics: m, Now: time.Now}
}

// centerResponse is the public representation of a fitness center.
type centerResponse struct {
	ID              uint64         `json:"id"`
	Name            string         `json:"name"`
	Address         string         `json:"address"`
	MonthlyFee      int64          `json:"monthly_fee"`
	TotalSessions   int64          `json:"total_sessions"`
	Category        model.Category `json:"category"`
	Facilities      string         `json:"facilities"`
	Owner           uint64         `json:"owner"`
	IsVerified      bool           `json:"is_verified"`
	EstablishedDate string         `json:"established_date"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	PricePerSession float64        `json:"price_per_session"`
}

func newCenterResponse(fc *model.FitnessCenter) (centerResponse, error) {
	price, err := fc.PricePerSession()
	if err != nil {
		return centerResponse{}, fmt.Errorf("center %d: %w", fc.ID, err)
	}
	return centerResponse{
		ID:              fc.ID,
		Name:            fc.Name,
		Address:         fc.Address,
		MonthlyFee:      fc.MonthlyFee,
		TotalSessions:   fc.TotalSessions,
		Category:        fc.Category,
		Facilities:      fc.Facilities,
		Owner:           fc.OwnerID,
		IsVerified:      fc.IsVerified,
		EstablishedDate: fc.EstablishedDate.Format(model.DateLayout),
		CreatedAt:       fc.CreatedAt,
		UpdatedAt:       fc.UpdatedAt,
		PricePerSession: price,
	}, nil
}

func newCenterListResponse(centers []*model.FitnessCenter) ([]centerResponse, error) {
	out := make([]centerResponse, 0, len(centers))
	for _, fc := range centers {
		r, err := newCenterResponse(fc)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// List handles GET /centers with optional min_fee, max_fee, facilities,
// is_verified and ordering query parameters.
func (h *CenterHandler) List(c echo.Context) error {
	q, err := parseCenterQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	return h.list(c, q)
}

// ListByCategory handles GET /centers/category/:category.  The category is
// matched exactly; a value outside the enum matches nothing.
func (h *CenterHandler) ListByCategory(c echo.Context) error {
	cat, err := model.ParseCategory(c.Param("category"))
	if err != nil {
		return c.JSON(http.StatusOK, []centerResponse{})
	}
	return h.list(c, repository.CenterQuery{Category: &cat})
}

func (h *CenterHandler) list(c echo.Context, q repository.CenterQuery) error {
	ctx, cancel := storeCtx(c)
	defer cancel()

	centers, err := h.Store.List(ctx, q)
	if err != nil {
		return writeError(c, err)
	}
	out, err := newCenterListResponse(centers)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /centers/:id.
func (h *CenterHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detailNotFound)
	}
	ctx, cancel := storeCtx(c)
	defer cancel()

	fc, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	out, err := newCenterResponse(fc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /centers.  The owner is always the caller; an owner
// value in the body is ignored.
func (h *CenterHandler) Create(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		return writeError(c, auth.ErrAuthenticationRequired)
	}

	var in validation.CenterInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, detailBadBody)
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	fc, err := h.Validator.ValidateCenter(ctx, in, nil, false)
	if err != nil {
		return h.rejectWrite(c, err)
	}
	fc.OwnerID = caller.ID
	if err := h.Store.Create(ctx, fc); err != nil {
		return h.rejectWrite(c, err)
	}

	out, err := newCenterResponse(fc)
	if err != nil {
		return writeError(c, err)
	}
	h.Metrics.Mutation("create")
	h.publish(c, queue.CenterCreated, fc, caller.ID)
	return c.JSON(http.StatusCreated, out)
}

// Update handles PUT /centers/:id, a full replacement of the writable fields.
func (h *CenterHandler) Update(c echo.Context) error {
	return h.update(c, false)
}

// Patch handles PATCH /centers/:id.  Only the supplied fields are validated
// and changed.
func (h *CenterHandler) Patch(c echo.Context) error {
	return h.update(c, true)
}

// update runs the mutation checks in order: authentication, lookup (404),
// ownership (403), then validation (400).
func (h *CenterHandler) update(c echo.Context, partial bool) error {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		return writeError(c, auth.ErrAuthenticationRequired)
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detailNotFound)
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	current, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := auth.Authorize(caller, current.OwnerID); err != nil {
		return writeError(c, err)
	}

	var in validation.CenterInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, detailBadBody)
	}
	fc, err := h.Validator.ValidateCenter(ctx, in, current, partial)
	if err != nil {
		return h.rejectWrite(c, err)
	}
	if err := h.Store.Update(ctx, fc); err != nil {
		return h.rejectWrite(c, err)
	}

	out, err := newCenterResponse(fc)
	if err != nil {
		return writeError(c, err)
	}
	op := "update"
	if partial {
		op = "patch"
	}
	h.Metrics.Mutation(op)
	h.publish(c, queue.CenterUpdated, fc, caller.ID)
	return c.JSON(http.StatusOK, out)
}

// Delete handles DELETE /centers/:id.
func (h *CenterHandler) Delete(c echo.Context) error {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		return writeError(c, auth.ErrAuthenticationRequired)
	}
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusNotFound, detailNotFound)
	}

	ctx, cancel := storeCtx(c)
	defer cancel()

	fc, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := auth.Authorize(caller, fc.OwnerID); err != nil {
		return writeError(c, err)
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}

	h.Metrics.Mutation("delete")
	h.publish(c, queue.CenterDeleted, fc, caller.ID)
	return c.NoContent(http.StatusNoContent)
}

// rejectWrite counts validation failures by field before delegating to
// writeError.
func (h *CenterHandler) rejectWrite(c echo.Context, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		for _, f := range verrs.Fields() {
			h.Metrics.ValidationFailure(f)
		}
	case errors.Is(err, repository.ErrDuplicateName):
		h.Metrics.ValidationFailure("name")
	}
	return writeError(c, err)
}

func (h *CenterHandler) publish(c echo.Context, typ string, fc *model.FitnessCenter, actorID uint64) {
	ev := queue.NewCenterEvent(typ, fc, actorID, h.Now())
	ev.RequestID = c.Response().Header().Get(middleware.HeaderRequestID)
	if err := h.Events.Publish(c.Request().Context(), ev); err != nil {
		logger.FromEcho(c).Warn("publish center event",
			zap.String("type", typ),
			zap.Uint64("center_id", fc.ID),
			zap.Error(err),
		)
	}
}
