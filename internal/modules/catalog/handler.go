package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orderdesk/internal/ledger"
	"orderdesk/internal/pkg/response"
	"orderdesk/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/events", h.ListEvents)
	rg.GET("/events/:id", h.GetEvent)
}

// RegisterAdminRoutes expects the group to be guarded by the admin
// middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/products", h.CreateProduct)
	rg.PUT("/products/:id", h.UpdateProduct)
	rg.PATCH("/products/:id/capacity", h.AdjustProductCapacity)
	rg.POST("/events", h.CreateEvent)
	rg.PUT("/events/:id", h.UpdateEvent)
	rg.PATCH("/events/:id/capacity", h.AdjustEventCapacity)
}

func (h *Handler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	products, err := h.service.ListProducts(c.Request.Context(), c.Query("category"), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list products")
		return
	}
	response.Success(c, http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load product")
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product", fields)
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create product")
		return
	}
	response.Success(c, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product", fields)
		return
	}

	p, err := h.service.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "Failed to update product")
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) AdjustProductCapacity(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req AdjustCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.AdjustProductCapacity(c.Request.Context(), id, *req.NewTotal)
	if err != nil {
		h.fail(c, err, "Failed to adjust capacity")
		return
	}
	response.Success(c, http.StatusOK, p)
}

func (h *Handler) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	events, err := h.service.ListEvents(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list events")
		return
	}
	response.Success(c, http.StatusOK, events)
}

func (h *Handler) GetEvent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	e, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load event")
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid event", fields)
		return
	}

	e, err := h.service.CreateEvent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create event")
		return
	}
	response.Success(c, http.StatusCreated, e)
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid event", fields)
		return
	}

	e, err := h.service.UpdateEvent(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "Failed to update event")
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) AdjustEventCapacity(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req AdjustCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	e, err := h.service.AdjustEventCapacity(c.Request.Context(), id, *req.NewTotal)
	if err != nil {
		h.fail(c, err, "Failed to adjust capacity")
		return
	}
	response.Success(c, http.StatusOK, e)
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Item not found")
	case errors.Is(err, ledger.ErrInvalidCapacity):
		response.Error(c, http.StatusBadRequest, "INVALID_CAPACITY", "Total capacity cannot drop below the booked amount")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, err
	}
	return id, nil
}
