package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Handler exposes product management endpoints.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Service *Service
	Logger  *zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Handler{service: cfg.Service, logger: logger}
}

// List handles GET /products.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "catalog service not configured")
		return
	}
	products, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if len(products) == 0 {
		common.JSONError(w, http.StatusNotFound, "No products found.")
		return
	}
	common.JSON(w, http.StatusOK, products)
}

// Get handles GET /products/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "catalog service not configured")
		return
	}
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "Product id must be an integer.")
		return
	}
	product, err := h.service.Lookup(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, fmt.Sprintf("Product with id %d not found.", id))
			return
		}
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, product)
}

// Create handles POST /products.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "catalog service not configured")
		return
	}
	body, err := common.DecodeObject(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	product, err := h.service.Create(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, product)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if !common.IsAppError(err) {
		h.logger.Error().Err(err).Msg("catalog request failed")
	}
	common.WriteError(w, err)
}
