package inventory

import (
	"net/http"
	"strconv"

	"cerven-ot/internal/shared/apperror"
	"cerven-ot/internal/shared/contextutil"
	"cerven-ot/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("inventory.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("inventory.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("inventory request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) principal(c *gin.Context) (contextutil.Principal, bool) {
	p, ok := contextutil.GetPrincipal(c.Request.Context())
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
	}
	return p, ok
}

func (h *Handler) CreateStore(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.CreateStore(c.Request.Context(), p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListStores(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.ListStores(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	page, pageSize := response.PageParams(c)
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) StoreOptions(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.StoreOptions(c.Request.Context(), p)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) itemFilter(c *gin.Context) ItemFilter {
	return ItemFilter{StoreID: c.Query("store_id"), Category: c.Query("category")}
}

func (h *Handler) ListItems(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	resp, err := h.service.ListItems(c.Request.Context(), p, h.itemFilter(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	page, pageSize := response.PageParams(c)
	items, meta := response.Paginate(resp, page, pageSize)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) ImportItems(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer f.Close()

	summary, err := h.service.ImportItems(c.Request.Context(), p, fh.Filename, f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary, nil)
}

func (h *Handler) ExportItems(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	data, filename, err := h.service.ExportItems(c.Request.Context(), p, h.itemFilter(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
