package handlers

import (
	"github.com/gin-gonic/gin"

	"numbering/internal/domain/numbering"
	"numbering/internal/infrastructure/http/v1/dto"
)

// NumberingHandler exposes format management, preview and generation.
type NumberingHandler struct {
	*BaseHandler
	service *numbering.Service
}

// NewNumberingHandler creates a new numbering handler.
func NewNumberingHandler(base *BaseHandler, service *numbering.Service) *NumberingHandler {
	return &NumberingHandler{BaseHandler: base, service: service}
}

// EffectiveFormat returns the format used for (target, orgId).
// GET /formats/effective
func (h *NumberingHandler) EffectiveFormat(c *gin.Context) {
	var q dto.EffectiveFormatQuery
	if !h.BindQuery(c, &q) {
		return
	}
	orgID, err := q.Org()
	if err != nil {
		h.Error(c, err)
		return
	}

	f, err := h.service.GetEffectiveFormat(c.Request.Context(), numbering.Target(q.Target), orgID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromFormat(f))
}

// ListFormats lists stored formats.
// GET /formats
func (h *NumberingHandler) ListFormats(c *gin.Context) {
	var q dto.ListFormatsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.service.ListFormats(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromFormats(items)))
}

// GetFormat returns one format by id.
// GET /formats/:id
func (h *NumberingHandler) GetFormat(c *gin.Context) {
	formatID, ok := h.PathID(c)
	if !ok {
		return
	}

	f, err := h.service.GetFormat(c.Request.Context(), formatID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromFormat(f))
}

// CreateFormat stores a new format.
// POST /formats
func (h *NumberingHandler) CreateFormat(c *gin.Context) {
	var req dto.CreateFormatRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	f, err := h.service.CreateFormat(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromFormat(f))
}

// UpdateFormat patches a format under optimistic concurrency.
// PUT /formats/:id
func (h *NumberingHandler) UpdateFormat(c *gin.Context) {
	formatID, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.UpdateFormatRequest
	if !h.BindJSON(c, &req) {
		return
	}

	f, err := h.service.UpdateFormat(c.Request.Context(), formatID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromFormat(f))
}

// Preview renders a sample without allocating.
// POST /preview
func (h *NumberingHandler) Preview(c *gin.Context) {
	var req dto.PreviewRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.Preview(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// Generate issues the next number.
// POST /generate
func (h *NumberingHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.Generate(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.GenerateResponse{Value: res.Value, FormatID: res.FormatID.String()})
}

// GetListDisplay returns the effective list display setting.
// GET /list-display
func (h *NumberingHandler) GetListDisplay(c *gin.Context) {
	var q dto.ListDisplayQuery
	if !h.BindQuery(c, &q) {
		return
	}
	scope, orgID, err := q.Resolve()
	if err != nil {
		h.Error(c, err)
		return
	}

	ds, err := h.service.GetListDisplay(c.Request.Context(), scope, orgID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ds)
}

// SaveListDisplay creates or replaces a list display setting.
// PUT /list-display
func (h *NumberingHandler) SaveListDisplay(c *gin.Context) {
	var req dto.SaveListDisplayRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	ds, err := h.service.SaveListDisplay(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ds)
}
