package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"timeledger/internal/models"
)

type dropdownRequest struct {
	Category     string `json:"category" binding:"required"`
	Subcategory  string `json:"subcategory"`
	ItemValue    string `json:"item_value" binding:"required"`
	DisplayOrder int    `json:"display_order"`
	Active       *bool  `json:"active"`
	AllUsers     bool   `json:"all_users"`
}

func (req *dropdownRequest) toModel() *models.DropdownValue {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &models.DropdownValue{
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		ItemValue:    req.ItemValue,
		DisplayOrder: req.DisplayOrder,
		Active:       active,
		AllUsers:     req.AllUsers,
	}
}

// ListDropdowns handles GET /api/v1/dropdowns. An optional category query
// narrows the result.
func (h *Handlers) ListDropdowns(c *gin.Context) {
	values, err := h.dropdowns.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.respondRepoError(c, err, "list dropdowns")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: values})
}

// CreateDropdown handles POST /api/v1/dropdowns. A duplicate natural key
// comes back as 409.
func (h *Handlers) CreateDropdown(c *gin.Context) {
	var req dropdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "category and item_value are required")
		return
	}

	value := req.toModel()
	if err := h.dropdowns.Create(c.Request.Context(), value); err != nil {
		h.respondRepoError(c, err, "create dropdown")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: value})
}

// UpdateDropdown handles PUT /api/v1/dropdowns/:id
func (h *Handlers) UpdateDropdown(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dropdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "category and item_value are required")
		return
	}

	value := req.toModel()
	value.ID = id
	if err := h.dropdowns.Update(c.Request.Context(), value); err != nil {
		h.respondRepoError(c, err, "update dropdown")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: value})
}

// DeleteDropdown handles DELETE /api/v1/dropdowns/:id
func (h *Handlers) DeleteDropdown(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.dropdowns.Delete(c.Request.Context(), id); err != nil {
		h.respondRepoError(c, err, "delete dropdown")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}
