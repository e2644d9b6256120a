package handlers

import (
	"github.com/gin-gonic/gin"

	"glarm/internal/models"
	"glarm/pkg/response"
)

func (h *Handlers) handleListCategories(c *gin.Context) {
	categories, err := models.GetAllCategories(h.db)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "ok", gin.H{"categories": categories})
}

type createCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	ImageName string `json:"imageName"`
}

func (h *Handlers) handleCreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	category, err := models.CreateCategory(h.db, req.Name, req.ImageName, true)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "category created", gin.H{"category": category})
}

func (h *Handlers) handleRemoveCategory(c *gin.Context) {
	name := c.Param("name")
	if err := models.RemoveCategory(h.db, name); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "category removed", nil)
}
