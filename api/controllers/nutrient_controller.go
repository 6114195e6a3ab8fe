package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutripeek/nutripeek-go/nutrient"
	"github.com/nutripeek/nutripeek-go/tool"
	"github.com/nutripeek/nutripeek-go/types"
)

// NutrientController serves the nutrient gap calculation.
type NutrientController struct {
	svc *nutrient.Service
}

func NewNutrientController(svc *nutrient.Service) *NutrientController {
	return &NutrientController{svc: svc}
}

// HandleGap calculates nutritional gaps between recommended intakes for a
// child profile and the selected ingredients.
func (nc *NutrientController) HandleGap(c *gin.Context) {
	var req types.NutrientGapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request: "+err.Error()))
		return
	}

	resp, err := nc.svc.CalculateGaps(c.Request.Context(), req.ChildProfile.Age, req.ChildProfile.Gender, req.IngredientIDs)
	if err != nil {
		if errors.Is(err, nutrient.ErrNotFound) {
			c.JSON(http.StatusNotFound, tool.FastReturnError(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Gap calculation failed: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
