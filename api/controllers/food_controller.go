package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nutripeek/nutripeek-go/nutrient"
	"github.com/nutripeek/nutripeek-go/session"
	"github.com/nutripeek/nutripeek-go/tool"
	"github.com/nutripeek/nutripeek-go/types"
)

// FoodController serves direct detection, food search and food mapping.
type FoodController struct {
	detector  session.Detector
	nutrients *nutrient.Service
}

func NewFoodController(detector session.Detector, nutrients *nutrient.Service) *FoodController {
	return &FoodController{detector: detector, nutrients: nutrients}
}

// HandleDetect runs detection directly on an uploaded image, without a QR
// handoff session.
func (fc *FoodController) HandleDetect(c *gin.Context) {
	data, err := readUploadFile(c)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing upload file"))
		return
	}
	if err := session.ValidateImage(data); err != nil {
		c.JSON(statusFromError(err), tool.FastReturnError(err.Error()))
		return
	}

	result, err := fc.detector.Detect(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Detection failed: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleSearch performs a fuzzy food name search.
// GET /food/search?name=banana&limit=10
func (fc *FoodController) HandleSearch(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required parameter: name"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	items, err := fc.nutrients.Search(c.Request.Context(), name, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Search failed: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(items))
}

// HandleMap maps detected food class names to nutrient data with
// quantities.
func (fc *FoodController) HandleMap(c *gin.Context) {
	var req types.FoodMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request: "+err.Error()))
		return
	}

	mapped, unmapped, err := fc.nutrients.MapFoodItems(c.Request.Context(), req.DetectedItems)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Mapping failed: "+err.Error()))
		return
	}
	c.JSON(http.StatusOK, types.FoodMappingResponse{
		MappedItems:   mapped,
		UnmappedItems: unmapped,
	})
}
