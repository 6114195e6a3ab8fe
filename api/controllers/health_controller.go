package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nutripeek/nutripeek-go/tool"
)

// HandleHealth reports process liveness.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}
