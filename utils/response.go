package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func JSON200(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func JSON201(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func JSON400(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func JSON404(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{"error": message})
}

func JSON500(c *gin.Context, message string, err error) {
	details := "Unknown error"
	if err != nil {
		details = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   message,
		"details": details,
	})
}

func JSON503(c *gin.Context, message string, err error) {
	details := "Unknown error"
	if err != nil {
		details = err.Error()
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{
		"error":   message,
		"details": details,
	})
}
