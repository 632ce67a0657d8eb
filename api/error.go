package api

import "github.com/gin-gonic/gin"

// JSONError - error body returned by all API failures
type JSONError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// AbortWithError - stops the handler chain with a JSON error body
func AbortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, JSONError{Status: code, Message: message})
}
