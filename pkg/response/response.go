package response

import "github.com/gin-gonic/gin"

// Response represents a standard error response
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}
