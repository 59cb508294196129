package routes

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"chorescape-server/types"
)

// respond writes the standard success envelope.
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

// fail maps an AppError to its HTTP status with the standard envelope.
// Internal causes are logged server-side and never leak to the client.
func fail(c *gin.Context, appErr *types.AppError) {
	if appErr.Err != nil {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), appErr.Err)
	}
	c.JSON(appErr.HTTPStatus(), gin.H{"message": appErr.Message, "data": nil})
}

// bind parses the JSON body into obj, responding 400 on failure.
func bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body: " + err.Error(), "data": nil})
		return false
	}
	return true
}
