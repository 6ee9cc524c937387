package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CheckTrainer admits trainers and admins.
func CheckTrainer(c *gin.Context) {
	isTrainer := c.MustGet("trainer").(bool)

	if !isTrainer {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
}
