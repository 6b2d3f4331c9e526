package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cliphost/cliphost/config"
)

// Error writes the uniform error envelope with the given status code.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

// InternalError logs err and responds with a generic 500. Internal detail is
// only exposed when the debug flag is enabled.
func InternalError(ctx *gin.Context, err error) {
	if Sugar != nil {
		Sugar.Errorf("internal error on %s: %v", ctx.Request.URL.Path, err)
	}
	message := "Internal server error"
	if config.Get().Debug && err != nil {
		message = message + ": " + err.Error()
	}
	Error(ctx, http.StatusInternalServerError, message)
}
