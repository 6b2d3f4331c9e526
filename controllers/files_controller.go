package controllers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cliphost/cliphost/storage"
	"github.com/cliphost/cliphost/utils"
)

// FilesController serves stored uploads back to clients.
type FilesController struct {
	store *storage.Store
}

func NewFilesController(store *storage.Store) *FilesController {
	return &FilesController{store: store}
}

// Health is the liveness endpoint.
func (f *FilesController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Serve streams a stored file from its dated location. Stored files never
// change, so responses are marked immutable and range requests are supported.
func (f *FilesController) Serve(ctx *gin.Context) {
	folder := ctx.Param("dateFolder")
	name := ctx.Param("filename")

	path, err := f.store.Resolve(folder, name)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, "File not found")
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			utils.Error(ctx, http.StatusNotFound, "File not found")
			return
		}
		utils.InternalError(ctx, err)
		return
	}
	if info.IsDir() {
		utils.Error(ctx, http.StatusNotFound, "File not found")
		return
	}

	ctx.Header("Cache-Control", "public, max-age=31536000, immutable")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("Accept-Ranges", "bytes")
	ctx.File(path)
}

// ServeLegacy handles bare "{uuid}.{ext}" links from before URLs carried a
// date folder. A hit redirects permanently to the canonical dated URL; the
// underlying scan is O(date folders), an accepted cost for old links.
func (f *FilesController) ServeLegacy(ctx *gin.Context) {
	name := ctx.Param("dateFolder")

	if !storage.IsLegacyName(name) {
		utils.Error(ctx, http.StatusNotFound, "File not found")
		return
	}

	folder, err := f.store.FindLegacy(name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.Error(ctx, http.StatusNotFound, "File not found")
			return
		}
		utils.InternalError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusMovedPermanently, "/uploads/"+folder+"/"+name)
}
