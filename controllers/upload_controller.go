package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cliphost/cliphost/config"
	"github.com/cliphost/cliphost/models"
	"github.com/cliphost/cliphost/notify"
	"github.com/cliphost/cliphost/sniff"
	"github.com/cliphost/cliphost/storage"
	"github.com/cliphost/cliphost/utils"
)

// UploadController handles multipart file uploads.
type UploadController struct {
	cfg      config.AppConfig
	store    *storage.Store
	notifier *notify.Notifier
}

func NewUploadController(cfg config.AppConfig, store *storage.Store, notifier *notify.Notifier) *UploadController {
	return &UploadController{cfg: cfg, store: store, notifier: notifier}
}

// Upload validates and persists the multipart field "file".
//
// Checks run in a fixed order and each failure short-circuits: file presence,
// declared size, MIME allow-list, extension, API key, origin. Only then is
// anything written to disk.
func (u *UploadController) Upload(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	limit := u.cfg.MaxSizeBytes()
	if limit > 0 && header.Size > limit {
		utils.Error(ctx, http.StatusRequestEntityTooLarge, "File too large")
		return
	}

	// Sniff the leading bytes, then stitch them back in front of the stream.
	head := make([]byte, sniff.SniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		utils.InternalError(ctx, err)
		return
	}
	body := io.MultiReader(bytes.NewReader(head[:n]), file)

	clientType := header.Header.Get("Content-Type")
	res := sniff.Classify(head[:n], clientType, u.cfg.TrustedMimeTypes)

	if !sniff.Allowed(res.MimeType, u.cfg.AllowedMimeTypes) {
		ctx.JSON(http.StatusUnsupportedMediaType, gin.H{
			"error":      "Unallowed file type",
			"type":       res.MimeType,
			"clientType": clientType,
		})
		return
	}

	if res.Extension == "" {
		utils.Error(ctx, http.StatusBadRequest, "Invalid file type")
		return
	}

	if u.cfg.APIKey != "" && ctx.GetHeader("Authorization") != u.cfg.APIKey {
		utils.Error(ctx, http.StatusUnauthorized, "Invalid API key")
		return
	}

	if len(u.cfg.AllowedOrigins) > 0 && !originAllowed(ctx.GetHeader("Origin"), u.cfg.AllowedOrigins) {
		utils.Error(ctx, http.StatusForbidden, "Invalid origin")
		return
	}

	now := time.Now()
	folder, err := u.store.EnsureDay(now)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}

	stored := models.StoredFile{
		ID:         storage.NewID(),
		Extension:  res.Extension,
		MimeType:   res.MimeType,
		DateFolder: folder,
	}
	name := stored.Filename()

	if limit > 0 {
		body = &io.LimitedReader{R: body, N: limit + 1}
	}
	written, absPath, err := u.store.Save(folder, name, body)
	if err != nil {
		utils.InternalError(ctx, err)
		return
	}
	if limit > 0 && written > limit {
		_ = u.store.Remove(folder, name)
		utils.Error(ctx, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	stored.Size = written
	stored.RelPath = folder + "/" + name
	stored.AbsPath = absPath

	meta := parsePlayerMetadata(ctx.GetHeader("player-metadata"))

	if u.cfg.SaveMetadata {
		sidecar := storage.SidecarMetadata{
			MimeType:   stored.MimeType,
			ClientType: clientType,
			Size:       stored.Size,
			UploadedAt: now,
			Player:     meta,
		}
		if err := u.store.WriteMetadata(stored.AbsPath, sidecar); err != nil {
			utils.Sugar.Warnf("metadata sidecar write failed for %s: %v", name, err)
		}
	}

	fileURL := u.baseURL(ctx) + "/uploads/" + stored.RelPath

	u.notifier.Dispatch(notify.Event{
		FileURL:    fileURL,
		MimeType:   stored.MimeType,
		Size:       stored.Size,
		DateFolder: stored.DateFolder,
		Player:     meta,
	})

	utils.Sugar.Infof("stored upload %s (%s, %d bytes)", name, stored.MimeType, stored.Size)

	ctx.JSON(http.StatusOK, models.UploadResponse{
		Success:         true,
		Filename:        name,
		URL:             fileURL,
		Link:            fileURL,
		DateFolder:      stored.DateFolder,
		RelativePath:    stored.RelPath,
		Size:            stored.Size,
		Type:            stored.MimeType,
		ClientType:      clientType,
		MimeTypeChanged: res.Changed,
		PlayerMetadata:  meta,
	})
}

// baseURL prefers the configured public base URL and otherwise derives one
// from the request, so there is no process-wide cached value to race on.
func (u *UploadController) baseURL(ctx *gin.Context) string {
	if u.cfg.PublicBaseURL != "" {
		return u.cfg.PublicBaseURL
	}
	scheme := ctx.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
	}
	return scheme + "://" + ctx.Request.Host
}

// parsePlayerMetadata decodes the optional player-metadata header. Malformed
// values are logged and dropped rather than failing the upload.
func parsePlayerMetadata(raw string) *models.PlayerMetadata {
	if raw == "" {
		return nil
	}
	var meta models.PlayerMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		utils.Sugar.Warnf("ignoring unparseable player-metadata header: %v", err)
		return nil
	}
	return &meta
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if origin == a {
			return true
		}
	}
	return false
}
