package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"riverside/utils"
)

// ImageController exposes the uploaded-image maintenance views for the
// operator.
type ImageController struct {
	db     *gorm.DB
	images *utils.ImageStore
	backup utils.BackupSyncer
}

// NewImageController creates an ImageController.
func NewImageController(db *gorm.DB, images *utils.ImageStore, backup utils.BackupSyncer) *ImageController {
	return &ImageController{db: db, images: images, backup: backup}
}

// ListImages returns every file in the upload directory.
func (ic *ImageController) ListImages(ctx *gin.Context) {
	names, err := ic.images.List()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to list images")
		return
	}
	utils.Success(ctx, gin.H{"images": names})
}

// DeleteImage removes one uploaded file by name, then sweeps for any
// other orphans.
func (ic *ImageController) DeleteImage(ctx *gin.Context) {
	name := ctx.Param("filename")
	if err := ic.images.Delete(name); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to delete image")
		return
	}
	if _, err := ic.images.SweepOrphans(ic.db); err != nil {
		utils.Sugar.Warnf("orphan image sweep failed: %v", err)
	}
	utils.SyncAfterWrite(ic.backup)

	ctx.Redirect(http.StatusFound, "/view-images")
}
