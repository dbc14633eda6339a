package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"riverside/models"
	"riverside/utils"
)

// SiteController serves the homepage and the operator-managed content
// behind the dashboard: devotionals, news and the word of the day.
type SiteController struct {
	db     *gorm.DB
	images *utils.ImageStore
	backup utils.BackupSyncer
}

// NewSiteController creates a SiteController.
func NewSiteController(db *gorm.DB, images *utils.ImageStore, backup utils.BackupSyncer) *SiteController {
	return &SiteController{db: db, images: images, backup: backup}
}

// Home returns the homepage content: devotionals, news and the word of
// the day singleton.
func (s *SiteController) Home(ctx *gin.Context) {
	var devotionals []models.DevotionalPost
	if err := s.db.Order("launch_date DESC").Find(&devotionals).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load devotionals")
		return
	}
	var news []models.NewsPost
	if err := s.db.Order("created_at DESC").Find(&news).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load news")
		return
	}
	var word models.WordPost
	if err := s.db.First(&word, models.WordPostID).Error; err != nil && err != gorm.ErrRecordNotFound {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load word of the day")
		return
	}

	utils.Success(ctx, gin.H{
		"devotionals": devotionals,
		"news":        news,
		"word":        word,
	})
}

// About returns the about page data.
func (s *SiteController) About(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "about"})
}

// Dashboard returns everything the operator edits in one payload.
func (s *SiteController) Dashboard(ctx *gin.Context) {
	var devotionals []models.DevotionalPost
	if err := s.db.Order("launch_date DESC").Find(&devotionals).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load devotionals")
		return
	}
	var news []models.NewsPost
	if err := s.db.Order("created_at DESC").Find(&news).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load news")
		return
	}
	var word models.WordPost
	if err := s.db.First(&word, models.WordPostID).Error; err != nil && err != gorm.ErrRecordNotFound {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load word of the day")
		return
	}

	utils.Success(ctx, gin.H{
		"page":        "dashboard",
		"devotionals": devotionals,
		"news":        news,
		"word":        word,
	})
}

type devotionalForm struct {
	Title      string `form:"title" json:"title" binding:"required,max=255"`
	Text       string `form:"text" json:"text" binding:"required"`
	ImageURL   string `form:"img_url" json:"img_url" binding:"omitempty,url"`
	LaunchDate string `form:"launch_date" json:"launch_date"`
}

// CreateDevotional adds a devotional, operator only.
func (s *SiteController) CreateDevotional(ctx *gin.Context) {
	var req devotionalForm
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40061, utils.FieldErrors(err))
		return
	}

	title := strings.TrimSpace(req.Title)
	var count int64
	if err := s.db.Model(&models.DevotionalPost{}).Where("title = ?", title).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to check titles")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40904, "a devotional with that title already exists")
		return
	}

	imageFile, ok := s.saveUploadedImage(ctx)
	if !ok {
		return
	}

	dev := models.DevotionalPost{
		Title:      title,
		Text:       utils.Sanitize(req.Text),
		ImageURL:   req.ImageURL,
		ImageFile:  imageFile,
		LaunchDate: parseLaunchDate(req.LaunchDate),
	}
	if err := s.db.Create(&dev).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to create devotional")
		return
	}
	s.afterWrite()

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// EditDevotionalPage prefills the devotional edit form.
func (s *SiteController) EditDevotionalPage(ctx *gin.Context) {
	var dev models.DevotionalPost
	if err := s.db.First(&dev, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "devotional not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to load devotional")
		return
	}
	utils.Success(ctx, gin.H{"page": "edit-devotional", "devotional": dev})
}

// EditDevotional overwrites a devotional on submit.
func (s *SiteController) EditDevotional(ctx *gin.Context) {
	var dev models.DevotionalPost
	if err := s.db.First(&dev, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "devotional not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to load devotional")
		return
	}

	var req devotionalForm
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40062, utils.FieldErrors(err))
		return
	}

	imageFile, ok := s.saveUploadedImage(ctx)
	if !ok {
		return
	}

	dev.Title = strings.TrimSpace(req.Title)
	dev.Text = utils.Sanitize(req.Text)
	dev.ImageURL = req.ImageURL
	if imageFile != "" {
		dev.ImageFile = imageFile
	}
	if req.LaunchDate != "" {
		dev.LaunchDate = parseLaunchDate(req.LaunchDate)
	}
	if err := s.db.Save(&dev).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to update devotional")
		return
	}
	s.afterWrite()

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// DeleteDevotional removes a devotional and its uploaded image.
func (s *SiteController) DeleteDevotional(ctx *gin.Context) {
	var dev models.DevotionalPost
	if err := s.db.First(&dev, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40440, "devotional not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to load devotional")
		return
	}
	if err := s.db.Delete(&dev).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50067, "failed to delete devotional")
		return
	}
	if err := s.images.Delete(dev.ImageFile); err != nil {
		utils.Sugar.Warnf("failed to delete image %s: %v", dev.ImageFile, err)
	}
	s.afterWrite()

	ctx.Redirect(http.StatusFound, "/dashboard")
}

// CreateNews adds a news entry, operator only.
func (s *SiteController) CreateNews(ctx *gin.Context) {
	var req struct {
		Text string `form:"text" json:"text" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40063, utils.FieldErrors(err))
		return
	}
	news := models.NewsPost{Text: utils.Sanitize(req.Text)}
	if err := s.db.Create(&news).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50068, "failed to create news")
		return
	}
	utils.SyncAfterWrite(s.backup)

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// EditNews overwrites a news entry.
func (s *SiteController) EditNews(ctx *gin.Context) {
	var news models.NewsPost
	if err := s.db.First(&news, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40441, "news entry not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to load news entry")
		return
	}

	var req struct {
		Text string `form:"text" json:"text" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40064, utils.FieldErrors(err))
		return
	}
	news.Text = utils.Sanitize(req.Text)
	if err := s.db.Save(&news).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to update news entry")
		return
	}
	utils.SyncAfterWrite(s.backup)

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// DeleteNews removes a news entry.
func (s *SiteController) DeleteNews(ctx *gin.Context) {
	var news models.NewsPost
	if err := s.db.First(&news, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40441, "news entry not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50069, "failed to load news entry")
		return
	}
	if err := s.db.Delete(&news).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to delete news entry")
		return
	}
	utils.SyncAfterWrite(s.backup)

	ctx.Redirect(http.StatusFound, "/dashboard")
}

// EditWord upserts the word-of-the-day singleton row.
func (s *SiteController) EditWord(ctx *gin.Context) {
	var req struct {
		Text string `form:"text" json:"text" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40065, utils.FieldErrors(err))
		return
	}

	word := models.WordPost{ID: models.WordPostID}
	if err := s.db.Where(models.WordPost{ID: models.WordPostID}).FirstOrCreate(&word).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load word of the day")
		return
	}
	word.Text = utils.Sanitize(req.Text)
	if err := s.db.Save(&word).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to update word of the day")
		return
	}
	utils.SyncAfterWrite(s.backup)

	ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *SiteController) saveUploadedImage(ctx *gin.Context) (string, bool) {
	fh, err := ctx.FormFile("image")
	if err != nil {
		return "", true
	}
	name, err := s.images.SaveResized(fh)
	if err != nil {
		utils.Sugar.Warnf("image upload rejected: %v", err)
		utils.Error(ctx, http.StatusBadRequest, 40066, "could not process uploaded image")
		return "", false
	}
	return name, true
}

func (s *SiteController) afterWrite() {
	if _, err := s.images.SweepOrphans(s.db); err != nil {
		utils.Sugar.Warnf("orphan image sweep failed: %v", err)
	}
	utils.SyncAfterWrite(s.backup)
}

// parseLaunchDate accepts an HTML date input value; a blank or malformed
// value falls back to today.
func parseLaunchDate(v string) time.Time {
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(v)); err == nil {
		return t
	}
	return time.Now()
}
