package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"riverside/middleware"
	"riverside/models"
	"riverside/utils"
)

// MessageController manages the internal message board. Unlike the blog,
// any signed-in member may post; editing stays with the author or the
// operator.
type MessageController struct {
	db     *gorm.DB
	images *utils.ImageStore
	backup utils.BackupSyncer
}

// NewMessageController creates a MessageController.
func NewMessageController(db *gorm.DB, images *utils.ImageStore, backup utils.BackupSyncer) *MessageController {
	return &MessageController{db: db, images: images, backup: backup}
}

// ListMessages returns every board message, newest first.
func (m *MessageController) ListMessages(ctx *gin.Context) {
	var messages []models.Message
	if err := m.db.Order("created_at DESC").Find(&messages).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list messages")
		return
	}

	ids := make([]uint, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.AuthorID)
	}
	authors, err := m.loadAuthors(ids)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load authors")
		return
	}

	items := make([]gin.H, 0, len(messages))
	for _, msg := range messages {
		items = append(items, gin.H{"message": msg, "author": authors[msg.AuthorID]})
	}
	utils.Success(ctx, gin.H{"items": items})
}

// GetMessage returns one message with its comments and their authors.
func (m *MessageController) GetMessage(ctx *gin.Context) {
	var msg models.Message
	if err := m.db.First(&msg, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "message not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load message")
		return
	}

	var comments []models.MessageComment
	if err := m.db.Where("message_id = ?", msg.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load comments")
		return
	}

	ids := make([]uint, 0, len(comments)+1)
	ids = append(ids, msg.AuthorID)
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := m.loadAuthors(ids)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load authors")
		return
	}

	commentItems := make([]gin.H, 0, len(comments))
	for _, c := range comments {
		commentItems = append(commentItems, gin.H{"comment": c, "author": authors[c.AuthorID]})
	}
	utils.Success(ctx, gin.H{
		"message":  msg,
		"author":   authors[msg.AuthorID],
		"comments": commentItems,
	})
}

// CreateMessagePage returns the empty create form data.
func (m *MessageController) CreateMessagePage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "create-message"})
}

// CreateMessage creates a board message for any signed-in member.
func (m *MessageController) CreateMessage(ctx *gin.Context) {
	var req postForm
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40041, utils.FieldErrors(err))
		return
	}

	title := strings.TrimSpace(req.Title)
	var count int64
	if err := m.db.Model(&models.Message{}).Where("title = ?", title).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to check titles")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40903, "a message with that title already exists")
		return
	}

	imageFile, ok := m.saveUploadedImage(ctx)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	msg := models.Message{
		Title:     title,
		Body:      utils.Sanitize(req.Body),
		ImageURL:  req.ImageURL,
		ImageFile: imageFile,
		AuthorID:  userID,
	}
	if err := m.db.Create(&msg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to create message")
		return
	}
	m.afterWrite()

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/get-message/%d", msg.ID))
}

// EditMessagePage prefills the edit form with the current row state.
func (m *MessageController) EditMessagePage(ctx *gin.Context) {
	msg, ok := m.loadOwnedMessage(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"page": "edit-message", "message": msg})
}

// EditMessage overwrites a message on submit, author or operator only.
func (m *MessageController) EditMessage(ctx *gin.Context) {
	msg, ok := m.loadOwnedMessage(ctx)
	if !ok {
		return
	}

	var req postForm
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40042, utils.FieldErrors(err))
		return
	}

	imageFile, imgOK := m.saveUploadedImage(ctx)
	if !imgOK {
		return
	}

	msg.Title = strings.TrimSpace(req.Title)
	msg.Body = utils.Sanitize(req.Body)
	msg.ImageURL = req.ImageURL
	if imageFile != "" {
		msg.ImageFile = imageFile
	}
	if err := m.db.Save(&msg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to update message")
		return
	}
	m.afterWrite()

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/get-message/%d", msg.ID))
}

// DeleteMessage removes a message along with its uploaded image.
func (m *MessageController) DeleteMessage(ctx *gin.Context) {
	msg, ok := m.loadOwnedMessage(ctx)
	if !ok {
		return
	}

	if err := m.db.Where("message_id = ?", msg.ID).Delete(&models.MessageComment{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to delete comments")
		return
	}
	if err := m.db.Delete(&msg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50048, "failed to delete message")
		return
	}
	if err := m.images.Delete(msg.ImageFile); err != nil {
		utils.Sugar.Warnf("failed to delete image %s: %v", msg.ImageFile, err)
	}
	m.afterWrite()

	ctx.Redirect(http.StatusFound, "/all-messages")
}

// CreateComment records a comment from a signed-in member.
func (m *MessageController) CreateComment(ctx *gin.Context) {
	var req struct {
		Text string `form:"text" json:"text" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40043, utils.FieldErrors(err))
		return
	}

	var msg models.Message
	if err := m.db.First(&msg, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "message not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load message")
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	comment := models.MessageComment{
		Text:      utils.Sanitize(req.Text),
		AuthorID:  userID,
		MessageID: msg.ID,
	}
	if err := m.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50049, "failed to create comment")
		return
	}
	utils.SyncAfterWrite(m.backup)

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/get-message/%d", msg.ID))
}

// DeleteComment removes a comment (author or operator) and redirects to
// the parent message, read from the foreign key before the delete.
func (m *MessageController) DeleteComment(ctx *gin.Context) {
	var comment models.MessageComment
	if err := m.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40431, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load comment")
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	if comment.AuthorID != userID && !middleware.IsAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40321, "you can only delete your own comment")
		return
	}

	parentID := comment.MessageID
	if err := m.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to delete comment")
		return
	}
	utils.SyncAfterWrite(m.backup)

	ctx.Redirect(http.StatusFound, fmt.Sprintf("/get-message/%d", parentID))
}

// loadOwnedMessage fetches the message and enforces author-or-operator
// access, writing the error response itself on failure.
func (m *MessageController) loadOwnedMessage(ctx *gin.Context) (models.Message, bool) {
	var msg models.Message
	if err := m.db.First(&msg, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40430, "message not found")
			return msg, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load message")
		return msg, false
	}
	userID, _ := middleware.CurrentUserID(ctx)
	if msg.AuthorID != userID && !middleware.IsAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40322, "you can only modify your own messages")
		return msg, false
	}
	return msg, true
}

func (m *MessageController) saveUploadedImage(ctx *gin.Context) (string, bool) {
	fh, err := ctx.FormFile("image")
	if err != nil {
		return "", true
	}
	name, err := m.images.SaveResized(fh)
	if err != nil {
		utils.Sugar.Warnf("image upload rejected: %v", err)
		utils.Error(ctx, http.StatusBadRequest, 40044, "could not process uploaded image")
		return "", false
	}
	return name, true
}

func (m *MessageController) afterWrite() {
	if _, err := m.images.SweepOrphans(m.db); err != nil {
		utils.Sugar.Warnf("orphan image sweep failed: %v", err)
	}
	utils.SyncAfterWrite(m.backup)
}

func (m *MessageController) loadAuthors(ids []uint) (map[uint]gin.H, error) {
	out := map[uint]gin.H{}
	ids = utils.UniqueUint(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := m.db.Find(&users, ids).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = gin.H{"id": u.ID, "name": u.Name}
	}
	return out, nil
}
