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

// BlogController manages the public blog: posts are operator-authored,
// comments come from any signed-in member.
type BlogController struct {
	db     *gorm.DB
	images *utils.ImageStore
	backup utils.BackupSyncer
}

// NewBlogController creates a BlogController.
func NewBlogController(db *gorm.DB, images *utils.ImageStore, backup utils.BackupSyncer) *BlogController {
	return &BlogController{db: db, images: images, backup: backup}
}

type postForm struct {
	Title    string `form:"title" json:"title" binding:"required,max=255"`
	Body     string `form:"body" json:"body" binding:"required"`
	ImageURL string `form:"img_url" json:"img_url" binding:"omitempty,url"`
}

// ListPosts returns every blog post, newest first, with author names.
func (b *BlogController) ListPosts(ctx *gin.Context) {
	var posts []models.BlogPost
	if err := b.db.Order("created_at DESC").Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}

	authorIDs := make([]uint, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
	}
	authors, err := b.loadAuthors(authorIDs)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load authors")
		return
	}

	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		items = append(items, gin.H{"post": p, "author": authors[p.AuthorID]})
	}
	utils.Success(ctx, gin.H{"items": items})
}

// GetPost returns one post with its comments and their authors.
func (b *BlogController) GetPost(ctx *gin.Context) {
	var post models.BlogPost
	if err := b.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	var comments []models.BlogComment
	if err := b.db.Where("blog_post_id = ?", post.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load comments")
		return
	}

	ids := make([]uint, 0, len(comments)+1)
	ids = append(ids, post.AuthorID)
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := b.loadAuthors(ids)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load authors")
		return
	}

	commentItems := make([]gin.H, 0, len(comments))
	for _, c := range comments {
		commentItems = append(commentItems, gin.H{"comment": c, "author": authors[c.AuthorID]})
	}
	utils.Success(ctx, gin.H{
		"post":     post,
		"author":   authors[post.AuthorID],
		"comments": commentItems,
	})
}

// CreatePostPage returns the empty create form data.
func (b *BlogController) CreatePostPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "create-blog-post"})
}

// CreatePost creates a blog post, operator only. An attached image runs
// through the resize pipeline; a bad image fails the whole request.
func (b *BlogController) CreatePost(ctx *gin.Context) {
	var req postForm
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40021, utils.FieldErrors(err))
		return
	}

	title := strings.TrimSpace(req.Title)
	var count int64
	if err := b.db.Model(&models.BlogPost{}).Where("title = ?", title).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to check titles")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40902, "a post with that title already exists")
		return
	}

	imageFile, ok := b.saveUploadedImage(ctx)
	if !ok {
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	post := models.BlogPost{
		Title:     title,
		Body:      utils.Sanitize(req.Body),
		ImageURL:  req.ImageURL,
		ImageFile: imageFile,
		AuthorID:  userID,
	}
	if err := b.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to create post")
		return
	}
	b.afterWrite()

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/get-blog-post/%d", post.ID))
}

// EditPostPage prefills the edit form with the current row state.
func (b *BlogController) EditPostPage(ctx *gin.Context) {
	var post models.BlogPost
	if err := b.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}
	utils.Success(ctx, gin.H{"page": "edit-blog-post", "post": post})
}

// EditPost overwrites a post on submit, operator only.
func (b *BlogController) EditPost(ctx *gin.Context) {
	var post models.BlogPost
	if err := b.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	var req postForm
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40022, utils.FieldErrors(err))
		return
	}

	imageFile, ok := b.saveUploadedImage(ctx)
	if !ok {
		return
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Body = utils.Sanitize(req.Body)
	post.ImageURL = req.ImageURL
	if imageFile != "" {
		post.ImageFile = imageFile
	}
	if err := b.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}
	b.afterWrite()

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/get-blog-post/%d", post.ID))
}

// DeletePost removes a post along with its uploaded image, operator only.
func (b *BlogController) DeletePost(ctx *gin.Context) {
	var post models.BlogPost
	if err := b.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	if err := b.db.Where("blog_post_id = ?", post.ID).Delete(&models.BlogComment{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to delete comments")
		return
	}
	if err := b.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}
	if err := b.images.Delete(post.ImageFile); err != nil {
		utils.Sugar.Warnf("failed to delete image %s: %v", post.ImageFile, err)
	}
	b.afterWrite()

	ctx.Redirect(http.StatusFound, "/all-blog-posts")
}

// CreateComment records a comment from a signed-in member and returns to
// the post detail view. Unauthenticated submitters never reach this
// handler; the route guard redirects them to login first.
func (b *BlogController) CreateComment(ctx *gin.Context) {
	var req struct {
		Text string `form:"text" json:"text" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40023, utils.FieldErrors(err))
		return
	}

	var post models.BlogPost
	if err := b.db.First(&post, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to load post")
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	comment := models.BlogComment{
		Text:       utils.Sanitize(req.Text),
		AuthorID:   userID,
		BlogPostID: post.ID,
	}
	if err := b.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to create comment")
		return
	}
	utils.SyncAfterWrite(b.backup)

	ctx.Redirect(http.StatusSeeOther, fmt.Sprintf("/get-blog-post/%d", post.ID))
}

// DeleteComment removes a comment (author or operator) and redirects to
// the parent post, discovered from the comment's foreign key before the
// delete.
func (b *BlogController) DeleteComment(ctx *gin.Context) {
	var comment models.BlogComment
	if err := b.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40421, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load comment")
		return
	}

	userID, _ := middleware.CurrentUserID(ctx)
	if comment.AuthorID != userID && !middleware.IsAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40320, "you can only delete your own comment")
		return
	}

	parentID := comment.BlogPostID
	if err := b.db.Delete(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to delete comment")
		return
	}
	utils.SyncAfterWrite(b.backup)

	ctx.Redirect(http.StatusFound, fmt.Sprintf("/get-blog-post/%d", parentID))
}

// saveUploadedImage runs the optional "image" form file through the
// pipeline. Returns ok=false after writing the error response.
func (b *BlogController) saveUploadedImage(ctx *gin.Context) (string, bool) {
	fh, err := ctx.FormFile("image")
	if err != nil {
		return "", true // no file attached
	}
	name, err := b.images.SaveResized(fh)
	if err != nil {
		utils.Sugar.Warnf("image upload rejected: %v", err)
		utils.Error(ctx, http.StatusBadRequest, 40030, "could not process uploaded image")
		return "", false
	}
	return name, true
}

func (b *BlogController) afterWrite() {
	if _, err := b.images.SweepOrphans(b.db); err != nil {
		utils.Sugar.Warnf("orphan image sweep failed: %v", err)
	}
	utils.SyncAfterWrite(b.backup)
}

func (b *BlogController) loadAuthors(ids []uint) (map[uint]gin.H, error) {
	out := map[uint]gin.H{}
	ids = utils.UniqueUint(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := b.db.Find(&users, ids).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = gin.H{"id": u.ID, "name": u.Name}
	}
	return out, nil
}
