package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"riverside/config"
	"riverside/middleware"
	"riverside/models"
	"riverside/utils"
)

// AuthController handles registration, login, logout, password reset and
// the operator-only user administration endpoints.
type AuthController struct {
	db     *gorm.DB
	mailer utils.Mailer
	backup utils.BackupSyncer
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, mailer utils.Mailer, backup utils.BackupSyncer) *AuthController {
	return &AuthController{db: db, mailer: mailer, backup: backup}
}

// RegisterPage returns the registration page data.
func (a *AuthController) RegisterPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "register"})
}

// Register creates a local account and establishes a session.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Name     string `form:"name" json:"name" binding:"required,max=128"`
		Email    string `form:"email" json:"email" binding:"required,email"`
		Password string `form:"password" json:"password" binding:"required,min=6"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40001, utils.FieldErrors(err))
		return
	}

	email := strings.TrimSpace(req.Email)
	var count int64
	if err := a.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to check existing accounts")
		return
	}
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40901, "an account with that email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create account")
		return
	}
	utils.SyncAfterWrite(a.backup)

	if err := a.establishSession(ctx, user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to establish session")
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}

// LoginPage returns the login page data.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "login"})
}

// Login verifies credentials with a single lookup by email followed by one
// password check, so "email not found" and "password incorrect" are
// reported correctly for every account.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `form:"email" json:"email" binding:"required"`
		Password string `form:"password" json:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40002, utils.FieldErrors(err))
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "email not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to look up account")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40102, "password incorrect")
		return
	}

	if err := a.establishSession(ctx, user); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to establish session")
		return
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}

// Logout unconditionally clears the session cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	ctx.Redirect(http.StatusFound, "/")
}

// ResetRequestPage returns the reset-request page data.
func (a *AuthController) ResetRequestPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "reset-request"})
}

// ResetRequest mails a reset link to a registered address. Unknown
// addresses get a visible "not registered" message and no mail is sent.
func (a *AuthController) ResetRequest(ctx *gin.Context) {
	var req struct {
		Email string `form:"email" json:"email" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40003, utils.FieldErrors(err))
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.TrimSpace(req.Email)).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "that email is not registered")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to look up account")
		return
	}

	if a.mailer == nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "mail delivery is not configured")
		return
	}

	token, err := utils.GenerateResetToken(user.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to create reset link")
		return
	}
	link := fmt.Sprintf("%s/reset/%d?token=%s", config.Get().BaseURL, user.ID, token)
	if err := a.mailer.Send(user.Email, "Password Reset", utils.ResetBody(link)); err != nil {
		utils.Sugar.Warnf("reset mail to %s failed: %v", user.Email, err)
		utils.Error(ctx, http.StatusBadGateway, 50207, "failed to send reset email")
		return
	}

	utils.Success(ctx, gin.H{"message": "reset link sent"})
}

// ResetPage returns the reset form data for a given user id.
func (a *AuthController) ResetPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "reset", "user_id": ctx.Param("id")})
}

// Reset replaces a password when the link token checks out and both
// submitted copies match. A mismatch reports an error and changes nothing.
func (a *AuthController) Reset(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid user id")
		return
	}

	var req struct {
		Token    string `form:"token" json:"token"`
		Password string `form:"password" json:"password" binding:"required,min=6"`
		Confirm  string `form:"confirm" json:"confirm" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40005, utils.FieldErrors(err))
		return
	}
	token := req.Token
	if token == "" {
		token = ctx.Query("token")
	}
	if err := utils.VerifyResetToken(token, uint(userID)); err != nil {
		utils.Error(ctx, http.StatusForbidden, 40302, "invalid or expired reset link")
		return
	}

	if req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40006, "passwords do not match")
		return
	}

	var user models.User
	if err := a.db.First(&user, uint(userID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to look up account")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to update password")
		return
	}
	utils.SyncAfterWrite(a.backup)

	ctx.Redirect(http.StatusSeeOther, "/login")
}

// ListUsers returns all accounts, operator only.
func (a *AuthController) ListUsers(ctx *gin.Context) {
	var users []models.User
	if err := a.db.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50009, "failed to retrieve users")
		return
	}
	utils.Success(ctx, gin.H{"items": users})
}

// DeleteUser removes an account. The operator account itself is refused.
func (a *AuthController) DeleteUser(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid user id")
		return
	}
	if uint(userID) == models.AdminUserID {
		utils.Error(ctx, http.StatusBadRequest, 40008, "the operator account cannot be deleted")
		return
	}

	var user models.User
	if err := a.db.First(&user, uint(userID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to look up account")
		return
	}
	if err := a.db.Delete(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to delete user")
		return
	}
	utils.SyncAfterWrite(a.backup)

	ctx.Redirect(http.StatusFound, "/users")
}

func (a *AuthController) establishSession(ctx *gin.Context, user models.User) error {
	token, err := utils.GenerateSessionToken(user.ID, user.Name, utils.SessionDuration)
	if err != nil {
		return err
	}
	ctx.SetCookie(middleware.SessionCookieName, token, int(utils.SessionDuration.Seconds()), "/", "", false, true)
	return nil
}
