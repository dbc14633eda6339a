package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"riverside/config"
	"riverside/utils"
)

// ContactController handles the public contact form.
type ContactController struct {
	mailer utils.Mailer
}

// NewContactController creates a ContactController.
func NewContactController(mailer utils.Mailer) *ContactController {
	return &ContactController{mailer: mailer}
}

// ContactPage returns the contact form data.
func (c *ContactController) ContactPage(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"page": "contact"})
}

// Contact relays a visitor message to the site mailbox. A delivery
// failure is reported to the caller, not swallowed.
func (c *ContactController) Contact(ctx *gin.Context) {
	var req struct {
		Name    string `form:"name" json:"name" binding:"required,max=255"`
		Email   string `form:"email" json:"email" binding:"required"`
		Message string `form:"message" json:"message" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.FailValidation(ctx, 40070, utils.FieldErrors(err))
		return
	}
	if !utils.ValidEmailAddress(req.Email) {
		utils.FailValidation(ctx, 40071, []utils.FieldError{
			{Field: "email", Message: "please enter a valid email address"},
		})
		return
	}

	if c.mailer == nil {
		utils.Error(ctx, http.StatusInternalServerError, 50080, "mail delivery is not configured")
		return
	}

	cfg := config.Get()
	subject := fmt.Sprintf("Contact form: %s", strings.TrimSpace(req.Name))
	body := utils.ContactBody(req.Name, req.Email, req.Message)
	if err := c.mailer.Send(cfg.ContactRecipient, subject, body); err != nil {
		utils.Sugar.Warnf("contact mail to %s failed: %v", cfg.ContactRecipient, err)
		utils.Error(ctx, http.StatusBadGateway, 50081, "your message could not be sent, please try again later")
		return
	}

	utils.Success(ctx, gin.H{"sent": true})
}
