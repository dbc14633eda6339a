package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"riverside/config"
	"riverside/controllers"
	"riverside/middleware"
	"riverside/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, images *utils.ImageStore, mailer utils.Mailer, backup utils.BackupSyncer) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db, mailer, backup)
	blogController := controllers.NewBlogController(db, images, backup)
	messageController := controllers.NewMessageController(db, images, backup)
	siteController := controllers.NewSiteController(db, images, backup)
	contactController := controllers.NewContactController(mailer)
	imageController := controllers.NewImageController(db, images, backup)
	formsController, err := controllers.NewFormsController(cfg.FormsDir)
	if err != nil {
		utils.Sugar.Fatalf("failed to open forms directory %s: %v", cfg.FormsDir, err)
	}

	// Public pages
	r.GET("/", siteController.Home)
	r.GET("/about", siteController.About)
	r.GET("/all-blog-posts", blogController.ListPosts)
	r.POST("/all-blog-posts", blogController.ListPosts)
	r.GET("/get-blog-post/:id", blogController.GetPost)
	r.GET("/forms", formsController.ListForms)
	r.GET("/download_pdf/:filename", formsController.DownloadPDF)

	// Contact form, rate limited against abuse
	contactGroup := r.Group("")
	contactGroup.Use(middleware.RateLimitMiddleware())
	contactGroup.GET("/contact", contactController.ContactPage)
	contactGroup.POST("/contact", contactController.Contact)

	// Auth flows, rate limited
	authGroup := r.Group("")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.GET("/register", authController.RegisterPage)
	authGroup.POST("/register", authController.Register)
	authGroup.GET("/login", authController.LoginPage)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/reset-request", authController.ResetRequestPage)
	authGroup.POST("/reset-request", authController.ResetRequest)
	authGroup.GET("/reset/:id", authController.ResetPage)
	authGroup.POST("/reset/:id", authController.Reset)

	r.GET("/logout", authController.Logout)

	// Signed-in members: message board and commenting
	member := r.Group("")
	member.Use(middleware.AuthRequired())
	member.POST("/post-blog-comment/:id", blogController.CreateComment)
	member.GET("/delete-blog-comment/:id", blogController.DeleteComment)
	member.GET("/all-messages", messageController.ListMessages)
	member.POST("/all-messages", messageController.ListMessages)
	member.GET("/get-message/:id", messageController.GetMessage)
	member.GET("/create-message", messageController.CreateMessagePage)
	member.POST("/create-message", messageController.CreateMessage)
	member.GET("/edit-message/:id", messageController.EditMessagePage)
	member.POST("/edit-message/:id", messageController.EditMessage)
	member.GET("/delete-message/:id", messageController.DeleteMessage)
	member.POST("/post-message-comment/:id", messageController.CreateComment)
	member.GET("/delete-message-comment/:id", messageController.DeleteComment)

	// Operator only
	operator := r.Group("")
	operator.Use(middleware.AuthRequired(), middleware.AdminRequired())
	operator.GET("/dashboard", siteController.Dashboard)
	operator.POST("/dashboard", siteController.Dashboard)
	operator.GET("/create-blog-post", blogController.CreatePostPage)
	operator.POST("/create-blog-post", blogController.CreatePost)
	operator.GET("/edit-blog-post/:id", blogController.EditPostPage)
	operator.POST("/edit-blog-post/:id", blogController.EditPost)
	operator.GET("/delete-blog-post/:id", blogController.DeletePost)
	operator.POST("/create-devotional", siteController.CreateDevotional)
	operator.GET("/edit-devotional/:id", siteController.EditDevotionalPage)
	operator.POST("/edit-devotional/:id", siteController.EditDevotional)
	operator.GET("/delete-devotional/:id", siteController.DeleteDevotional)
	operator.POST("/create-news", siteController.CreateNews)
	operator.POST("/edit-news/:id", siteController.EditNews)
	operator.GET("/delete-news/:id", siteController.DeleteNews)
	operator.POST("/edit-word", siteController.EditWord)
	operator.GET("/users", authController.ListUsers)
	operator.GET("/delete-user/:id", authController.DeleteUser)
	operator.GET("/view-images", imageController.ListImages)
	operator.GET("/delete-image/:filename", imageController.DeleteImage)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
