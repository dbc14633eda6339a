package main

import (
	"riverside/config"
	"riverside/models"
	"riverside/routes"
	"riverside/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.BlogPost{}, &models.BlogComment{},
		&models.Message{}, &models.MessageComment{},
		&models.DevotionalPost{}, &models.NewsPost{}, &models.WordPost{},
	)

	images, err := utils.NewImageStore(cfg.UploadDir)
	if err != nil {
		utils.Sugar.Fatalf("failed to open upload directory %s: %v", cfg.UploadDir, err)
	}

	mailer := utils.NewMailer(cfg)
	if mailer == nil {
		utils.Sugar.Warn("no mail transport configured, contact form and password resets will fail")
	}

	var backup utils.BackupSyncer
	if cfg.S3Endpoint != "" {
		mb, err := utils.NewMinioBackup(cfg)
		if err != nil {
			utils.Sugar.Fatalf("failed to connect to backup store: %v", err)
		}
		backup = mb
	} else {
		utils.Sugar.Warn("no backup store configured, database backups disabled")
	}

	r := routes.SetupRouter(db, images, mailer, backup)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
