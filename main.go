package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nextlevel/config"
	"nextlevel/database"
	"nextlevel/routers"
	"nextlevel/utils"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := routers.NewApp(time.Duration(config.AppConfig.RequestTimeout)*time.Second, config.AppConfig.UploadDir)

	scheduler, err := utils.InitializeReleaseScheduler(config.AppConfig.ReleaseCron)
	if err != nil {
		log.Fatalf("Failed to start release scheduler: %v", err)
	}

	go func() {
		log.Printf("Server is running on port %s", config.AppConfig.Port)
		if err := app.Listen(":" + config.AppConfig.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	if sqlDB, err := database.Database.Db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
