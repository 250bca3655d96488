package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/api/handlers"
	"github.com/maheshrc27/postqueue/internal/api/middleware"
	job "github.com/maheshrc27/postqueue/internal/jobs"
	"github.com/maheshrc27/postqueue/internal/platform"
	"github.com/maheshrc27/postqueue/internal/queue"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	postRepo := repository.NewScheduledPostRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	postRunRepo := repository.NewPostRunRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)

	r2Service := service.NewR2Service(*cfg)
	postService := service.NewPostService(db, postRepo, postMediaRepo, postRunRepo, socialAccountRepo)
	accountService := service.NewAccountService(*cfg, socialAccountRepo)
	mediaService := service.NewMediaService(*r2Service, cfg.R2.PublicBaseURL)

	registry := platform.NewRegistry()
	for _, p := range []platform.Publisher{
		platform.NewInstagramPublisher(),
		platform.NewRedditPublisher(),
		platform.NewWhatsappPublisher(),
		platform.NewFacebookPublisher(),
		platform.NewTwitterPublisher(),
	} {
		if err := registry.Register(p); err != nil {
			log.Fatalf("Failed to register publisher: %v", err)
		}
	}

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, client)
	api.Post("/scheduler/posts", post.CreatePost)
	api.Get("/scheduler/posts", post.ListPosts)
	api.Get("/scheduler/posts/statistics", post.Statistics)
	api.Get("/scheduler/posts/:id", post.GetPost)
	api.Post("/scheduler/posts/:id/cancel", post.CancelPost)
	api.Post("/scheduler/posts/:id/promote", post.PromotePost)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/scheduler/media", media.Upload)

	account := handlers.NewAccountHandler(accountService)
	api.Get("/accounts", account.ListAccounts)
	api.Get("/accounts/connect/:platform", account.ConnectURL)

	// queue worker
	worker := queue.NewWorker(cfg.Scheduler, postRepo, postMediaRepo, postRunRepo, socialAccountRepo, registry, accountService, client)

	// cron jobs
	sweepJob := job.NewSweepJob(cfg.Scheduler, postRepo, registry, client)
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, accountService)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", sweepJob.Sweep)
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: cfg.Scheduler.Concurrency,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, worker.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
