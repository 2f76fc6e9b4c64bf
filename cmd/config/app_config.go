package config

import (
	"os"
	"time"

	"wami-backend/internal/api/handlers"
	"wami-backend/internal/api/routes"
	"wami-backend/internal/middleware"
	"wami-backend/internal/utils"
	"wami-backend/internal/utils/storage"
	"wami-backend/pkg/bottle"
	"wami-backend/pkg/jwt"
	"wami-backend/pkg/recognition"
	"wami-backend/pkg/user"
	"wami-backend/pkg/vineyard"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         10 * 1024 * 1024,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()

	// Repository
	userRepository := user.NewUserRepository(db)
	bottleRepository := bottle.NewBottleRepository(db)
	vineyardRepository := vineyard.NewVineyardRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService)
	recognizer := recognition.NewGeminiRecognizer(
		utils.GetConfig("GEMINI_API_KEY"),
		utils.GetConfig("GEMINI_MODEL"),
	)
	recognitionService := recognition.NewRecognitionService(recognizer)
	bottleService := bottle.NewBottleService(bottleRepository, s3)
	vineyardService := vineyard.NewVineyardService(vineyardRepository)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	bottleHandler := handlers.NewBottleHandler(bottleService, recognitionService, validator)
	vineyardHandler := handlers.NewVineyardHandler(vineyardService)

	// routes
	routesConfig := routes.Config{
		App:             app,
		UserHandler:     userHandler,
		BottleHandler:   bottleHandler,
		VineyardHandler: vineyardHandler,
		Middleware:      middlewares,
		JWTService:      jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
