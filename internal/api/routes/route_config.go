package routes

import (
	"wami-backend/internal/api/handlers"
	"wami-backend/internal/middleware"
	"wami-backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App             *fiber.App
	UserHandler     handlers.UserHandler
	BottleHandler   handlers.BottleHandler
	VineyardHandler handlers.VineyardHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Bottles()
	c.Game()
	c.GuestRoute()
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	// user routes
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", c.Middleware.AuthMiddleware(c.JWTService), c.UserHandler.Me)
		user.Post("/forget", c.UserHandler.ForgotPassword)
		user.Post("/reset", c.UserHandler.ResetPassword)
	}
}

func (c *Config) Bottles() {
	bottles := c.App.Group("/api/v1/bottles", c.Middleware.AuthMiddleware(c.JWTService))

	bottles.Post("/scan", c.BottleHandler.ScanBottle)
	bottles.Post("", c.BottleHandler.SaveBottle)
	bottles.Get("", c.BottleHandler.GetCollection)
	bottles.Get("/:id", c.BottleHandler.GetBottleDetails)
	bottles.Post("/:id/image", c.BottleHandler.UploadBottleImage)
}

func (c *Config) Game() {
	game := c.App.Group("/api/v1/game", c.Middleware.AuthMiddleware(c.JWTService))

	game.Get("/vineyard", c.VineyardHandler.GetVineyard)
	game.Post("/harvest", c.VineyardHandler.Harvest)
	game.Post("/upgrade", c.VineyardHandler.Upgrade)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong, its works"})
	})
}
