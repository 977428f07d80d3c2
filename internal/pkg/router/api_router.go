package router

import (
	apiv1 "github.com/versemind/VerseMind/internal/api/v1"
	"github.com/versemind/VerseMind/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "VerseMind quota API",
		})
	})

	apiServer := apiv1.NewAPIServer()

	// Public read-only routes
	v1 := api.Group("/v1")
	apiv1.RegisterHandlers(v1, apiServer)

	// Internal mutation routes, service-credential only
	internal := api.Group("/internal/v1", middleware.ServiceKeyAuthMiddleware())
	apiv1.RegisterInternalHandlers(internal, apiServer)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
