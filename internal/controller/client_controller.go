package controller

import (
	"ai-invoicing-be/internal/pkg/serverutils"
	"ai-invoicing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IClientController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
}

type clientController struct {
	service service.IDocumentService
}

func NewClientController(service service.IDocumentService) IClientController {
	return &clientController{service: service}
}

func (c *clientController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/client/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
}

func (c *clientController) GetAll(ctx *fiber.Ctx) error {
	tenantId, _ := identityFromLocals(ctx)

	res, err := c.service.ListClients(ctx.Context(), tenantId, ctx.Query("name"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all clients", res))
}
