package controller

import (
	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/pkg/serverutils"
	"ai-invoicing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
	Send(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Get(":number", c.Show)
	h.Patch(":number/status", c.UpdateStatus)
	h.Post(":number/send", c.Send)
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	tenantId, _ := identityFromLocals(ctx)

	res, err := c.service.List(ctx.Context(), tenantId,
		ctx.Query("type"),
		ctx.Query("client"),
		ctx.QueryInt("limit"),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	tenantId, _ := identityFromLocals(ctx)

	res, err := c.service.Get(ctx.Context(), tenantId, ctx.Params("number"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show document", res))
}

func (c *documentController) UpdateStatus(ctx *fiber.Ctx) error {
	tenantId, userId := identityFromLocals(ctx)

	var req dto.UpdateDocumentStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateStatus(ctx.Context(), tenantId, userId, ctx.Params("number"), req.Status)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document status", res))
}

func (c *documentController) Send(ctx *fiber.Ctx) error {
	tenantId, userId := identityFromLocals(ctx)

	res, err := c.service.Send(ctx.Context(), tenantId, userId, ctx.Params("number"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send document", res))
}
