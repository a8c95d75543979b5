package controller

import (
	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/pkg/serverutils"
	"ai-invoicing-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IScheduleController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Deactivate(ctx *fiber.Ctx) error
}

type scheduleController struct {
	service service.IScheduleService
}

func NewScheduleController(service service.IScheduleService) IScheduleController {
	return &scheduleController{service: service}
}

func (c *scheduleController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/schedule/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Delete(":id", c.Deactivate)
}

func (c *scheduleController) Create(ctx *fiber.Ctx) error {
	tenantId, _ := identityFromLocals(ctx)

	var req dto.CreateScheduleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), tenantId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create schedule", res))
}

func (c *scheduleController) GetAll(ctx *fiber.Ctx) error {
	tenantId, _ := identityFromLocals(ctx)

	res, err := c.service.List(ctx.Context(), tenantId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all schedules", res))
}

func (c *scheduleController) Deactivate(ctx *fiber.Ctx) error {
	tenantId, _ := identityFromLocals(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid schedule id")
	}

	if err := c.service.Deactivate(ctx.Context(), tenantId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success deactivate schedule", nil))
}
