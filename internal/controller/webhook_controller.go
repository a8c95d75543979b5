package controller

import (
	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/pkg/serverutils"
	"ai-invoicing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Receive(ctx *fiber.Ctx) error
}

type webhookController struct {
	webhook service.IWebhookService
}

func NewWebhookController(webhook service.IWebhookService) IWebhookController {
	return &webhookController{webhook: webhook}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook/v1")
	// Authenticated by shared secret, not JWT: the caller is the channel
	// provider, not a user.
	h.Post("/:channel", c.Receive)
}

func (c *webhookController) Receive(ctx *fiber.Ctx) error {
	if !c.webhook.VerifySecret(ctx.Get("X-Webhook-Secret")) {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid webhook secret"})
	}

	var req dto.WebhookInbound
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Channel = ctx.Params("channel")
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.webhook.Enqueue(ctx.Context(), &req); err != nil {
		return err
	}

	// 202: the reply arrives asynchronously through the bot transport.
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Message accepted", nil))
}
