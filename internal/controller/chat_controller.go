package controller

import (
	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/pkg/serverutils"
	"ai-invoicing-be/internal/service"
	"ai-invoicing-be/pkg/conversation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	assistant service.IAssistantService
}

func NewChatController(assistant service.IAssistantService) IChatController {
	return &chatController{assistant: assistant}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/chat", c.Chat)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	tenantId, userId := identityFromLocals(ctx)

	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistant.HandleMessage(ctx.Context(), tenantId, userId, conversation.ChannelWeb, req.ConversationId, req.Message)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle message", res))
}

func identityFromLocals(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID) {
	tenantIdStr, _ := ctx.Locals("tenant_id").(string)
	userIdStr, _ := ctx.Locals("user_id").(string)
	tenantId, _ := uuid.Parse(tenantIdStr)
	userId, _ := uuid.Parse(userIdStr)
	return tenantId, userId
}
