package controller

import (
	"llm-chat-be/internal/pkg/serverutils"
	"llm-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModelController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
}

type modelController struct {
	modelService service.IModelService
}

func NewModelController(modelService service.IModelService) IModelController {
	return &modelController{
		modelService: modelService,
	}
}

func (c *modelController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/model/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
}

func (c *modelController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.modelService.GetAvailableModels(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get models", res))
}
