package bootstrap

import (
	"llm-chat-be/internal/config"
	"llm-chat-be/internal/controller"
	"llm-chat-be/internal/pkg/logger"
	"llm-chat-be/internal/repository/unitofwork"
	"llm-chat-be/internal/service"
	"llm-chat-be/pkg/llm/ollama"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	OAuthController controller.IOAuthController
	UserController  controller.IUserController
	ChatController  controller.IChatController
	ModelController controller.IModelController

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Inference backend
	llmProvider := ollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.ChatModel)
	titleGen := service.NewTitleGenerator(llmProvider, cfg.Ai.TitleModel)

	// 3. Services
	oauthService := service.NewOAuthService(uowFactory, sysLogger)
	userService := service.NewUserService(uowFactory)
	chatService := service.NewChatService(uowFactory, llmProvider, titleGen, sysLogger)
	modelService := service.NewModelService(llmProvider)

	// 4. Controllers
	return &Container{
		OAuthController: controller.NewOAuthController(oauthService),
		UserController:  controller.NewUserController(userService),
		ChatController:  controller.NewChatController(chatService),
		ModelController: controller.NewModelController(modelService),

		Logger: sysLogger,
	}
}
