package service

import (
	"context"
	"errors"
	"time"

	"llm-chat-be/internal/dto"
	"llm-chat-be/internal/pkg/apperror"
	"llm-chat-be/pkg/llm"

	gocache "github.com/patrickmn/go-cache"
)

const modelListCacheKey = "models"

type IModelService interface {
	GetAvailableModels(ctx context.Context) ([]*dto.ModelResponse, error)
}

// modelService proxies the backend's model listing. The listing changes
// rarely, so results are held in a short TTL cache to keep the selection
// dropdown from hammering the backend.
type modelService struct {
	llmProvider llm.LLMProvider
	cache       *gocache.Cache
}

func NewModelService(llmProvider llm.LLMProvider) IModelService {
	return &modelService{
		llmProvider: llmProvider,
		cache:       gocache.New(30*time.Second, time.Minute),
	}
}

func (ms *modelService) GetAvailableModels(ctx context.Context) ([]*dto.ModelResponse, error) {
	if cached, found := ms.cache.Get(modelListCacheKey); found {
		return cached.([]*dto.ModelResponse), nil
	}

	models, err := ms.llmProvider.ListModels(ctx)
	if err != nil {
		if errors.Is(err, llm.ErrBadResponse) {
			return nil, apperror.NewInvalidResponse(err)
		}
		return nil, apperror.NewInference(err)
	}

	response := make([]*dto.ModelResponse, 0, len(models))
	for _, m := range models {
		response = append(response, &dto.ModelResponse{Name: m.Name})
	}

	ms.cache.SetDefault(modelListCacheKey, response)
	return response, nil
}
