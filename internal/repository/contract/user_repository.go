package contract

import (
	"context"

	"llm-chat-be/internal/entity"
	"llm-chat-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Provider linkage for OAuth identities
	SaveUserProvider(ctx context.Context, provider *entity.UserProvider) error
}
