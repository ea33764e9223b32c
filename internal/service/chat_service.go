package service

import (
	"context"
	"errors"
	"time"

	"llm-chat-be/internal/constant"
	"llm-chat-be/internal/dto"
	"llm-chat-be/internal/entity"
	"llm-chat-be/internal/pkg/apperror"
	"llm-chat-be/internal/pkg/logger"
	"llm-chat-be/internal/repository/specification"
	"llm-chat-be/internal/repository/unitofwork"
	"llm-chat-be/pkg/llm"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IChatService defines the chat service interface
type IChatService interface {
	SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.ChatMessageResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

// chatService sequences the send flow: resolve caller, look up or create the
// session, persist the user message, call the inference backend, persist the
// reply. There is deliberately no transaction spanning the inference call:
// a failed generation leaves the user message persisted.
type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
	titleGen    *TitleGenerator
	log         logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	titleGen *TitleGenerator,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
		titleGen:    titleGen,
		log:         log,
	}
}

func (cs *chatService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	if userId == uuid.Nil {
		return nil, apperror.NewUnauthenticated("missing caller identity")
	}
	if request.ChatSessionId == "" {
		return nil, apperror.NewInvalidInput("missing chat session id")
	}
	sessionId, err := uuid.Parse(request.ChatSessionId)
	if err != nil {
		return nil, apperror.NewInvalidInput("chat session id must be a UUID")
	}
	if request.Message == "" {
		return nil, apperror.NewInvalidInput("missing message content")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, apperror.NewPersistence(err)
	}

	createSession := session == nil
	if createSession {
		// First message for this id: derive a title before creating the
		// session. A failed title generation falls back to a default rather
		// than aborting the submission.
		title, terr := cs.titleGen.Generate(ctx, request.Message)
		if terr != nil {
			cs.log.Warn("chat", "title generation failed, using default title", map[string]interface{}{
				"chat_session_id": sessionId.String(),
				"error":           terr.Error(),
			})
			title = constant.DefaultSessionTitle
		}
		session = &entity.ChatSession{
			Id:        sessionId,
			UserId:    userId,
			Title:     title,
			CreatedAt: time.Now(),
		}
	} else if session.UserId != userId {
		return nil, apperror.NewForbidden("chat session belongs to another user")
	}

	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       request.Message,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	}

	err = cs.persistUserTurn(ctx, session, userMessage, createSession)
	if createSession && errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a create race on the same fresh id. Re-read the winner's row
		// and append to it instead of erroring.
		winner, ferr := cs.uowFactory.NewUnitOfWork(ctx).ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
		if ferr != nil {
			return nil, apperror.NewPersistence(ferr)
		}
		if winner == nil {
			return nil, apperror.NewPersistence(err)
		}
		if winner.UserId != userId {
			return nil, apperror.NewForbidden("chat session belongs to another user")
		}
		session = winner
		err = cs.persistUserTurn(ctx, session, userMessage, false)
	}
	if err != nil {
		return nil, apperror.NewPersistence(err)
	}

	// The user message is committed at this point. Inference failures below
	// surface to the caller without compensating deletes.
	reply, err := cs.llmProvider.Generate(ctx, request.Message, llm.WithModel(request.Model))
	if err != nil {
		cs.log.Error("chat", "inference call failed", map[string]interface{}{
			"chat_session_id": sessionId.String(),
			"model":           request.Model,
			"error":           err.Error(),
		})
		if errors.Is(err, llm.ErrBadResponse) {
			return nil, apperror.NewInvalidResponse(err)
		}
		return nil, apperror.NewInference(err)
	}

	modelMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       reply,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: sessionId,
		CreatedAt:     time.Now(),
	}

	uow = cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, modelMessage); err != nil {
		return nil, apperror.NewPersistence(err)
	}

	// Bump updated_at so the session list keeps most-recent-first order.
	now := time.Now()
	session.UpdatedAt = &now
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		cs.log.Warn("chat", "failed to touch session timestamp", map[string]interface{}{
			"chat_session_id": sessionId.String(),
			"error":           err.Error(),
		})
	}

	return &dto.SendMessageResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent:             toMessageResponse(userMessage),
		Reply:            toMessageResponse(modelMessage),
	}, nil
}

// persistUserTurn commits the session create (when needed) and the user
// message in a single transaction so a fresh session never exists without
// its first message.
func (cs *chatService) persistUserTurn(ctx context.Context, session *entity.ChatSession, message *entity.ChatMessage, createSession bool) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if createSession {
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return err
		}
	}
	if err := uow.ChatMessageRepository().Create(ctx, message); err != nil {
		return err
	}

	return uow.Commit()
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.NewPersistence(err)
	}

	response := make([]*dto.ChatSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.ChatSessionResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.ChatMessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, apperror.NewPersistence(err)
	}
	if session == nil {
		return nil, apperror.NewNotFound("chat session not found")
	}
	if session.UserId != userId {
		return nil, apperror.NewForbidden("chat session belongs to another user")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.NewPersistence(err)
	}

	response := make([]*dto.ChatMessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, toMessageResponse(m))
	}

	return response, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return apperror.NewPersistence(err)
	}
	if session == nil {
		return apperror.NewNotFound("chat session not found")
	}
	if session.UserId != userId {
		return apperror.NewForbidden("chat session belongs to another user")
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.NewPersistence(err)
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return apperror.NewPersistence(err)
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return apperror.NewPersistence(err)
	}

	if err := uow.Commit(); err != nil {
		return apperror.NewPersistence(err)
	}
	return nil
}

func toMessageResponse(m *entity.ChatMessage) *dto.ChatMessageResponse {
	return &dto.ChatMessageResponse{
		Id:        m.Id,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
