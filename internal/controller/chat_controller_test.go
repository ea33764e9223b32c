package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"llm-chat-be/internal/dto"
	"llm-chat-be/internal/pkg/apperror"
	"llm-chat-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	sendResponse *dto.SendMessageResponse
	sendErr      error
	deleteErr    error

	gotUserId  uuid.UUID
	gotRequest *dto.SendMessageRequest
}

func (s *stubChatService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	s.gotUserId = userId
	s.gotRequest = request
	return s.sendResponse, s.sendErr
}

func (s *stubChatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.ChatSessionResponse, error) {
	return []*dto.ChatSessionResponse{}, nil
}

func (s *stubChatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.ChatMessageResponse, error) {
	return []*dto.ChatMessageResponse{}, nil
}

func (s *stubChatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	return s.deleteErr
}

func newChatTestApp(stub *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(stub).RegisterRoutes(api)
	return app
}

func bearerToken(t *testing.T, userId uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return "Bearer " + token
}

func TestChatController_SendRequiresAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newChatTestApp(&stubChatService{})

	body := bytes.NewBufferString(`{"chat_session_id":"x","message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/send", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatController_Send(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userId := uuid.New()
	sessionId := uuid.New()
	stub := &stubChatService{
		sendResponse: &dto.SendMessageResponse{
			ChatSessionId:    sessionId,
			ChatSessionTitle: "A title",
			Sent:             &dto.ChatMessageResponse{Id: uuid.New(), Role: "user", Content: "hi"},
			Reply:            &dto.ChatMessageResponse{Id: uuid.New(), Role: "model", Content: "hello"},
		},
	}
	app := newChatTestApp(stub)

	payload, _ := json.Marshal(dto.SendMessageRequest{
		ChatSessionId: sessionId.String(),
		Message:       "hi",
		Model:         "llama3",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/send", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, userId))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The caller identity comes from the token, never the body.
	assert.Equal(t, userId, stub.gotUserId)
	require.NotNil(t, stub.gotRequest)
	assert.Equal(t, "llama3", stub.gotRequest.Model)

	var body serverutils.Envelope[dto.SendMessageResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, sessionId, body.Data.ChatSessionId)
	assert.Equal(t, "A title", body.Data.ChatSessionTitle)
}

func TestChatController_SendValidatesBody(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	stub := &stubChatService{}
	app := newChatTestApp(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/send", bytes.NewBufferString(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, uuid.New()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Nil(t, stub.gotRequest)
}

func TestChatController_SendMapsServiceError(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	stub := &stubChatService{sendErr: apperror.NewForbidden("chat session belongs to another user")}
	app := newChatTestApp(stub)

	payload, _ := json.Marshal(dto.SendMessageRequest{ChatSessionId: uuid.New().String(), Message: "hi"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1/send", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, uuid.New()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChatController_DeleteRejectsBadId(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newChatTestApp(&stubChatService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/v1/not-a-uuid", nil)
	req.Header.Set("Authorization", bearerToken(t, uuid.New()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
