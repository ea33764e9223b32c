package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"llm-chat-be/internal/dto"
	"llm-chat-be/internal/entity"
	"llm-chat-be/internal/pkg/apperror"
	"llm-chat-be/internal/pkg/logger"
	"llm-chat-be/internal/repository/specification"
	"llm-chat-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
	googleoauth "golang.org/x/oauth2/google"
)

type IOAuthService interface {
	GetLoginURL(provider string) (string, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory unitofwork.RepositoryFactory
	configs    map[string]*oauth2.Config
	log        logger.ILogger
}

// providerIdentity is the normalized userinfo shape across providers.
type providerIdentity struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IOAuthService {
	configs := map[string]*oauth2.Config{
		"github": {
			ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githuboauth.Endpoint,
		},
		"google": {
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: googleoauth.Endpoint,
		},
	}

	return &oauthService{
		uowFactory: uowFactory,
		configs:    configs,
		log:        log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, error) {
	conf, ok := s.configs[provider]
	if !ok {
		return "", apperror.NewInvalidInput("unsupported provider: " + provider)
	}

	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)

	return conf.AuthCodeURL(state), nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	conf, ok := s.configs[provider]
	if !ok {
		return nil, apperror.NewInvalidInput("unsupported provider: " + provider)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	identity, err := s.fetchIdentity(ctx, provider, conf, token)
	if err != nil {
		return nil, err
	}
	if identity.Email == "" {
		return nil, apperror.NewInvalidInput("provider did not return an email address")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: identity.Email})
	if err != nil {
		return nil, apperror.NewPersistence(err)
	}

	if user == nil {
		newUser := &entity.User{
			Id:        uuid.New(),
			Email:     identity.Email,
			FullName:  identity.Name,
			Status:    entity.UserStatusActive,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if identity.AvatarURL != "" {
			newUser.AvatarURL = &identity.AvatarURL
		}

		if err := uow.Begin(ctx); err != nil {
			return nil, apperror.NewPersistence(err)
		}
		if err := uow.UserRepository().Create(ctx, newUser); err != nil {
			uow.Rollback()
			return nil, apperror.NewPersistence(err)
		}
		if err := uow.Commit(); err != nil {
			return nil, apperror.NewPersistence(err)
		}

		user = newUser
		s.log.Info("oauth", "new user created", map[string]interface{}{
			"provider": provider,
			"user_id":  user.Id.String(),
		})
	}

	userProvider := &entity.UserProvider{
		Id:             uuid.New(),
		UserId:         user.Id,
		ProviderName:   provider,
		ProviderUserId: identity.ID,
		AvatarURL:      identity.AvatarURL,
		CreatedAt:      time.Now(),
	}
	if err := uow.UserRepository().SaveUserProvider(ctx, userProvider); err != nil {
		return nil, apperror.NewPersistence(err)
	}

	signedToken, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.log.Info("oauth", "login completed", map[string]interface{}{
		"provider": provider,
		"user_id":  user.Id.String(),
	})

	return &dto.LoginResponse{
		AccessToken: signedToken,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FullName:  user.FullName,
			AvatarURL: user.AvatarURL,
		},
	}, nil
}

func (s *oauthService) fetchIdentity(ctx context.Context, provider string, conf *oauth2.Config, token *oauth2.Token) (*providerIdentity, error) {
	client := conf.Client(ctx, token)

	switch provider {
	case "github":
		return s.fetchGithubIdentity(ctx, client)
	case "google":
		return s.fetchGoogleIdentity(ctx, client)
	}
	return nil, apperror.NewInvalidInput("unsupported provider: " + provider)
}

func (s *oauthService) fetchGithubIdentity(ctx context.Context, client *http.Client) (*providerIdentity, error) {
	body, err := getJSON(ctx, client, "https://api.github.com/user")
	if err != nil {
		return nil, err
	}

	var ghUser struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(body, &ghUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}

	email := ghUser.Email
	if email == "" {
		// The public email can be hidden; the user:email scope still exposes
		// it through the emails endpoint.
		email, err = s.fetchGithubPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	return &providerIdentity{
		ID:        strconv.FormatInt(ghUser.ID, 10),
		Email:     email,
		Name:      name,
		AvatarURL: ghUser.AvatarURL,
	}, nil
}

func (s *oauthService) fetchGithubPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	body, err := getJSON(ctx, client, "https://api.github.com/user/emails")
	if err != nil {
		return "", err
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.Unmarshal(body, &emails); err != nil {
		return "", fmt.Errorf("failed to parse email list: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func (s *oauthService) fetchGoogleIdentity(ctx context.Context, client *http.Client) (*providerIdentity, error) {
	body, err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &googleUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}

	return &providerIdentity{
		ID:        googleUser.ID,
		Email:     googleUser.Email,
		Name:      googleUser.Name,
		AvatarURL: googleUser.Picture,
	}, nil
}

func (s *oauthService) issueToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}
	return body, nil
}
