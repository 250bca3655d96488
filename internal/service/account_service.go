package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	config "github.com/maheshrc27/postqueue/configs"
	"github.com/maheshrc27/postqueue/internal/models"
	"github.com/maheshrc27/postqueue/internal/repository"
	"github.com/maheshrc27/postqueue/internal/transfer"
	"github.com/maheshrc27/postqueue/pkg/utils"
	"golang.org/x/oauth2"
)

// AccountService is the surface of the external account-linking
// collaborator this engine consumes: linked-account listing, connect URLs
// for the dashboard, and decrypted token access for the adapters.
type AccountService interface {
	List(ctx context.Context, userID int64) ([]*transfer.AccountInfo, error)
	ConnectURL(platform string) (string, error)
	Token(ctx context.Context, account *models.SocialAccount) (string, error)
	Refresh(ctx context.Context, account *models.SocialAccount) error
}

type accountService struct {
	cfg config.Config
	sa  repository.SocialAccountRepository
}

func NewAccountService(cfg config.Config, sa repository.SocialAccountRepository) AccountService {
	return &accountService{cfg: cfg, sa: sa}
}

func (s *accountService) List(ctx context.Context, userID int64) ([]*transfer.AccountInfo, error) {
	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	infos := make([]*transfer.AccountInfo, 0, len(accounts))
	for _, a := range accounts {
		infos = append(infos, &transfer.AccountInfo{
			ID:              a.ID,
			Platform:        a.Platform,
			AccountName:     a.AccountName,
			AccountUsername: a.AccountUsername,
			ProfilePicture:  a.ProfilePicture,
			AccountStatus:   a.AccountStatus,
		})
	}
	return infos, nil
}

func (s *accountService) ConnectURL(platform string) (string, error) {
	conf, err := s.oauthConfig(platform)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("", oauth2.AccessTypeOffline), nil
}

func (s *accountService) Token(ctx context.Context, account *models.SocialAccount) (string, error) {
	if account == nil || account.AccountStatus != models.AccountStatusActive {
		return "", fmt.Errorf("social account is not linked")
	}

	token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return token, nil
}

// Refresh exchanges the stored refresh token for a new access token and
// persists it. Platforms without a refresh flow keep their long-lived token.
func (s *accountService) Refresh(ctx context.Context, account *models.SocialAccount) error {
	conf, err := s.oauthConfig(account.Platform)
	if err != nil {
		return err
	}
	if conf.Endpoint.TokenURL == "" {
		return nil
	}

	refreshToken, err := utils.Decrypt(account.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	token, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("token refresh failed for account %d: %w", account.ID, err)
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	newRefresh := token.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	encryptedRefresh, err := utils.Encrypt([]byte(newRefresh), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	expiresAt := token.Expiry
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(24 * time.Hour)
	}

	return s.sa.SetToken(ctx, account.ID, encryptedAccess, encryptedRefresh, expiresAt)
}

func (s *accountService) oauthConfig(platform string) (*oauth2.Config, error) {
	var app config.OAuthApp
	var endpoint oauth2.Endpoint
	var scopes []string

	switch platform {
	case models.PlatformInstagram:
		app = s.cfg.Instagram
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://api.instagram.com/oauth/authorize",
			TokenURL: "https://api.instagram.com/oauth/access_token",
		}
		scopes = []string{"instagram_business_basic", "instagram_business_content_publish"}
	case models.PlatformFacebook:
		app = s.cfg.Facebook
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://www.facebook.com/v21.0/dialog/oauth",
			TokenURL: "https://graph.facebook.com/v21.0/oauth/access_token",
		}
		scopes = []string{"pages_manage_posts", "pages_read_engagement"}
	case models.PlatformReddit:
		app = s.cfg.Reddit
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://www.reddit.com/api/v1/authorize",
			TokenURL: "https://www.reddit.com/api/v1/access_token",
		}
		scopes = []string{"identity", "submit"}
	case models.PlatformTwitter:
		app = s.cfg.Twitter
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://twitter.com/i/oauth2/authorize",
			TokenURL: "https://api.twitter.com/2/oauth2/token",
		}
		scopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}
	case models.PlatformWhatsapp:
		app = s.cfg.Whatsapp
		endpoint = oauth2.Endpoint{
			AuthURL:  "https://www.facebook.com/v21.0/dialog/oauth",
			TokenURL: "https://graph.facebook.com/v21.0/oauth/access_token",
		}
		scopes = []string{"whatsapp_business_messaging"}
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}

	return &oauth2.Config{
		ClientID:     app.ClientID,
		ClientSecret: app.ClientSecret,
		RedirectURL:  app.RedirectURI,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}, nil
}
