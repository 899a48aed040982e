package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Mohamedmnem11/ivita/internal/api"
	"github.com/Mohamedmnem11/ivita/pkg/logger"
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// User is the authenticated user's profile as reported by the API.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Service performs the authentication operations of the storefront API and
// maintains the session on success.
type Service struct {
	client  *api.Client
	session *Session
	log     *logger.Logger
}

// NewService constructs an authentication service.
func NewService(client *api.Client, session *Session, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	return &Service{client: client, session: session, log: log}
}

// Register creates an account and returns the user id to verify against.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, error) {
	resp, err := s.client.Post(ctx, "/auth/register", req)
	if err != nil {
		return "", err
	}

	var out struct {
		UserID string `json:"user_id"`
	}
	if err := s.client.DecodeResponse(resp, &out); err != nil {
		return "", err
	}
	if out.UserID == "" {
		return "", fmt.Errorf("auth: register response missing user_id")
	}
	return out.UserID, nil
}

// VerifyOTP confirms the registration code and stores the issued tokens.
func (s *Service) VerifyOTP(ctx context.Context, userID string, otp int) error {
	resp, err := s.client.Post(ctx, "/auth/verify", map[string]interface{}{
		"user_id": userID,
		"otp":     otp,
	})
	if err != nil {
		return err
	}
	return s.storeTokens(resp)
}

// LoginWhatsApp requests a verification code for the given phone number.
func (s *Service) LoginWhatsApp(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("auth: phone is required")
	}

	resp, err := s.client.Post(ctx, "/auth/login_whatsapp", map[string]string{"phone": phone})
	if err != nil {
		return err
	}
	return s.client.DecodeResponse(resp, nil)
}

// VerifyWhatsApp confirms the WhatsApp code and stores the issued tokens.
func (s *Service) VerifyWhatsApp(ctx context.Context, phone, otp string) error {
	resp, err := s.client.Post(ctx, "/auth/verify_whatsapp", map[string]string{
		"phone": phone,
		"otp":   otp,
	})
	if err != nil {
		return err
	}
	return s.storeTokens(resp)
}

// UserInfo fetches the authenticated user's profile.
func (s *Service) UserInfo(ctx context.Context) (User, error) {
	resp, err := s.client.Get(ctx, "/auth/get_info")
	if err != nil {
		return User{}, err
	}

	var user User
	if err := s.client.DecodeResponse(resp, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Logout clears the stored credential pair.
func (s *Service) Logout() {
	s.session.Clear()
	s.log.Info("session cleared")
}

func (s *Service) storeTokens(resp *http.Response) error {
	var pair tokenPair
	if err := s.client.DecodeResponse(resp, &pair); err != nil {
		return err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("auth: verification response missing tokens")
	}
	s.session.SetTokens(pair.AccessToken, pair.RefreshToken)
	return nil
}
