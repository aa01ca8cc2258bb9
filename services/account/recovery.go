package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"nextlevel/models"
	"nextlevel/services/apperr"
	"nextlevel/services/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errNoSigner = errors.New("account: no token signer configured")

// TokenPair is handed out at sign-in and on refresh.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Service) IssueTokens(user models.User) (TokenPair, error) {
	if s.tokens == nil {
		return TokenPair{}, errNoSigner
	}
	access, err := s.tokens.Access(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.Refresh(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Token: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new pair. The role is re-read from
// the account, and only active accounts may refresh.
func (s *Service) Refresh(ctx context.Context, raw string) (models.User, TokenPair, error) {
	if s.tokens == nil {
		return models.User{}, TokenPair{}, errNoSigner
	}
	claims, err := s.tokens.Parse(raw, token.TypeRefresh)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}

	user, err := s.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, TokenPair{}, apperr.ErrInvalidToken
		}
		return models.User{}, TokenPair{}, err
	}
	if user.Status != models.UserActive {
		return models.User{}, TokenPair{}, apperr.ErrInvalidToken
	}

	pair, err := s.IssueTokens(user)
	return user, pair, err
}

// PasswordResetToken signs a reset token for the account registered under
// email. It fails with NotFound when there is no such account.
func (s *Service) PasswordResetToken(ctx context.Context, email string) (models.User, string, error) {
	if s.tokens == nil {
		return models.User{}, "", errNoSigner
	}
	user, err := s.byEmail(ctx, email)
	if err != nil {
		return models.User{}, "", err
	}
	tok, err := s.tokens.Reset(user.Email, passwordStamp(user.Password))
	return user, tok, err
}

// ResetPassword sets a new password using a token from PasswordResetToken.
// A token stops working once the password it was issued for has changed.
func (s *Service) ResetPassword(ctx context.Context, raw, next string) error {
	if s.tokens == nil {
		return errNoSigner
	}
	claims, err := s.tokens.Parse(raw, token.TypeReset)
	if err != nil {
		return apperr.Wrap(apperr.ErrResetLinkInvalid, err)
	}

	user, err := s.byEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrResetLinkInvalid
		}
		return err
	}
	if claims.Stamp != passwordStamp(user.Password) {
		return apperr.ErrResetLinkInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("password", string(hashed)).Error
}

func (s *Service) byEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, apperr.NotFound("User")
	}
	return user, err
}

func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
