// Package account handles sign-up, sign-in and administrator approval of
// learner accounts.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"nextlevel/models"
	"nextlevel/services/apperr"
	"nextlevel/services/token"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	Name       string
	Email      string
	Password   string
	EmployeeID string
	Area       string
	JobTitle   string
}

// Client describes where a sign-in came from.
type Client struct {
	IP     string
	Device string
}

type Service struct {
	db     *gorm.DB
	cost   int
	now    func() time.Time
	tokens *token.Signer
}

// New returns an account service hashing passwords with the given bcrypt cost.
func New(db *gorm.DB, cost int) *Service {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{db: db, cost: cost, now: time.Now}
}

// WithTokens returns a copy of the service that signs tokens with signer.
func (s *Service) WithTokens(signer *token.Signer) *Service {
	c := *s
	c.tokens = signer
	return &c
}

// Signup registers a pending learner account.
func (s *Service) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	db := s.db.WithContext(ctx)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return models.User{}, err
	}
	if n > 0 {
		return models.User{}, apperr.Conflict("Email is already registered!")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleUser,
		Status:   models.UserPending,
		Area:     in.Area,
		JobTitle: in.JobTitle,
	}
	if id := strings.TrimSpace(in.EmployeeID); id != "" {
		user.EmployeeID = &id
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, apperr.Wrap(apperr.Conflict("Email or employee id is already registered!"), err)
		}
		return models.User{}, err
	}
	return user, nil
}

// Login checks the credentials of an active account and records the sign-in.
func (s *Service) Login(ctx context.Context, email, password string, client Client) (models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.ErrBadCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, apperr.ErrBadCredentials
	}

	if user.Status != models.UserActive {
		return models.User{}, apperr.ErrAccountInactive
	}

	at := s.now()
	user.LastLogin = &at
	if err := db.Model(&user).Update("last_login", at).Error; err != nil {
		return models.User{}, err
	}
	if err := db.Create(&models.LoginTracking{UserID: user.ID, IPAddress: client.IP, Device: client.Device, Timestamp: at}).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, apperr.NotFound("User")
		}
		return user, err
	}
	return user, nil
}

// List returns one page of users, optionally filtered by status, newest first.
func (s *Service) List(ctx context.Context, status string, page, limit int) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.User{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	err := db.Order("created_at desc").Offset((page - 1) * limit).Limit(limit).Find(&users).Error
	return users, total, err
}

// Approve activates the account.
func (s *Service) Approve(ctx context.Context, id uint) (models.User, error) {
	return s.setStatus(ctx, id, models.UserActive)
}

// Reject deactivates the account.
func (s *Service) Reject(ctx context.Context, id uint) (models.User, error) {
	return s.setStatus(ctx, id, models.UserInactive)
}

func (s *Service) setStatus(ctx context.Context, id uint, status string) (models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return user, err
	}
	if user.IsAdmin() {
		return models.User{}, apperr.Forbidden("Administrator accounts cannot be changed here!")
	}
	if err := s.db.WithContext(ctx).Model(&user).Update("status", status).Error; err != nil {
		return models.User{}, err
	}
	user.Status = status
	return user, nil
}

// ProfilePatch changes the fields a user may edit on their own account. Nil
// fields are left alone.
type ProfilePatch struct {
	Name      *string
	Area      *string
	JobTitle  *string
	AvatarURL *string
}

func (s *Service) UpdateProfile(ctx context.Context, id uint, patch ProfilePatch) (models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return user, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
		updates["name"] = user.Name
	}
	if patch.Area != nil {
		user.Area = *patch.Area
		updates["area"] = user.Area
	}
	if patch.JobTitle != nil {
		user.JobTitle = *patch.JobTitle
		updates["job_title"] = user.JobTitle
	}
	if patch.AvatarURL != nil {
		user.AvatarURL = *patch.AvatarURL
		updates["avatar_url"] = user.AvatarURL
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id uint, current, next string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apperr.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), s.cost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password", string(hashed)).Error
}
