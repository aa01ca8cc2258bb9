package account

import (
	"context"
	"errors"
	"strings"

	"nextlevel/models"
	"nextlevel/models/season"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
)

// AdminPatch holds the fields an administrator may change on any account.
// Nil fields are left alone; an empty EmployeeID clears it.
type AdminPatch struct {
	Name       *string
	EmployeeID *string
	Area       *string
	JobTitle   *string
	Status     *string
	Role       *string
}

// UpdateByAdmin applies patch to account id. Administrators cannot change
// their own role or status.
func (s *Service) UpdateByAdmin(ctx context.Context, actor models.Principal, id uint, patch AdminPatch) (models.User, error) {
	if actor.UserID == id && (patch.Status != nil || patch.Role != nil) {
		return models.User{}, apperr.ErrSelfAction
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return user, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
		updates["name"] = user.Name
	}
	if patch.EmployeeID != nil {
		if v := strings.TrimSpace(*patch.EmployeeID); v != "" {
			user.EmployeeID = &v
			updates["employee_id"] = v
		} else {
			user.EmployeeID = nil
			updates["employee_id"] = nil
		}
	}
	if patch.Area != nil {
		user.Area = *patch.Area
		updates["area"] = user.Area
	}
	if patch.JobTitle != nil {
		user.JobTitle = *patch.JobTitle
		updates["job_title"] = user.JobTitle
	}
	if patch.Status != nil {
		user.Status = *patch.Status
		updates["status"] = user.Status
	}
	if patch.Role != nil {
		user.Role = *patch.Role
		updates["role"] = user.Role
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, apperr.Wrap(apperr.Conflict("Employee id is already registered!"), err)
		}
		return models.User{}, err
	}
	return user, nil
}

// Delete removes account id for good, together with its certificates,
// attempts, episode progress and sign-in history. Administrators cannot
// delete themselves.
func (s *Service) Delete(ctx context.Context, actor models.Principal, id uint) (models.User, error) {
	if actor.UserID == id {
		return models.User{}, apperr.ErrSelfAction
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return user, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := []interface{}{
			&season.Certificate{},
			&season.Attempt{},
			&season.EpisodeProgress{},
			&models.LoginTracking{},
		}
		for _, model := range owned {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&models.User{}, id).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
