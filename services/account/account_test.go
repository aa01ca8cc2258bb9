package account

import (
	"context"
	"errors"
	"testing"

	"nextlevel/database"
	"nextlevel/database/dbtest"
	"nextlevel/models"
	"nextlevel/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) *Service {
	return New(dbtest.Open(t), bcrypt.MinCost)
}

func TestSignupCreatesPendingLearner(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	u, err := s.Signup(ctx, SignupInput{Name: " Ana ", Email: "Ana@Example.com", Password: "secret123", EmployeeID: "E-1"})
	require.NoError(t, err)

	assert.Equal(t, "Ana", u.Name)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, models.UserPending, u.Status)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "secret123", u.Password)

	_, err = s.Signup(ctx, SignupInput{Name: "Ana", Email: "ana@example.com", Password: "x"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = s.Signup(ctx, SignupInput{Name: "Bo", Email: "bo@example.com", Password: "x", EmployeeID: "E-1"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestLoginRequiresActiveAccount(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	u, err := s.Signup(ctx, SignupInput{Name: "Ana", Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = s.Login(ctx, "ana@example.com", "secret123", Client{})
	assert.True(t, errors.Is(err, apperr.ErrAccountInactive))

	_, err = s.Approve(ctx, u.ID)
	require.NoError(t, err)

	_, err = s.Login(ctx, "ana@example.com", "wrong", Client{})
	assert.True(t, errors.Is(err, apperr.ErrBadCredentials))
	_, err = s.Login(ctx, "nobody@example.com", "secret123", Client{})
	assert.True(t, errors.Is(err, apperr.ErrBadCredentials))

	logged, err := s.Login(ctx, "ANA@example.com", "secret123", Client{IP: "10.0.0.1", Device: "test"})
	require.NoError(t, err)
	assert.NotNil(t, logged.LastLogin)

	var tracked []models.LoginTracking
	require.NoError(t, s.db.Find(&tracked).Error)
	require.Len(t, tracked, 1)
	assert.Equal(t, "10.0.0.1", tracked[0].IPAddress)

	_, err = s.Reject(ctx, u.ID)
	require.NoError(t, err)
	_, err = s.Login(ctx, "ana@example.com", "secret123", Client{})
	assert.True(t, errors.Is(err, apperr.ErrAccountInactive))
}

func TestAdminStatusCannotChange(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	require.NoError(t, database.SeedAdmin(s.db, "admin@example.com", "admin", bcrypt.MinCost))

	admin, _, err := s.List(ctx, models.UserActive, 1, 10)
	require.NoError(t, err)
	require.Len(t, admin, 1)

	_, err = s.Reject(ctx, admin[0].ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = s.Approve(ctx, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListFiltersAndPages(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		_, err := s.Signup(ctx, SignupInput{Name: email, Email: email, Password: "pw"})
		require.NoError(t, err)
	}

	users, total, err := s.List(ctx, models.UserPending, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 2)

	users, _, err = s.List(ctx, models.UserPending, 2, 2)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestProfileAndPasswordChanges(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	u, err := s.Signup(ctx, SignupInput{Name: "Ana", Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)

	name, area := " Ana Torres ", "Sales"
	updated, err := s.UpdateProfile(ctx, u.ID, ProfilePatch{Name: &name, Area: &area})
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", updated.Name)
	assert.Equal(t, "Sales", updated.Area)

	stored, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Torres", stored.Name)
	assert.Empty(t, stored.JobTitle)

	err = s.ChangePassword(ctx, u.ID, "not-it", "another123")
	assert.True(t, errors.Is(err, apperr.ErrWrongPassword))

	require.NoError(t, s.ChangePassword(ctx, u.ID, "secret123", "another123"))
	_, err = s.Approve(ctx, u.ID)
	require.NoError(t, err)

	_, err = s.Login(ctx, "ana@example.com", "secret123", Client{})
	assert.True(t, errors.Is(err, apperr.ErrBadCredentials))
	_, err = s.Login(ctx, "ana@example.com", "another123", Client{})
	assert.NoError(t, err)
}
