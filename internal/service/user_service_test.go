package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/internal/repository/memory"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService() UserService {
	return NewUserService(memory.NewStore().Users())
}

func TestRegister_ScopedUser(t *testing.T) {
	users := newUserService()

	user, err := users.Register(context.Background(), RegisterUserRequest{
		Username:   "fin.a",
		Password:   "secret-pass",
		Role:       string(model.RoleFinanceOfficer),
		LocationID: "LOC-A",
	})
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleFinanceOfficer), user.Role)
	assert.False(t, user.Global)
	assert.Equal(t, "LOC-A", user.LocationID)
}

func TestRegister_GlobalRoleDropsScopeColumns(t *testing.T) {
	users := newUserService()

	user, err := users.Register(context.Background(), RegisterUserRequest{
		Username:   "gm",
		Password:   "secret-pass",
		Role:       string(model.RoleGeneralManager),
		LocationID: "LOC-A",
	})
	require.NoError(t, err)
	assert.True(t, user.Global)
	assert.Empty(t, user.LocationID)
}

func TestRegister_UnknownRole(t *testing.T) {
	users := newUserService()

	_, err := users.Register(context.Background(), RegisterUserRequest{
		Username: "nobody",
		Password: "secret-pass",
		Role:     "SUPERVISOR",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
	assert.Contains(t, err.Error(), "unknown role")
}

func TestRegister_ScopedRoleNeedsLocation(t *testing.T) {
	users := newUserService()

	_, err := users.Register(context.Background(), RegisterUserRequest{
		Username: "fin.b",
		Password: "secret-pass",
		Role:     string(model.RoleFinanceOfficer),
	})
	require.Error(t, err)
	assert.Equal(t, "AUTHORIZATION", apperror.Code(err))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	users := newUserService()
	ctx := context.Background()

	_, err := users.Register(ctx, RegisterUserRequest{
		Username:   "fin.a",
		Password:   "secret-pass",
		Role:       string(model.RoleFinanceOfficer),
		LocationID: "LOC-A",
	})
	require.NoError(t, err)

	_, err = users.Register(ctx, RegisterUserRequest{
		Username:   "fin.a",
		Password:   "other-pass",
		Role:       string(model.RoleFinanceOfficer),
		LocationID: "LOC-A",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLogin(t *testing.T) {
	users := newUserService()
	ctx := context.Background()

	_, err := users.Register(ctx, RegisterUserRequest{
		Username:   "sk.a",
		Password:   "secret-pass",
		Role:       string(model.RoleStorekeeper),
		LocationID: "LOC-A",
	})
	require.NoError(t, err)

	token, err := users.Login(ctx, LoginUserRequest{Username: "sk.a", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	_, err = users.Login(ctx, LoginUserRequest{Username: "sk.a", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "AUTHORIZATION", apperror.Code(err))

	_, err = users.Login(ctx, LoginUserRequest{Username: "ghost", Password: "secret-pass"})
	require.Error(t, err)
	assert.Equal(t, "AUTHORIZATION", apperror.Code(err))
}
