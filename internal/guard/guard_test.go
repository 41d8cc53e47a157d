package guard

import (
	"testing"

	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssertIdentity_ScopedOfficer(t *testing.T) {
	actor := model.Actor{ID: "fin-1", Role: model.RoleFinanceOfficer, LocationID: "LOC-A"}
	assert.NoError(t, AssertIdentity(actor))
}

func TestAssertIdentity_MissingID(t *testing.T) {
	err := AssertIdentity(model.Actor{Role: model.RoleFinanceOfficer, LocationID: "LOC-A"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestAssertIdentity_UnknownRole(t *testing.T) {
	err := AssertIdentity(model.Actor{ID: "x-1", Role: "SUPERVISOR", LocationID: "LOC-A"})
	require.Error(t, err)
	assert.Equal(t, "AUTHORIZATION", apperror.Code(err))
}

func TestAssertIdentity_GlobalRoleNeedsGlobalFlag(t *testing.T) {
	err := AssertIdentity(model.Actor{ID: "gm-1", Role: model.RoleGeneralManager})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestAssertIdentity_GlobalRoleRejectsLocationRestriction(t *testing.T) {
	err := AssertIdentity(model.Actor{ID: "gm-1", Role: model.RoleGeneralManager, Global: true, LocationID: "LOC-A"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestAssertIdentity_ScopedRoleCannotClaimGlobal(t *testing.T) {
	err := AssertIdentity(model.Actor{ID: "fin-1", Role: model.RoleFinanceOfficer, Global: true})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestAssertIdentity_ScopedRoleNeedsLocation(t *testing.T) {
	err := AssertIdentity(model.Actor{ID: "sk-1", Role: model.RoleStorekeeper})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestAssertIdentity_DepartmentHeadNeedsDepartment(t *testing.T) {
	err := AssertIdentity(model.Actor{ID: "dh-1", Role: model.RoleDepartmentHead, LocationID: "LOC-A"})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))

	ok := model.Actor{ID: "dh-1", Role: model.RoleDepartmentHead, LocationID: "LOC-A", DepartmentID: "KITCHEN"}
	assert.NoError(t, AssertIdentity(ok))
}

func TestAssertCanMutate_RejectsAuditor(t *testing.T) {
	auditor := model.Actor{ID: "aud-1", Role: model.RoleAuditor, Global: true}
	require.NoError(t, AssertIdentity(auditor))

	err := AssertCanMutate(auditor)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestAssertLocationAccess(t *testing.T) {
	scoped := model.Actor{ID: "fin-1", Role: model.RoleFinanceOfficer, LocationID: "LOC-A"}
	global := model.Actor{ID: "gm-1", Role: model.RoleGeneralManager, Global: true}

	assert.NoError(t, AssertLocationAccess(scoped, "LOC-A"))
	assert.NoError(t, AssertLocationAccess(global, "LOC-B"))

	err := AssertLocationAccess(scoped, "LOC-B")
	require.Error(t, err)
	assert.Equal(t, "SCOPE_VIOLATION", apperror.Code(err))

	err = AssertLocationAccess(scoped, "")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindDomain))
}

func TestAssertDepartmentAccess(t *testing.T) {
	head := model.Actor{ID: "dh-1", Role: model.RoleDepartmentHead, LocationID: "LOC-A", DepartmentID: "KITCHEN"}

	assert.NoError(t, AssertDepartmentAccess(head, "LOC-A", "KITCHEN"))

	err := AssertDepartmentAccess(head, "LOC-A", "BAR")
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindScope))

	// Non-department-scoped roles pass regardless of department.
	officer := model.Actor{ID: "proc-1", Role: model.RoleProcurementOfficer, LocationID: "LOC-A"}
	assert.NoError(t, AssertDepartmentAccess(officer, "LOC-A", "BAR"))
}

func TestFilterByLocation(t *testing.T) {
	movements := []model.StockMovement{
		{LocationID: "LOC-A"},
		{LocationID: "LOC-B"},
		{LocationID: "LOC-A"},
	}

	scoped := model.Actor{ID: "sk-1", Role: model.RoleStorekeeper, LocationID: "LOC-A"}
	assert.Len(t, FilterByLocation(scoped, movements), 2)

	global := model.Actor{ID: "gm-1", Role: model.RoleGeneralManager, Global: true}
	assert.Len(t, FilterByLocation(global, movements), 3)
}

func TestFilterByDepartment(t *testing.T) {
	movements := []model.StockMovement{
		{LocationID: "LOC-A", DepartmentID: "KITCHEN"},
		{LocationID: "LOC-A", DepartmentID: "BAR"},
		{LocationID: "LOC-B", DepartmentID: "KITCHEN"},
	}

	head := model.Actor{ID: "dh-1", Role: model.RoleDepartmentHead, LocationID: "LOC-A", DepartmentID: "KITCHEN"}
	filtered := FilterByDepartment(head, movements)
	require.Len(t, filtered, 1)
	assert.Equal(t, "KITCHEN", filtered[0].DepartmentID)
	assert.Equal(t, "LOC-A", filtered[0].LocationID)

	// Location-scoped but not department-scoped roles keep the whole location.
	officer := model.Actor{ID: "sk-1", Role: model.RoleStorekeeper, LocationID: "LOC-A"}
	assert.Len(t, FilterByDepartment(officer, movements), 2)
}
