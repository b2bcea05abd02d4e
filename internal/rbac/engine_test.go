package rbac

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	return NewEngine(catalog)
}

func TestEngine_HasPermission(t *testing.T) {
	e := newTestEngine(t)

	t.Run("non-admin roles match their grant set exactly", func(t *testing.T) {
		catalog, err := DefaultCatalog()
		require.NoError(t, err)

		roles := []Role{
			RoleWildlifeOfficer, RoleTourist, RoleTourGuide, RoleSafariDriver,
			RoleVet, RoleCallOperator, RoleEmergencyOfficer,
		}
		for _, role := range roles {
			granted := make(map[Permission]bool)
			for _, p := range catalog.PermissionsOf(role) {
				granted[p] = true
			}
			for _, p := range catalog.AllPermissions() {
				assert.Equal(t, granted[p], e.HasPermission(role, p),
					"role %s permission %s", role, p)
			}
		}
	})

	t.Run("admin bypass grants everything", func(t *testing.T) {
		catalog, err := DefaultCatalog()
		require.NoError(t, err)
		for _, p := range catalog.AllPermissions() {
			assert.True(t, e.HasPermission(RoleAdmin, p))
		}
	})

	t.Run("admin grant set is derived, not hard-coded", func(t *testing.T) {
		custom := NewEngine(NewCatalog(map[Role][]Permission{
			RoleTourist: {BookActivity},
		}, Permission("feed_giraffes")))

		assert.True(t, custom.HasPermission(RoleAdmin, Permission("feed_giraffes")))
		assert.False(t, custom.HasPermission(RoleTourist, Permission("feed_giraffes")))
	})

	t.Run("admin bypass is case-insensitive", func(t *testing.T) {
		assert.True(t, e.HasPermission("Admin", ManageUsers))
		assert.True(t, e.HasPermission("ADMIN", ManageUsers))
	})

	t.Run("unknown or empty role is denied", func(t *testing.T) {
		assert.False(t, e.HasPermission("poacher", BookActivity))
		assert.False(t, e.HasPermission("", BookActivity))
	})
}

func TestEngine_HasAnyPermission(t *testing.T) {
	e := newTestEngine(t)

	t.Run("empty requirement list is unrestricted", func(t *testing.T) {
		assert.True(t, e.HasAnyPermission(RoleTourist, nil))
		assert.True(t, e.HasAnyPermission("", nil))
		assert.True(t, e.HasAnyPermission("nobody", []Permission{}))
	})

	t.Run("one match suffices", func(t *testing.T) {
		assert.True(t, e.HasAnyPermission(RoleTourist, []Permission{ManageUsers, BookActivity}))
	})

	t.Run("no match denies", func(t *testing.T) {
		assert.False(t, e.HasAnyPermission(RoleTourist, []Permission{ManageUsers, ManageVehicles}))
	})
}

func TestEngine_HasAllPermissions(t *testing.T) {
	e := newTestEngine(t)

	t.Run("empty list is vacuously true", func(t *testing.T) {
		assert.True(t, e.HasAllPermissions(RoleTourist, nil))
		assert.True(t, e.HasAllPermissions("", nil))
	})

	t.Run("all must match", func(t *testing.T) {
		assert.True(t, e.HasAllPermissions(RoleTourist, []Permission{BookActivity, ReportEmergency}))
		assert.False(t, e.HasAllPermissions(RoleTourist, []Permission{BookActivity, ManageUsers}))
	})

	t.Run("admin passes any combination", func(t *testing.T) {
		assert.True(t, e.HasAllPermissions(RoleAdmin, []Permission{ManageUsers, ManageVehicles, RespondEmergency}))
	})
}

func TestEngine_CanAccessRoute(t *testing.T) {
	e := newTestEngine(t)

	t.Run("unauthenticated denied on guarded route", func(t *testing.T) {
		assert.False(t, e.CanAccessRoute("", []Permission{BookActivity}))
	})

	t.Run("unauthenticated allowed on unrestricted route", func(t *testing.T) {
		assert.True(t, e.CanAccessRoute("", nil))
	})

	t.Run("any one required permission grants access", func(t *testing.T) {
		assert.True(t, e.CanAccessRoute(RoleVet, []Permission{ManageAnimalCases, ManageUsers}))
		assert.False(t, e.CanAccessRoute(RoleSafariDriver, []Permission{ManageAnimalCases, ManageUsers}))
	})
}

func TestIsRole(t *testing.T) {
	t.Run("case-insensitive match", func(t *testing.T) {
		assert.True(t, IsRole("TOURIST", "tourist"))
		assert.True(t, IsRole("Tourist", RoleTourist))
		assert.True(t, IsRole("WildlifeOfficer", RoleWildlifeOfficer))
		assert.True(t, IsRole("wildlife-officer", RoleWildlifeOfficer))
	})

	t.Run("empty role never matches", func(t *testing.T) {
		assert.False(t, IsRole("", ""))
		assert.False(t, IsRole("", RoleTourist))
	})

	t.Run("distinct roles do not match", func(t *testing.T) {
		assert.False(t, IsRole(RoleTourist, RoleTourGuide))
	})
}

func TestIsAnyRole(t *testing.T) {
	assert.True(t, IsAnyRole(RoleVet, RoleTourist, RoleVet))
	assert.False(t, IsAnyRole(RoleVet, RoleTourist, RoleTourGuide))
	assert.False(t, IsAnyRole("", RoleTourist))
}

func TestCanonical(t *testing.T) {
	cases := map[string]Role{
		"Tourist":           "tourist",
		"TOURIST":           "tourist",
		"ADMIN":             "admin",
		"SafariDriver":      "safari_driver",
		"safari_driver":     "safari_driver",
		"SAFARI_DRIVER":     "safari_driver",
		"Safari Driver":     "safari_driver",
		"Emergency Officer": "emergency_officer",
		"call-operator":     "call_operator",
		"  Vet  ":           "vet",
		"":                  "",
		"   ":               "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Canonical(in), "input %q", in)
	}
}

func TestCatalog_PermissionsOf(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	t.Run("unknown role gets empty set", func(t *testing.T) {
		assert.Empty(t, catalog.PermissionsOf("poacher"))
	})

	t.Run("boundary casing is canonicalized", func(t *testing.T) {
		assert.Equal(t, catalog.PermissionsOf(RoleTourist), catalog.PermissionsOf("TOURIST"))
	})

	t.Run("result is sorted", func(t *testing.T) {
		perms := catalog.PermissionsOf(RoleWildlifeOfficer)
		require.NotEmpty(t, perms)
		assert.True(t, sort.SliceIsSorted(perms, func(i, j int) bool { return perms[i] < perms[j] }))
	})
}
