package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_GetDashboard(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping dashboard tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("staff see live counts", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("dash@officer.example").AsWildlifeOfficer().Create()
		tourist := env.db.NewUser(t).WithEmail("dash@tourist.example").AsTourist().Create()

		activity := env.db.NewActivity(t).Create()
		env.db.NewBooking(t, activity.ID, tourist.ID, 2, time.Now().AddDate(0, 0, 7))
		env.db.NewEmergency(t, tourist.ID)
		env.db.NewVehicle(t, "KWS-DASH")

		rec := env.request(t, officer, http.MethodGet, "/dashboard", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp dashboardResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, int64(2), resp.Users)
		assert.Equal(t, int64(1), resp.Activities)
		assert.Equal(t, int64(1), resp.Bookings)
		assert.Equal(t, int64(1), resp.OpenEmergencies)
		assert.Equal(t, int64(1), resp.AvailableVehicles)
		assert.Equal(t, int64(0), resp.PendingApplications)
	})

	t.Run("tourist is refused", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("nodash@tourist.example").AsTourist().Create()

		rec := env.request(t, tourist, http.MethodGet, "/dashboard", nil)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodePermissionDenied, errorCode(t, rec))
	})
}
