package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

func TestServer_Vehicles(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping vehicle tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("officer registers a vehicle as available", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("fleet@officer.example").AsWildlifeOfficer().Create()

		rec := env.request(t, officer, http.MethodPost, "/vehicles", map[string]interface{}{
			"plate_number": "KWS-001",
			"vehicle_type": "land_cruiser",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp VehicleResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "KWS-001", resp.PlateNumber)
		assert.Equal(t, "available", resp.Status)
		assert.Nil(t, resp.DriverID)
	})

	t.Run("missing fields are reported per field", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("fleet2@officer.example").AsWildlifeOfficer().Create()

		rec := env.request(t, officer, http.MethodPost, "/vehicles", map[string]interface{}{})

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("tourist cannot see the fleet", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("fleet@tourist.example").AsTourist().Create()

		rec := env.request(t, tourist, http.MethodGet, "/vehicles", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.request(t, tourist, http.MethodPost, "/vehicles", map[string]interface{}{
			"plate_number": "KWS-999",
			"vehicle_type": "jeep",
		})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("list filters by status", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("filter@officer.example").AsWildlifeOfficer().Create()
		driver := env.db.NewUser(t).WithEmail("filter@driver.example").WithRole(rbac.RoleSafariDriver).Create()

		free := env.db.NewVehicle(t, "KWS-100")
		busy := env.db.NewVehicle(t, "KWS-101")

		assign := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/assign", busy.ID),
			map[string]interface{}{"driver_id": driver.ID})
		require.Equal(t, http.StatusOK, assign.Code, assign.Body.String())

		rec := env.request(t, officer, http.MethodGet, "/vehicles?status=available", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []VehicleResponse
		decodeBody(t, rec, &resp)
		ids := make([]string, 0, len(resp))
		for _, v := range resp {
			ids = append(ids, v.ID.String())
		}
		assert.Contains(t, ids, free.ID.String())
		assert.NotContains(t, ids, busy.ID.String())
	})
}

func TestServer_AssignVehicle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping vehicle tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("available vehicle goes on patrol with a driver", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("assign@officer.example").AsWildlifeOfficer().Create()
		driver := env.db.NewUser(t).WithEmail("assign@driver.example").WithRole(rbac.RoleSafariDriver).Create()
		vehicle := env.db.NewVehicle(t, "KWS-200")

		rec := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/assign", vehicle.ID),
			map[string]interface{}{"driver_id": driver.ID})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp VehicleResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "on_patrol", resp.Status)
		require.NotNil(t, resp.DriverID)
		assert.Equal(t, driver.ID, *resp.DriverID)
	})

	t.Run("vehicle already on patrol conflicts", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("busy@officer.example").AsWildlifeOfficer().Create()
		first := env.db.NewUser(t).WithEmail("first@driver.example").WithRole(rbac.RoleSafariDriver).Create()
		second := env.db.NewUser(t).WithEmail("second@driver.example").WithRole(rbac.RoleSafariDriver).Create()
		vehicle := env.db.NewVehicle(t, "KWS-201")

		rec := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/assign", vehicle.ID),
			map[string]interface{}{"driver_id": first.ID})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/assign", vehicle.ID),
			map[string]interface{}{"driver_id": second.ID})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, CodeConflict, errorCode(t, rec))
	})

	t.Run("vet cannot be assigned as a driver", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("vetdrv@officer.example").AsWildlifeOfficer().Create()
		vet := env.db.NewUser(t).WithEmail("vetdrv@staff.example").WithRole(rbac.RoleVet).Create()
		vehicle := env.db.NewVehicle(t, "KWS-202")

		rec := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/assign", vehicle.ID),
			map[string]interface{}{"driver_id": vet.ID})

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("release makes the vehicle available again", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("release@officer.example").AsWildlifeOfficer().Create()
		driver := env.db.NewUser(t).WithEmail("release@driver.example").WithRole(rbac.RoleSafariDriver).Create()
		vehicle := env.db.NewVehicle(t, "KWS-203")

		assign := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/assign", vehicle.ID),
			map[string]interface{}{"driver_id": driver.ID})
		require.Equal(t, http.StatusOK, assign.Code)

		rec := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/release", vehicle.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp VehicleResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "available", resp.Status)
		assert.Nil(t, resp.DriverID)
	})

	t.Run("service stamps the vehicle and frees it", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("service@officer.example").AsWildlifeOfficer().Create()
		vehicle := env.db.NewVehicle(t, "KWS-204")

		rec := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/vehicles/%s/service", vehicle.ID), nil)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp VehicleResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "available", resp.Status)
		assert.NotNil(t, resp.LastServiceAt)
	})
}
