package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Activities(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping activity tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("officer creates activity with scheduling defaults", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("create@officer.example").AsWildlifeOfficer().Create()

		rec := env.request(t, officer, http.MethodPost, "/activities", map[string]interface{}{
			"name": "Night Walk",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp ActivityResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Night Walk", resp.Name)
		assert.Equal(t, 50, resp.Capacity)
		assert.Equal(t, "Active", resp.Status)
		assert.Equal(t, 1, resp.MinAdvanceDays)
		assert.Equal(t, 365, resp.MaxAdvanceDays)
		assert.Equal(t, 1, resp.MinParticipantsForGuide)
	})

	t.Run("tourist cannot create activities", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("create@tourist.example").AsTourist().Create()

		rec := env.request(t, tourist, http.MethodPost, "/activities", map[string]interface{}{
			"name": "Sneaky Tour",
		})

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, CodePermissionDenied, errorCode(t, rec))
	})

	t.Run("invalid weekday and role are reported per field", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("invalid@officer.example").AsWildlifeOfficer().Create()

		rec := env.request(t, officer, http.MethodPost, "/activities", map[string]interface{}{
			"name":             "Broken",
			"allowed_weekdays": []int{1, 9},
			"required_role":    "ninja",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "allowed_weekdays")
		assert.Contains(t, fields, "required_role")
	})

	t.Run("list is public and filters by status", func(t *testing.T) {
		env.db.NewActivity(t).WithName("Open One").WithStatus("Active").Create()
		env.db.NewActivity(t).WithName("Closed One").WithStatus("Inactive").Create()

		rec := env.request(t, nil, http.MethodGet, "/activities?status=Active", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp []ActivityResponse
		decodeBody(t, rec, &resp)
		names := make([]string, 0, len(resp))
		for _, a := range resp {
			names = append(names, a.Name)
		}
		assert.Contains(t, names, "Open One")
		assert.NotContains(t, names, "Closed One")
	})

	t.Run("delete requires manage_activities", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("delete@officer.example").AsWildlifeOfficer().Create()
		tourist := env.db.NewUser(t).WithEmail("delete@tourist.example").AsTourist().Create()
		activity := env.db.NewActivity(t).Create()

		rec := env.request(t, tourist, http.MethodDelete, fmt.Sprintf("/activities/%s", activity.ID), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.request(t, officer, http.MethodDelete, fmt.Sprintf("/activities/%s", activity.ID), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.request(t, officer, http.MethodDelete, fmt.Sprintf("/activities/%s", activity.ID), nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_GetActivityAvailability(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping activity tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("reports remaining slots and advisory band", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("avail@tourist.example").AsTourist().Create()
		activity := env.db.NewActivity(t).WithCapacity(20).Create()

		date := time.Now().AddDate(0, 0, 7)
		env.db.NewBooking(t, activity.ID, tourist.ID, 16, date)

		rec := env.request(t, nil, http.MethodGet,
			fmt.Sprintf("/activities/%s/availability?date=%s", activity.ID, date.Format("2006-01-02")), nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Capacity      int    `json:"capacity"`
			Booked        int    `json:"booked"`
			SlotsLeft     int    `json:"slots_left"`
			CapacityLevel string `json:"capacity_level"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, 20, resp.Capacity)
		assert.Equal(t, 16, resp.Booked)
		assert.Equal(t, 4, resp.SlotsLeft)
		// 4/20 remaining is inside the warning band
		assert.Equal(t, "warning", resp.CapacityLevel)
	})

	t.Run("missing date is rejected", func(t *testing.T) {
		activity := env.db.NewActivity(t).Create()

		rec := env.request(t, nil, http.MethodGet,
			fmt.Sprintf("/activities/%s/availability", activity.ID), nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
