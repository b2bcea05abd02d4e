package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

func TestServer_AnimalCases(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping animal case tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("vet opens a case", func(t *testing.T) {
		vet := env.db.NewUser(t).WithEmail("open@vet.example").WithRole(rbac.RoleVet).Create()

		rec := env.request(t, vet, http.MethodPost, "/animal-cases", map[string]interface{}{
			"animal_name": "Kibo",
			"species":     "elephant",
			"description": "Limping on the front left leg",
			"vet_id":      vet.ID,
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp AnimalCaseResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Kibo", resp.AnimalName)
		assert.Equal(t, "open", resp.Status)
		require.NotNil(t, resp.VetID)
		assert.Equal(t, vet.ID, *resp.VetID)
	})

	t.Run("missing name and species are reported together", func(t *testing.T) {
		vet := env.db.NewUser(t).WithEmail("empty@vet.example").WithRole(rbac.RoleVet).Create()

		rec := env.request(t, vet, http.MethodPost, "/animal-cases", map[string]interface{}{
			"description": "something is wrong",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("officer can view but not manage cases", func(t *testing.T) {
		vet := env.db.NewUser(t).WithEmail("treat@vet.example").WithRole(rbac.RoleVet).Create()
		officer := env.db.NewUser(t).WithEmail("cases@officer.example").AsWildlifeOfficer().Create()

		create := env.request(t, vet, http.MethodPost, "/animal-cases", map[string]interface{}{
			"animal_name": "Zuri",
			"species":     "zebra",
		})
		require.Equal(t, http.StatusCreated, create.Code)

		var created AnimalCaseResponse
		decodeBody(t, create, &created)

		rec := env.request(t, officer, http.MethodGet, "/animal-cases", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []AnimalCaseResponse
		decodeBody(t, rec, &list)
		assert.NotEmpty(t, list)

		rec = env.request(t, officer, http.MethodPut,
			fmt.Sprintf("/animal-cases/%s", created.ID),
			map[string]interface{}{"status": "resolved"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("vet moves a case through treatment", func(t *testing.T) {
		vet := env.db.NewUser(t).WithEmail("progress@vet.example").WithRole(rbac.RoleVet).Create()

		create := env.request(t, vet, http.MethodPost, "/animal-cases", map[string]interface{}{
			"animal_name": "Tembo",
			"species":     "elephant",
		})
		require.Equal(t, http.StatusCreated, create.Code)

		var created AnimalCaseResponse
		decodeBody(t, create, &created)

		rec := env.request(t, vet, http.MethodPut,
			fmt.Sprintf("/animal-cases/%s", created.ID),
			map[string]interface{}{
				"description": "Under sedation, wound cleaned",
				"status":      "under_treatment",
				"vet_id":      vet.ID,
			})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp AnimalCaseResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "under_treatment", resp.Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		vet := env.db.NewUser(t).WithEmail("status@vet.example").WithRole(rbac.RoleVet).Create()

		create := env.request(t, vet, http.MethodPost, "/animal-cases", map[string]interface{}{
			"animal_name": "Duma",
			"species":     "cheetah",
		})
		require.Equal(t, http.StatusCreated, create.Code)

		var created AnimalCaseResponse
		decodeBody(t, create, &created)

		rec := env.request(t, vet, http.MethodPut,
			fmt.Sprintf("/animal-cases/%s", created.ID),
			map[string]interface{}{"status": "cured"})

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("tourist cannot see cases", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("cases@tourist.example").AsTourist().Create()

		rec := env.request(t, tourist, http.MethodGet, "/animal-cases", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
