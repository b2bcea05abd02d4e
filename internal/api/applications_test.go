package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/queue"
)

func TestServer_Applications(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping application tests in short mode")
	}

	env := newTestEnv(t)

	submit := func(t *testing.T, email, role string) ApplicationResponse {
		t.Helper()
		rec := env.request(t, nil, http.MethodPost, "/applications", map[string]interface{}{
			"applicant_name": "Alex Applicant",
			"email":          email,
			"role_applied":   role,
			"cover_note":     "I love animals",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp ApplicationResponse
		decodeBody(t, rec, &resp)
		return resp
	}

	t.Run("anonymous submission lands as pending", func(t *testing.T) {
		resp := submit(t, "alex@applicant.example", "vet")
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "vet", resp.RoleApplied)
	})

	t.Run("admin and tourist roles cannot be applied for", func(t *testing.T) {
		for _, role := range []string{"admin", "tourist", "ninja"} {
			rec := env.request(t, nil, http.MethodPost, "/applications", map[string]interface{}{
				"applicant_name": "Alex Applicant",
				"email":          "alex@applicant.example",
				"role_applied":   role,
			})
			assert.Equal(t, http.StatusBadRequest, rec.Code, "role %s should be rejected", role)
		}
	})

	t.Run("approval creates the user and emails the applicant", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("review@officer.example").AsWildlifeOfficer().Create()
		application := submit(t, "newvet@applicant.example", "vet")

		env.queue.ExpectEnqueue(queue.TypeEmailDelivery)

		rec := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/applications/%s/review", application.ID),
			map[string]interface{}{"approve": true, "note": "welcome aboard"})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp ApplicationResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "approved", resp.Status)
		require.NotNil(t, resp.ReviewedBy)
		assert.Equal(t, officer.ID, *resp.ReviewedBy)

		created, err := env.db.Queries().GetUserByEmail(context.Background(), "newvet@applicant.example")
		require.NoError(t, err)
		assert.Equal(t, "vet", created.Role)

		env.queue.AssertExpectations(t)
	})

	t.Run("rejection does not create a user", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("reject@officer.example").AsWildlifeOfficer().Create()
		application := submit(t, "norole@applicant.example", "tour_guide")

		env.queue.ExpectEnqueue(queue.TypeEmailDelivery)

		rec := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/applications/%s/review", application.ID),
			map[string]interface{}{"approve": false})

		require.Equal(t, http.StatusOK, rec.Code)

		_, err := env.db.Queries().GetUserByEmail(context.Background(), "norole@applicant.example")
		assert.Error(t, err)
	})

	t.Run("second review conflicts", func(t *testing.T) {
		officer := env.db.NewUser(t).WithEmail("twice@officer.example").AsWildlifeOfficer().Create()
		application := submit(t, "twice@applicant.example", "vet")

		env.queue.ExpectEnqueue(queue.TypeEmailDelivery)

		first := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/applications/%s/review", application.ID),
			map[string]interface{}{"approve": true})
		require.Equal(t, http.StatusOK, first.Code)

		second := env.request(t, officer, http.MethodPost,
			fmt.Sprintf("/applications/%s/review", application.ID),
			map[string]interface{}{"approve": false})
		require.Equal(t, http.StatusConflict, second.Code)
		assert.Equal(t, CodeConflict, errorCode(t, second))
	})

	t.Run("tourist cannot list or review applications", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("apps@tourist.example").AsTourist().Create()

		rec := env.request(t, tourist, http.MethodGet, "/applications", nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}
