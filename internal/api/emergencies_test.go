package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/queue"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/testutil"
)

func TestServer_ReportEmergency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping emergency tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("report is stored and broadcast on the critical queue", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("report@tourist.example").AsTourist().Create()

		env.queue.ExpectEnqueueCritical(queue.TypeEmergencyBroadcast)

		rec := env.request(t, tourist, http.MethodPost, "/emergencies", map[string]interface{}{
			"description": "Elephant blocking the access road",
			"location":    "Gate 3",
			"priority":    "high",
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp EmergencyResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, tourist.ID, resp.ReporterID)
		assert.Equal(t, "high", resp.Priority)
		assert.Equal(t, "open", resp.Status)
		assert.False(t, resp.HasPhoto)

		env.queue.AssertExpectations(t)
	})

	t.Run("priority defaults to medium", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("default@tourist.example").AsTourist().Create()

		env.queue.ExpectEnqueueCritical(queue.TypeEmergencyBroadcast)

		rec := env.request(t, tourist, http.MethodPost, "/emergencies", map[string]interface{}{
			"description": "Smoke near the wetlands",
			"location":    "Sector 7",
		})

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp EmergencyResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "medium", resp.Priority)
	})

	t.Run("missing fields are reported together", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("empty@tourist.example").AsTourist().Create()

		rec := env.request(t, tourist, http.MethodPost, "/emergencies", map[string]interface{}{
			"priority": "catastrophic",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		decodeBody(t, rec, &resp)
		assert.Len(t, resp.Error.Details, 3)
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		rec := env.request(t, nil, http.MethodPost, "/emergencies", map[string]interface{}{
			"description": "x",
			"location":    "y",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestServer_AssignEmergency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping emergency tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("operator assigns a responder who is notified", func(t *testing.T) {
		operator := env.db.NewUser(t).WithEmail("ops@staff.example").WithRole(rbac.RoleCallOperator).Create()
		responder := env.db.NewUser(t).WithEmail("responder@staff.example").WithRole(rbac.RoleEmergencyOfficer).Create()
		reporter := env.db.NewUser(t).WithEmail("assign@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		env.notifier.ExpectNotify()

		rec := env.request(t, operator, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/assign", emergency.ID),
			map[string]interface{}{"assignee_id": responder.ID})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp EmergencyResponse
		decodeBody(t, rec, &resp)
		require.NotNil(t, resp.AssignedTo)
		assert.Equal(t, responder.ID, *resp.AssignedTo)
		assert.Equal(t, "in_progress", resp.Status)

		env.notifier.AssertExpectations(t)
	})

	t.Run("assignee without respond_emergency is rejected", func(t *testing.T) {
		operator := env.db.NewUser(t).WithEmail("ops2@staff.example").WithRole(rbac.RoleCallOperator).Create()
		vet := env.db.NewUser(t).WithEmail("vet@staff.example").WithRole(rbac.RoleVet).Create()
		reporter := env.db.NewUser(t).WithEmail("assign2@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		rec := env.request(t, operator, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/assign", emergency.ID),
			map[string]interface{}{"assignee_id": vet.ID})

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("assigning a resolved emergency conflicts", func(t *testing.T) {
		operator := env.db.NewUser(t).WithEmail("ops3@staff.example").WithRole(rbac.RoleCallOperator).Create()
		responder := env.db.NewUser(t).WithEmail("responder3@staff.example").WithRole(rbac.RoleEmergencyOfficer).Create()
		reporter := env.db.NewUser(t).WithEmail("assign3@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		resolve := env.request(t, operator, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/resolve", emergency.ID), nil)
		require.Equal(t, http.StatusOK, resolve.Code)

		rec := env.request(t, operator, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/assign", emergency.ID),
			map[string]interface{}{"assignee_id": responder.ID})

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, CodeConflict, errorCode(t, rec))
	})

	t.Run("tourist cannot assign", func(t *testing.T) {
		tourist := env.db.NewUser(t).WithEmail("noassign@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, tourist.ID)

		rec := env.request(t, tourist, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/assign", emergency.ID),
			map[string]interface{}{"assignee_id": tourist.ID})

		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestServer_ResolveEmergency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping emergency tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("assigned responder can resolve", func(t *testing.T) {
		operator := env.db.NewUser(t).WithEmail("res-ops@staff.example").WithRole(rbac.RoleCallOperator).Create()
		responder := env.db.NewUser(t).WithEmail("res-responder@staff.example").WithRole(rbac.RoleEmergencyOfficer).Create()
		reporter := env.db.NewUser(t).WithEmail("res@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		env.notifier.ExpectNotify()
		assign := env.request(t, operator, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/assign", emergency.ID),
			map[string]interface{}{"assignee_id": responder.ID})
		require.Equal(t, http.StatusOK, assign.Code)

		rec := env.request(t, responder, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/resolve", emergency.ID), nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp EmergencyResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "resolved", resp.Status)
		assert.NotNil(t, resp.ResolvedAt)
	})

	t.Run("reporter cannot resolve their own report", func(t *testing.T) {
		reporter := env.db.NewUser(t).WithEmail("nores@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		rec := env.request(t, reporter, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/resolve", emergency.ID), nil)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("resolving twice conflicts", func(t *testing.T) {
		operator := env.db.NewUser(t).WithEmail("twice-ops@staff.example").WithRole(rbac.RoleCallOperator).Create()
		reporter := env.db.NewUser(t).WithEmail("twice-res@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		first := env.request(t, operator, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/resolve", emergency.ID), nil)
		require.Equal(t, http.StatusOK, first.Code)

		second := env.request(t, operator, http.MethodPost,
			fmt.Sprintf("/emergencies/%s/resolve", emergency.ID), nil)
		require.Equal(t, http.StatusConflict, second.Code)
	})
}

func TestServer_EmergencyPhotos(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping emergency tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("reporter uploads a photo stored with its thumbnail", func(t *testing.T) {
		reporter := env.db.NewUser(t).WithEmail("photo@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		// original plus thumbnail
		env.storage.ExpectPutObject().Twice()

		rec := env.uploadPhoto(t, reporter, emergency.ID, testPNG(t))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp EmergencyResponse
		decodeBody(t, rec, &resp)
		assert.True(t, resp.HasPhoto)

		env.storage.AssertExpectations(t)
	})

	t.Run("non-image upload is rejected", func(t *testing.T) {
		reporter := env.db.NewUser(t).WithEmail("badphoto@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		rec := env.uploadPhoto(t, reporter, emergency.ID, []byte("definitely not a png"))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("stranger cannot attach a photo", func(t *testing.T) {
		reporter := env.db.NewUser(t).WithEmail("mine@tourist.example").AsTourist().Create()
		stranger := env.db.NewUser(t).WithEmail("yours@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		rec := env.uploadPhoto(t, stranger, emergency.ID, testPNG(t))

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("photo URL is presigned for the reporter", func(t *testing.T) {
		reporter := env.db.NewUser(t).WithEmail("presign@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		env.storage.ExpectPutObject().Twice()
		upload := env.uploadPhoto(t, reporter, emergency.ID, testPNG(t))
		require.Equal(t, http.StatusOK, upload.Code)

		env.storage.ExpectPresignedURL("https://storage.example/signed")

		rec := env.request(t, reporter, http.MethodGet,
			fmt.Sprintf("/emergencies/%s/photo", emergency.ID), nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			PhotoURL  string `json:"photo_url"`
			ExpiresIn int    `json:"expires_in_seconds"`
		}
		decodeBody(t, rec, &resp)
		assert.Equal(t, "https://storage.example/signed", resp.PhotoURL)
		assert.Equal(t, 900, resp.ExpiresIn)
	})

	t.Run("photo URL 404s when nothing is attached", func(t *testing.T) {
		reporter := env.db.NewUser(t).WithEmail("nophoto@tourist.example").AsTourist().Create()
		emergency := env.db.NewEmergency(t, reporter.ID)

		rec := env.request(t, reporter, http.MethodGet,
			fmt.Sprintf("/emergencies/%s/photo", emergency.ID), nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// uploadPhoto posts a multipart photo through the full route table.
func (e *testEnv) uploadPhoto(t *testing.T, user *testutil.TestUser, emergencyID uuid.UUID, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/emergencies/%s/photo", emergencyID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if user != nil {
		req = req.WithContext(testutil.ContextWithUser(req.Context(), user))
	}

	r := chi.NewRouter()
	e.server.Routes(r)

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)
	return recorder
}

// testPNG renders a small valid png in memory.
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 90, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
