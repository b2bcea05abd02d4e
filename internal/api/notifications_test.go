package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/store"
	"github.com/wildhaven/parkops-backend/internal/testutil"
)

func (e *testEnv) seedNotification(t *testing.T, user *testutil.TestUser, message string) store.Notification {
	t.Helper()
	n, err := e.db.Queries().CreateNotification(context.Background(), store.CreateNotificationParams{
		UserID:     user.ID,
		EntityType: "booking",
		EntityID:   testutil.NewUUID(),
		Message:    message,
	})
	require.NoError(t, err)
	return n
}

func TestServer_Notifications(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping notification tests in short mode")
	}

	env := newTestEnv(t)

	t.Run("list returns only the caller's notifications", func(t *testing.T) {
		owner := env.db.NewUser(t).WithEmail("inbox@tourist.example").AsTourist().Create()
		other := env.db.NewUser(t).WithEmail("other-inbox@tourist.example").AsTourist().Create()

		env.seedNotification(t, owner, "Your booking was confirmed")
		env.seedNotification(t, other, "Someone else's news")

		rec := env.request(t, owner, http.MethodGet, "/notifications", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp []NotificationResponse
		decodeBody(t, rec, &resp)
		require.Len(t, resp, 1)
		assert.Equal(t, "Your booking was confirmed", resp[0].Message)
		assert.False(t, resp[0].Read)
	})

	t.Run("unread count drops after marking one read", func(t *testing.T) {
		owner := env.db.NewUser(t).WithEmail("count@tourist.example").AsTourist().Create()
		first := env.seedNotification(t, owner, "first")
		env.seedNotification(t, owner, "second")

		rec := env.request(t, owner, http.MethodGet, "/notifications/unread-count", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var count struct {
			Unread int64 `json:"unread"`
		}
		decodeBody(t, rec, &count)
		assert.Equal(t, int64(2), count.Unread)

		read := env.request(t, owner, http.MethodPost,
			fmt.Sprintf("/notifications/%s/read", first.ID), nil)
		require.Equal(t, http.StatusOK, read.Code)

		var marked NotificationResponse
		decodeBody(t, read, &marked)
		assert.True(t, marked.Read)

		rec = env.request(t, owner, http.MethodGet, "/notifications/unread-count", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decodeBody(t, rec, &count)
		assert.Equal(t, int64(1), count.Unread)
	})

	t.Run("cannot mark someone else's notification read", func(t *testing.T) {
		owner := env.db.NewUser(t).WithEmail("mark@tourist.example").AsTourist().Create()
		stranger := env.db.NewUser(t).WithEmail("snoop@tourist.example").AsTourist().Create()
		notification := env.seedNotification(t, owner, "private")

		rec := env.request(t, stranger, http.MethodPost,
			fmt.Sprintf("/notifications/%s/read", notification.ID), nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("read-all clears the backlog", func(t *testing.T) {
		owner := env.db.NewUser(t).WithEmail("readall@tourist.example").AsTourist().Create()
		env.seedNotification(t, owner, "one")
		env.seedNotification(t, owner, "two")
		env.seedNotification(t, owner, "three")

		rec := env.request(t, owner, http.MethodPost, "/notifications/read-all", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.request(t, owner, http.MethodGet, "/notifications/unread-count", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var count struct {
			Unread int64 `json:"unread"`
		}
		decodeBody(t, rec, &count)
		assert.Equal(t, int64(0), count.Unread)
	})

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		rec := env.request(t, nil, http.MethodGet, "/notifications", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
