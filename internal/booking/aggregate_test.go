package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

func TestValidateCompleteBookingAt(t *testing.T) {
	ref := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	t.Run("valid attempt passes all four rules", func(t *testing.T) {
		activity := Activity{
			Capacity:                5,
			CurrentBookings:         0,
			Status:                  StatusActive,
			MinAdvanceDays:          1,
			MaxAdvanceDays:          365,
			TourGuideAvailable:      true,
			MinParticipantsForGuide: 2,
		}
		attempt := Attempt{
			Participants:     2,
			Date:             tomorrow,
			RequestTourGuide: true,
			User:             &User{ID: uuid.New(), Role: rbac.RoleTourist},
		}

		agg := ValidateCompleteBookingAt(activity, attempt, ref)

		assert.True(t, agg.OK)
		assert.Empty(t, agg.Failures)
		assert.False(t, agg.RequiresAuth)
		assert.Len(t, agg.Outcomes, 4)
		assert.Empty(t, FormatFailures(agg))
	})

	t.Run("every rule failing yields exactly four failures", func(t *testing.T) {
		// over capacity, inactive, in the past, guide requested but unsupported
		activity := Activity{
			Capacity:           5,
			CurrentBookings:    5,
			Status:             "Suspended",
			TourGuideAvailable: false,
		}
		attempt := Attempt{
			Participants:     3,
			Date:             time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			RequestTourGuide: true,
			User:             &User{ID: uuid.New(), Role: rbac.RoleTourist},
		}

		agg := ValidateCompleteBookingAt(activity, attempt, ref)

		assert.False(t, agg.OK)
		require.Len(t, agg.Failures, 4, "no rule may short-circuit another")

		assert.Equal(t, RuleCapacity, agg.Failures[0].Rule)
		assert.Equal(t, RulePermissions, agg.Failures[1].Rule)
		assert.Equal(t, RuleDate, agg.Failures[2].Rule)
		assert.Equal(t, RuleTourGuide, agg.Failures[3].Rule)
	})

	t.Run("unauthenticated attempt flags RequiresAuth", func(t *testing.T) {
		activity := Activity{Capacity: 5, Status: StatusActive}
		attempt := Attempt{Participants: 1, Date: tomorrow}

		agg := ValidateCompleteBookingAt(activity, attempt, ref)

		assert.False(t, agg.OK)
		assert.True(t, agg.RequiresAuth)

		out, ok := agg.Outcome(RulePermissions)
		require.True(t, ok)
		assert.Equal(t, ReasonRequiresAuth, out.Reason)
	})

	t.Run("capacity success is always informational", func(t *testing.T) {
		activity := Activity{Capacity: 5, Status: StatusActive}
		attempt := Attempt{
			Participants: 1,
			Date:         tomorrow,
			User:         &User{ID: uuid.New(), Role: rbac.RoleTourist},
		}

		agg := ValidateCompleteBookingAt(activity, attempt, ref)

		require.True(t, agg.OK)
		require.Len(t, agg.Warnings, 1)
		assert.Equal(t, RuleCapacity, agg.Warnings[0].Rule)
		assert.Equal(t, 4, agg.Warnings[0].SlotsLeft)
	})

	t.Run("guide confirmation joins the warnings", func(t *testing.T) {
		activity := Activity{Capacity: 5, Status: StatusActive, TourGuideAvailable: true}
		attempt := Attempt{
			Participants:     2,
			Date:             tomorrow,
			RequestTourGuide: true,
			User:             &User{ID: uuid.New(), Role: rbac.RoleTourist},
		}

		agg := ValidateCompleteBookingAt(activity, attempt, ref)

		require.True(t, agg.OK)
		require.Len(t, agg.Warnings, 2)
		assert.Equal(t, RuleCapacity, agg.Warnings[0].Rule)
		assert.Equal(t, RuleTourGuide, agg.Warnings[1].Rule)
	})

	t.Run("identical inputs produce identical reports", func(t *testing.T) {
		activity := Activity{Capacity: 5, CurrentBookings: 5, Status: "Closed"}
		attempt := Attempt{Participants: 2, Date: tomorrow, User: &User{ID: uuid.New(), Role: rbac.RoleTourist}}

		first := ValidateCompleteBookingAt(activity, attempt, ref)
		second := ValidateCompleteBookingAt(activity, attempt, ref)

		assert.Equal(t, first, second)
		assert.Equal(t, FormatFailures(first), FormatFailures(second))
	})
}

func TestFormatFailures(t *testing.T) {
	ref := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	activity := Activity{Capacity: 2, CurrentBookings: 2, Status: "Suspended"}
	attempt := Attempt{
		Participants: 1,
		Date:         time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
		User:         &User{ID: uuid.New(), Role: rbac.RoleTourist},
	}

	agg := ValidateCompleteBookingAt(activity, attempt, ref)
	require.Len(t, agg.Failures, 2)

	formatted := FormatFailures(agg)
	assert.Equal(t,
		"Only 0 slots available on this date. Please reduce participants or choose another date. "+
			"This activity is not currently available for booking",
		formatted)
}
