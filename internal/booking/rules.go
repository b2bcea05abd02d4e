package booking

import (
	"fmt"
	"time"

	"github.com/wildhaven/parkops-backend/internal/rbac"
)

// Fixed success messages for rules whose ordinary success carries no
// information worth surfacing. The aggregate treats any other success
// message as informational (warning-level UI treatment).
const (
	msgPermissionsOK    = "Booking permitted"
	msgDateOK           = "Date is available"
	msgNoGuideRequested = "No tour guide requested"
)

// ValidateCapacity checks the requested participant count against the
// activity's capacity and the confirmed bookings already held for the
// date. On success SlotsLeft reports the slots remaining after this
// booking would be confirmed.
func ValidateCapacity(a Activity, participants int) Outcome {
	capacity := a.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	if participants <= 0 {
		return fail(ReasonParticipantsInvalid, "Number of participants must be at least 1")
	}
	if participants > capacity {
		return fail(ReasonOverCapacity,
			fmt.Sprintf("Maximum capacity for this activity is %d", capacity))
	}

	available := capacity - a.CurrentBookings
	if available < 0 {
		available = 0
	}
	if participants > available {
		return fail(ReasonInsufficientSlots,
			fmt.Sprintf("Only %d slots available on this date. Please reduce participants or choose another date", available))
	}

	left := available - participants
	out := succeed(fmt.Sprintf("Booking accepted. %d slot(s) will remain on this date", left))
	out.SlotsLeft = left
	return out
}

// ValidatePermissions checks that the user may book this activity at
// all: authenticated, activity open, role requirement met, per-user
// limit not reached. There is no admin bypass here; admins are exempt
// from permission checks, not from booking-content rules.
func ValidatePermissions(a Activity, user *User) Outcome {
	if user == nil {
		out := fail(ReasonRequiresAuth, "You must be logged in to book an activity")
		out.RequiresAuth = true
		return out
	}

	if a.Status != "" && a.Status != StatusActive {
		return fail(ReasonActivityInactive, "This activity is not currently available for booking")
	}

	if a.RequiredRole != "" && !rbac.IsRole(user.Role, a.RequiredRole) {
		return fail(ReasonRoleRestricted,
			fmt.Sprintf("This activity requires the %s role", a.RequiredRole))
	}

	if a.PerUserLimit > 0 && user.ExistingBookings >= a.PerUserLimit {
		return fail(ReasonLimitReached,
			fmt.Sprintf("You have reached the limit of %d booking(s) for this activity", a.PerUserLimit))
	}

	return succeed(msgPermissionsOK)
}

// ValidateDate checks the requested date against the activity's
// advance-booking window and weekday restrictions, using the current
// wall clock as the reference.
func ValidateDate(a Activity, date time.Time) Outcome {
	return ValidateDateAt(a, date, time.Now())
}

// ValidateDateAt is ValidateDate with an explicit reference time, for
// deterministic evaluation. Both the requested date and "today" are
// normalized to midnight before comparison.
func ValidateDateAt(a Activity, date time.Time, ref time.Time) Outcome {
	today := midnight(ref)
	requested := midnight(date)

	if requested.Before(today) {
		return fail(ReasonPastDate, "Cannot book for past dates")
	}

	minDays := a.MinAdvanceDays
	if minDays <= 0 {
		minDays = DefaultMinAdvanceDays
	}
	if requested.Before(today.AddDate(0, 0, minDays)) {
		return fail(ReasonTooEarly,
			fmt.Sprintf("Bookings must be made at least %d day(s) in advance", minDays))
	}

	maxDays := a.MaxAdvanceDays
	if maxDays <= 0 {
		maxDays = DefaultMaxAdvanceDays
	}
	if requested.After(today.AddDate(0, 0, maxDays)) {
		return fail(ReasonTooLate,
			fmt.Sprintf("Bookings cannot be made more than %d days in advance", maxDays))
	}

	if len(a.AllowedWeekdays) > 0 && !weekdayAllowed(a.AllowedWeekdays, requested.Weekday()) {
		return fail(ReasonWeekdayClosed,
			fmt.Sprintf("This activity is not available on %ss", requested.Weekday()))
	}

	return succeed(msgDateOK)
}

// ValidateTourGuide checks a tour-guide request against the activity's
// guide availability and group-size minimum. Not requesting a guide
// trivially succeeds.
func ValidateTourGuide(a Activity, participants int, requested bool) Outcome {
	if !requested {
		return succeed(msgNoGuideRequested)
	}

	if !a.TourGuideAvailable {
		return fail(ReasonGuideUnavailable, "A tour guide is not available for this activity")
	}

	minFor := a.MinParticipantsForGuide
	if minFor <= 0 {
		minFor = DefaultMinParticipantsForGuide
	}
	if participants < minFor {
		return fail(ReasonBelowGuideMinimum,
			fmt.Sprintf("A tour guide requires a group of at least %d participant(s)", minFor))
	}

	return succeed("A tour guide will accompany your group")
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func weekdayAllowed(allowed []time.Weekday, day time.Weekday) bool {
	for _, d := range allowed {
		if d == day {
			return true
		}
	}
	return false
}
