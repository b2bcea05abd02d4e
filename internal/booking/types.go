// Package booking validates one proposed activity booking against four
// independent rule sets (capacity, permissions, date window, tour
// guide) and produces an aggregate, explainable decision. Everything
// here is a pure function of caller-supplied values: no I/O, no shared
// state, and for fixed inputs the output is identical on every call,
// so the package is safe to use from any number of goroutines.
//
// Persistence is the caller's concern. Handlers load the activity and
// current booking counts, build the value types below, and act on the
// returned Aggregate.
package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/wildhaven/parkops-backend/internal/rbac"
)

// Defaults applied when an activity leaves a field unspecified.
// Missing configuration degrades to these rather than erroring.
const (
	DefaultCapacity                = 50
	DefaultMinAdvanceDays          = 1
	DefaultMaxAdvanceDays          = 365
	DefaultMinParticipantsForGuide = 1
)

// StatusActive is the only activity status open for booking.
const StatusActive = "Active"

// Activity carries the booking-relevant configuration of one activity
// plus the caller-supplied live counts it is validated against.
type Activity struct {
	Capacity        int    // max participants per date; 0 means DefaultCapacity
	CurrentBookings int    // confirmed participant count already booked for the date
	Status          string // must be StatusActive to book; "" skips the check

	RequiredRole rbac.Role // "" means any role may book
	PerUserLimit int       // max bookings per user for this activity; 0 means unlimited

	MinAdvanceDays  int            // 0 means DefaultMinAdvanceDays
	MaxAdvanceDays  int            // 0 means DefaultMaxAdvanceDays
	AllowedWeekdays []time.Weekday // empty means every weekday

	TourGuideAvailable      bool
	MinParticipantsForGuide int // 0 means DefaultMinParticipantsForGuide
}

// User identifies the booking user as the rule engine sees it. A nil
// *User on an Attempt means the request is unauthenticated.
type User struct {
	ID               uuid.UUID
	Role             rbac.Role
	ExistingBookings int // user's confirmed bookings for this activity
}

// Attempt is one proposed reservation. It is built per request and
// discarded after the decision is returned.
type Attempt struct {
	Participants     int
	Date             time.Time
	RequestTourGuide bool
	User             *User
}

// Reason is a machine-checkable tag explaining an outcome.
type Reason string

const (
	ReasonParticipantsInvalid Reason = "participantsInvalid"
	ReasonOverCapacity        Reason = "overCapacity"
	ReasonInsufficientSlots   Reason = "insufficientSlots"

	ReasonRequiresAuth     Reason = "requiresAuth"
	ReasonActivityInactive Reason = "activityInactive"
	ReasonRoleRestricted   Reason = "roleRestricted"
	ReasonLimitReached     Reason = "limitReached"

	ReasonPastDate      Reason = "pastDate"
	ReasonTooEarly      Reason = "tooEarly"
	ReasonTooLate       Reason = "tooLate"
	ReasonWeekdayClosed Reason = "weekdayClosed"

	ReasonGuideUnavailable  Reason = "guideUnavailable"
	ReasonBelowGuideMinimum Reason = "belowGuideMinimum"
)

// Outcome is one rule's verdict. Reason is empty on success.
// RequiresAuth marks the failure as an authentication problem so the
// caller can redirect to login instead of showing a generic denial.
type Outcome struct {
	OK           bool
	Reason       Reason
	Message      string
	SlotsLeft    int // capacity rule: slots remaining after this booking
	RequiresAuth bool
}

// Rule names the four sub-rules. The aggregate always reports them in
// the order listed here.
type Rule string

const (
	RuleCapacity    Rule = "capacity"
	RulePermissions Rule = "permissions"
	RuleDate        Rule = "date"
	RuleTourGuide   Rule = "tourGuide"
)

func succeed(msg string) Outcome {
	return Outcome{OK: true, Message: msg}
}

func fail(reason Reason, msg string) Outcome {
	return Outcome{Reason: reason, Message: msg}
}
