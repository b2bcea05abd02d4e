package booking

import (
	"strings"
	"time"
)

// RuleOutcome pairs a rule name with its outcome.
type RuleOutcome struct {
	Rule Rule
	Outcome
}

// Aggregate is the combined report for one attempt. All four rules are
// always evaluated; no failure suppresses another rule's evaluation, so
// the caller gets the complete set of problems in one pass.
type Aggregate struct {
	OK bool

	// Outcomes holds every rule's result in fixed evaluation order:
	// capacity, permissions, date, tourGuide.
	Outcomes []RuleOutcome

	// Failures is the subset of Outcomes that failed, same order.
	Failures []RuleOutcome

	// Warnings is the subset of successes whose message is not the
	// rule's fixed no-op string (e.g. capacity's remaining-slots
	// report). These are meant for warning-level display even when
	// the booking is allowed.
	Warnings []RuleOutcome

	// RequiresAuth is set when the permission rule failed because no
	// authenticated user was supplied, so callers can answer 401
	// rather than 403.
	RequiresAuth bool
}

// Outcome returns the result for one rule.
func (a Aggregate) Outcome(rule Rule) (Outcome, bool) {
	for _, ro := range a.Outcomes {
		if ro.Rule == rule {
			return ro.Outcome, true
		}
	}
	return Outcome{}, false
}

// ValidateCompleteBooking evaluates all four rules against the current
// wall clock and aggregates the results.
func ValidateCompleteBooking(activity Activity, attempt Attempt) Aggregate {
	return ValidateCompleteBookingAt(activity, attempt, time.Now())
}

// ValidateCompleteBookingAt is ValidateCompleteBooking with an explicit
// reference time for the date rule.
func ValidateCompleteBookingAt(activity Activity, attempt Attempt, ref time.Time) Aggregate {
	outcomes := []RuleOutcome{
		{Rule: RuleCapacity, Outcome: ValidateCapacity(activity, attempt.Participants)},
		{Rule: RulePermissions, Outcome: ValidatePermissions(activity, attempt.User)},
		{Rule: RuleDate, Outcome: ValidateDateAt(activity, attempt.Date, ref)},
		{Rule: RuleTourGuide, Outcome: ValidateTourGuide(activity, attempt.Participants, attempt.RequestTourGuide)},
	}

	agg := Aggregate{OK: true, Outcomes: outcomes}
	for _, ro := range outcomes {
		switch {
		case !ro.OK:
			agg.OK = false
			agg.Failures = append(agg.Failures, ro)
			if ro.RequiresAuth {
				agg.RequiresAuth = true
			}
		case informational(ro):
			agg.Warnings = append(agg.Warnings, ro)
		}
	}
	return agg
}

// informational reports whether a success carries a message beyond the
// rule's fixed no-op string. The capacity rule's success always reports
// remaining slots, so it is always informational.
func informational(ro RuleOutcome) bool {
	switch ro.Rule {
	case RulePermissions:
		return ro.Message != msgPermissionsOK
	case RuleDate:
		return ro.Message != msgDateOK
	case RuleTourGuide:
		return ro.Message != msgNoGuideRequested
	default:
		return true
	}
}

// FormatFailures joins all failing messages with ". " for single-string
// display. Order follows the fixed rule order, so output is
// deterministic for identical inputs.
func FormatFailures(agg Aggregate) string {
	if len(agg.Failures) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(agg.Failures))
	for _, ro := range agg.Failures {
		msgs = append(msgs, ro.Message)
	}
	return strings.Join(msgs, ". ")
}
