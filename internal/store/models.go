package store

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	FullName  string    `db:"full_name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

type Activity struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Capacity    int       `db:"capacity"`
	Status      string    `db:"status"`

	RequiredRole *string `db:"required_role"`
	PerUserLimit int     `db:"per_user_limit"`

	MinAdvanceDays  int     `db:"min_advance_days"`
	MaxAdvanceDays  int     `db:"max_advance_days"`
	AllowedWeekdays []int32 `db:"allowed_weekdays"`

	TourGuideAvailable      bool `db:"tour_guide_available"`
	MinParticipantsForGuide int  `db:"min_participants_for_guide"`

	CreatedAt time.Time `db:"created_at"`
}

// Booking statuses
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID                 uuid.UUID  `db:"id"`
	ActivityID         uuid.UUID  `db:"activity_id"`
	UserID             uuid.UUID  `db:"user_id"`
	Participants       int        `db:"participants"`
	BookingDate        time.Time  `db:"booking_date"`
	TourGuideRequested bool       `db:"tour_guide_requested"`
	Status             string     `db:"status"`
	CreatedAt          time.Time  `db:"created_at"`
	CancelledAt        *time.Time `db:"cancelled_at"`
}

// BookingRow is a booking joined with its activity name and the
// requester's email for list/detail responses.
type BookingRow struct {
	Booking
	ActivityName string `db:"activity_name"`
	UserEmail    string `db:"user_email"`
}

// Application statuses
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

type Application struct {
	ID            uuid.UUID  `db:"id"`
	ApplicantName string     `db:"applicant_name"`
	Email         string     `db:"email"`
	RoleApplied   string     `db:"role_applied"`
	CoverNote     string     `db:"cover_note"`
	Status        string     `db:"status"`
	ReviewedBy    *uuid.UUID `db:"reviewed_by"`
	ReviewNote    *string    `db:"review_note"`
	CreatedAt     time.Time  `db:"created_at"`
	ReviewedAt    *time.Time `db:"reviewed_at"`
}

// Emergency statuses and priorities
const (
	EmergencyStatusOpen       = "open"
	EmergencyStatusInProgress = "in_progress"
	EmergencyStatusResolved   = "resolved"

	EmergencyPriorityLow    = "low"
	EmergencyPriorityMedium = "medium"
	EmergencyPriorityHigh   = "high"
)

type Emergency struct {
	ID           uuid.UUID  `db:"id"`
	ReporterID   uuid.UUID  `db:"reporter_id"`
	Description  string     `db:"description"`
	Location     string     `db:"location"`
	Priority     string     `db:"priority"`
	Status       string     `db:"status"`
	AssignedTo   *uuid.UUID `db:"assigned_to"`
	PhotoKey     *string    `db:"photo_key"`
	ThumbnailKey *string    `db:"thumbnail_key"`
	CreatedAt    time.Time  `db:"created_at"`
	ResolvedAt   *time.Time `db:"resolved_at"`
}

// Animal case statuses
const (
	AnimalCaseStatusOpen           = "open"
	AnimalCaseStatusUnderTreatment = "under_treatment"
	AnimalCaseStatusResolved       = "resolved"
)

type AnimalCase struct {
	ID          uuid.UUID  `db:"id"`
	AnimalName  string     `db:"animal_name"`
	Species     string     `db:"species"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	VetID       *uuid.UUID `db:"vet_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Vehicle statuses
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusOnPatrol    = "on_patrol"
	VehicleStatusMaintenance = "maintenance"
)

type Vehicle struct {
	ID            uuid.UUID  `db:"id"`
	PlateNumber   string     `db:"plate_number"`
	VehicleType   string     `db:"vehicle_type"`
	Status        string     `db:"status"`
	DriverID      *uuid.UUID `db:"driver_id"`
	LastServiceAt *time.Time `db:"last_service_at"`
	CreatedAt     time.Time  `db:"created_at"`
}

type Notification struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	ActorID    *uuid.UUID `db:"actor_id"`
	EntityType string     `db:"entity_type"`
	EntityID   uuid.UUID  `db:"entity_id"`
	Message    string     `db:"message"`
	Read       bool       `db:"read"`
	CreatedAt  time.Time  `db:"created_at"`
}
