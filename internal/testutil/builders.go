package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
)

// TestUser represents a created test user
type TestUser struct {
	ID    uuid.UUID
	Email string
	Role  rbac.Role
}

// UserBuilder provides a fluent interface for creating test users
type UserBuilder struct {
	email    string
	fullName string
	role     rbac.Role
	testDB   *TestDatabase
	t        *testing.T
}

// NewUser creates a new user builder
func (tdb *TestDatabase) NewUser(t *testing.T) *UserBuilder {
	return &UserBuilder{
		email:    "test@example.com",
		fullName: "Test User",
		role:     rbac.RoleTourist,
		testDB:   tdb,
		t:        t,
	}
}

// WithEmail sets the user's email
func (ub *UserBuilder) WithEmail(email string) *UserBuilder {
	ub.email = email
	return ub
}

// WithRole sets the user's role
func (ub *UserBuilder) WithRole(role rbac.Role) *UserBuilder {
	ub.role = role
	return ub
}

// AsAdmin sets the admin role
func (ub *UserBuilder) AsAdmin() *UserBuilder {
	return ub.WithRole(rbac.RoleAdmin)
}

// AsWildlifeOfficer sets the wildlife_officer role
func (ub *UserBuilder) AsWildlifeOfficer() *UserBuilder {
	return ub.WithRole(rbac.RoleWildlifeOfficer)
}

// AsTourist sets the tourist role
func (ub *UserBuilder) AsTourist() *UserBuilder {
	return ub.WithRole(rbac.RoleTourist)
}

// Create creates the user in the database and returns the TestUser
func (ub *UserBuilder) Create() *TestUser {
	ctx := context.Background()

	user, err := ub.testDB.Queries().CreateUser(ctx, store.CreateUserParams{
		Email:    ub.email,
		FullName: ub.fullName,
		Role:     ub.role.String(),
	})
	require.NoError(ub.t, err, "Failed to create user")

	return &TestUser{
		ID:    user.ID,
		Email: user.Email,
		Role:  rbac.Canonical(user.Role),
	}
}

// ActivityBuilder provides a fluent interface for creating test activities
type ActivityBuilder struct {
	params store.CreateActivityParams
	testDB *TestDatabase
	t      *testing.T
}

// NewActivity creates a new activity builder with permissive defaults.
func (tdb *TestDatabase) NewActivity(t *testing.T) *ActivityBuilder {
	return &ActivityBuilder{
		params: store.CreateActivityParams{
			Name:                    "Test Safari",
			Description:             "Test activity description",
			Category:                "safari",
			Capacity:                50,
			Status:                  "Active",
			PerUserLimit:            5,
			MinAdvanceDays:          0,
			MaxAdvanceDays:          365,
			TourGuideAvailable:      true,
			MinParticipantsForGuide: 1,
		},
		testDB: tdb,
		t:      t,
	}
}

// WithName sets the activity name
func (ab *ActivityBuilder) WithName(name string) *ActivityBuilder {
	ab.params.Name = name
	return ab
}

// WithCapacity sets the capacity
func (ab *ActivityBuilder) WithCapacity(capacity int) *ActivityBuilder {
	ab.params.Capacity = capacity
	return ab
}

// WithStatus sets the status
func (ab *ActivityBuilder) WithStatus(status string) *ActivityBuilder {
	ab.params.Status = status
	return ab
}

// WithRequiredRole restricts the activity to one role
func (ab *ActivityBuilder) WithRequiredRole(role rbac.Role) *ActivityBuilder {
	r := role.String()
	ab.params.RequiredRole = &r
	return ab
}

// WithPerUserLimit sets the per-user booking limit
func (ab *ActivityBuilder) WithPerUserLimit(limit int) *ActivityBuilder {
	ab.params.PerUserLimit = limit
	return ab
}

// WithAdvanceWindow sets the min/max advance booking days
func (ab *ActivityBuilder) WithAdvanceWindow(minDays, maxDays int) *ActivityBuilder {
	ab.params.MinAdvanceDays = minDays
	ab.params.MaxAdvanceDays = maxDays
	return ab
}

// WithAllowedWeekdays restricts bookable weekdays
func (ab *ActivityBuilder) WithAllowedWeekdays(weekdays ...int32) *ActivityBuilder {
	ab.params.AllowedWeekdays = weekdays
	return ab
}

// Create creates the activity in the database
func (ab *ActivityBuilder) Create() store.Activity {
	activity, err := ab.testDB.Queries().CreateActivity(context.Background(), ab.params)
	require.NoError(ab.t, err, "Failed to create activity")
	return activity
}

// NewBooking inserts a confirmed booking directly, bypassing the rule
// engine, for seeding capacity scenarios.
func (tdb *TestDatabase) NewBooking(t *testing.T, activityID, userID uuid.UUID, participants int, date time.Time) store.Booking {
	booking, err := tdb.Queries().CreateBooking(context.Background(), store.CreateBookingParams{
		ActivityID:         activityID,
		UserID:             userID,
		Participants:       participants,
		BookingDate:        date,
		TourGuideRequested: false,
	})
	require.NoError(t, err, "Failed to create booking")
	return booking
}

// NewVehicle inserts an available vehicle.
func (tdb *TestDatabase) NewVehicle(t *testing.T, plate string) store.Vehicle {
	vehicle, err := tdb.Queries().CreateVehicle(context.Background(), store.CreateVehicleParams{
		PlateNumber: plate,
		VehicleType: "land_cruiser",
	})
	require.NoError(t, err, "Failed to create vehicle")
	return vehicle
}

// NewEmergency files an open emergency for the given reporter.
func (tdb *TestDatabase) NewEmergency(t *testing.T, reporterID uuid.UUID) store.Emergency {
	emergency, err := tdb.Queries().CreateEmergency(context.Background(), store.CreateEmergencyParams{
		ReporterID:  reporterID,
		Description: "Test emergency",
		Location:    "North gate",
		Priority:    store.EmergencyPriorityMedium,
	})
	require.NoError(t, err, "Failed to create emergency")
	return emergency
}
