package rbac

// Permission names an atomic capability gating one action. Permissions
// are flat: there is no hierarchy or implication between them apart
// from the admin bypass in Engine.HasPermission.
type Permission string

const (
	BookActivity    Permission = "book_activity"     // Create activity bookings
	ViewOwnBookings Permission = "view_own_bookings" // View own bookings
	ManageBookings  Permission = "manage_bookings"   // Manage all bookings

	ManageActivities Permission = "manage_activities" // CRUD on activities

	SubmitApplication  Permission = "submit_application"  // Apply for a staff position
	ApproveApplication Permission = "approve_application" // Review staff applications

	ReportEmergency   Permission = "report_emergency"   // File emergency reports
	RespondEmergency  Permission = "respond_emergency"  // Take/resolve emergencies
	ManageEmergencies Permission = "manage_emergencies" // View and triage all emergencies

	ManageAnimalCases Permission = "manage_animal_cases" // CRUD on animal medical cases
	ViewAnimalCases   Permission = "view_animal_cases"   // Read-only case access

	ManageVehicles Permission = "manage_vehicles" // Register and maintain fleet
	AssignVehicles Permission = "assign_vehicles" // Assign drivers to vehicles

	ViewDashboard Permission = "view_dashboard" // Role-based dashboard access
	ManageUsers   Permission = "manage_users"   // CRUD on user accounts
	ViewAllData   Permission = "view_all_data"  // View all data system-wide
)

func (p Permission) String() string {
	return string(p)
}
