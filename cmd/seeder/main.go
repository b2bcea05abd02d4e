package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/wildhaven/parkops-backend/internal/config"
	"github.com/wildhaven/parkops-backend/internal/database"
	"github.com/wildhaven/parkops-backend/internal/rbac"
	"github.com/wildhaven/parkops-backend/internal/store"
	"gopkg.in/yaml.v3"
)

const migrationsDir = "db/migrations"

type SeedData struct {
	Users      []User     `yaml:"users"`
	Activities []Activity `yaml:"activities"`
	Vehicles   []Vehicle  `yaml:"vehicles"`
}

type User struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
	Role     string `yaml:"role"`
}

type Activity struct {
	Name                    string  `yaml:"name"`
	Description             string  `yaml:"description"`
	Category                string  `yaml:"category"`
	Capacity                int     `yaml:"capacity"`
	Status                  string  `yaml:"status"`
	RequiredRole            *string `yaml:"required_role,omitempty"`
	PerUserLimit            int     `yaml:"per_user_limit"`
	MinAdvanceDays          int     `yaml:"min_advance_days"`
	MaxAdvanceDays          int     `yaml:"max_advance_days"`
	AllowedWeekdays         []int32 `yaml:"allowed_weekdays"`
	TourGuideAvailable      bool    `yaml:"tour_guide_available"`
	MinParticipantsForGuide int     `yaml:"min_participants_for_guide"`
}

type Vehicle struct {
	PlateNumber string `yaml:"plate_number"`
	VehicleType string `yaml:"vehicle_type"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		return seedCommand(args)
	case "migrate":
		return migrateCommand()
	case "nuke":
		return nukeCommand(args)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "YAML file to seed from")
	dir := fs.String("dir", "", "Directory of YAML files to seed from")
	dryRun := fs.Bool("dry-run", false, "Validate files without making database changes")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	files, err := resolveFiles(*file, *dir)
	if err != nil {
		return err
	}

	seedData, err := loadSeedData(files)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}

	if err := validateSeedData(seedData); err != nil {
		return err
	}

	if *dryRun {
		fmt.Println("dry run: data structure is valid")
		return nil
	}

	cfg := config.Load()
	seedDB, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer seedDB.Close()

	fmt.Printf("seeding database from %d file(s)\n", len(files))
	return applySeedData(context.Background(), seedDB.Queries(), seedData)
}

func migrateCommand() error {
	cfg := config.Load()

	sqlDB, err := goose.OpenDBWithDriver("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer sqlDB.Close()

	fmt.Println("applying migrations...")
	if err := goose.Up(sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	fmt.Println("migrations applied")
	return nil
}

func nukeCommand(args []string) error {
	fs := flag.NewFlagSet("nuke", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if !*force && !confirmNuke() {
		fmt.Println("operation cancelled")
		return nil
	}

	return nukeDatabase()
}

func resolveFiles(file, dir string) ([]string, error) {
	if file == "" && dir == "" {
		return nil, errors.New("must specify either --file or --dir")
	}

	if file != "" && dir != "" {
		return nil, errors.New("cannot specify both --file and --dir")
	}

	if file != "" {
		return []string{file}, nil
	}

	return findYAMLFiles(dir)
}

func findYAMLFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && isYAMLFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no YAML files found in directory: %s", dir)
	}

	return files, nil
}

func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func loadSeedData(files []string) (*SeedData, error) {
	combined := &SeedData{}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", file, err)
		}

		var fileData SeedData
		if err := yaml.Unmarshal(data, &fileData); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %s: %w", file, err)
		}

		combined.Users = append(combined.Users, fileData.Users...)
		combined.Activities = append(combined.Activities, fileData.Activities...)
		combined.Vehicles = append(combined.Vehicles, fileData.Vehicles...)
	}

	return combined, nil
}

func validateSeedData(data *SeedData) error {
	fmt.Printf("  Users: %d\n", len(data.Users))
	fmt.Printf("  Activities: %d\n", len(data.Activities))
	fmt.Printf("  Vehicles: %d\n", len(data.Vehicles))

	for _, u := range data.Users {
		if !rbac.Canonical(u.Role).Valid() {
			return fmt.Errorf("user %s has unknown role %q", u.Email, u.Role)
		}
	}
	for _, a := range data.Activities {
		if a.RequiredRole != nil && !rbac.Canonical(*a.RequiredRole).Valid() {
			return fmt.Errorf("activity %s has unknown required role %q", a.Name, *a.RequiredRole)
		}
		for _, wd := range a.AllowedWeekdays {
			if wd < 0 || wd > 6 {
				return fmt.Errorf("activity %s has invalid weekday %d", a.Name, wd)
			}
		}
	}

	return nil
}

func applySeedData(ctx context.Context, queries *store.Store, data *SeedData) error {
	for _, user := range data.Users {
		role := rbac.Canonical(user.Role)
		created, err := queries.CreateUser(ctx, store.CreateUserParams{
			Email:    user.Email,
			FullName: user.FullName,
			Role:     role.String(),
		})
		if err != nil {
			return fmt.Errorf("failed to create user %s: %w", user.Email, err)
		}
		fmt.Printf("created user: %s (%s)\n", created.Email, created.Role)
	}

	for _, activity := range data.Activities {
		var requiredRole *string
		if activity.RequiredRole != nil {
			r := rbac.Canonical(*activity.RequiredRole).String()
			requiredRole = &r
		}
		created, err := queries.CreateActivity(ctx, store.CreateActivityParams{
			Name:                    activity.Name,
			Description:             activity.Description,
			Category:                activity.Category,
			Capacity:                activity.Capacity,
			Status:                  activity.Status,
			RequiredRole:            requiredRole,
			PerUserLimit:            activity.PerUserLimit,
			MinAdvanceDays:          activity.MinAdvanceDays,
			MaxAdvanceDays:          activity.MaxAdvanceDays,
			AllowedWeekdays:         activity.AllowedWeekdays,
			TourGuideAvailable:      activity.TourGuideAvailable,
			MinParticipantsForGuide: activity.MinParticipantsForGuide,
		})
		if err != nil {
			return fmt.Errorf("failed to create activity %s: %w", activity.Name, err)
		}
		fmt.Printf("created activity: %s\n", created.Name)
	}

	for _, vehicle := range data.Vehicles {
		created, err := queries.CreateVehicle(ctx, store.CreateVehicleParams{
			PlateNumber: vehicle.PlateNumber,
			VehicleType: vehicle.VehicleType,
		})
		if err != nil {
			return fmt.Errorf("failed to create vehicle %s: %w", vehicle.PlateNumber, err)
		}
		fmt.Printf("created vehicle: %s\n", created.PlateNumber)
	}

	fmt.Println("seeding completed")
	return nil
}

func nukeDatabase() error {
	cfg := config.Load()

	sqlDB, err := goose.OpenDBWithDriver("pgx", cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			fmt.Printf("warning: failed to close database: %v\n", err)
		}
	}()

	fmt.Println("resetting database with goose...")

	fmt.Println("rolling back all migrations...")
	if err := goose.Reset(sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}

	fmt.Println("applying all migrations...")
	if err := goose.Up(sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	fmt.Println("database reset complete - ready for seeding")
	return nil
}

func confirmNuke() bool {
	fmt.Print("warning: this will delete all data from the database. are you sure? (yes/no): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}

	return strings.ToLower(strings.TrimSpace(response)) == "yes"
}

func printUsage() {
	fmt.Println("Seeder Tool - Database utility for Wildhaven Park Operations")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  seeder <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  seed        Seed database from YAML files")
	fmt.Println("  migrate     Apply pending migrations")
	fmt.Println("  nuke        Reset the database schema")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("SEED FLAGS:")
	fmt.Println("  --file      Path to a single YAML file")
	fmt.Println("  --dir       Path to directory containing YAML files")
	fmt.Println("  --dry-run   Validate files without making database changes")
	fmt.Println()
	fmt.Println("NUKE FLAGS:")
	fmt.Println("  --force     Skip confirmation prompt")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  seeder migrate")
	fmt.Println("  seeder seed --file dev-data.yaml")
	fmt.Println("  seeder seed --dir ./seed-data/")
	fmt.Println("  seeder nuke --force")
}
