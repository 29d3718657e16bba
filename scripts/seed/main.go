// Command seed bootstraps the database schema and loads a small sample
// catalog so the engine can be exercised locally.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-timetable-api/pkg/config"
	"github.com/noah-isme/campus-timetable-api/pkg/database"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS course_sections (
		id TEXT PRIMARY KEY,
		course_code TEXT NOT NULL,
		section_label TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		weekly_hours INT NOT NULL,
		enrollment INT NOT NULL DEFAULT 0,
		cohort TEXT NOT NULL DEFAULT '',
		required_features JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (course_code, section_label)
	)`,
	`CREATE TABLE IF NOT EXISTS faculty_members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		max_weekly_hours INT NOT NULL DEFAULT 0,
		expertise JSONB NOT NULL DEFAULT '[]',
		availability JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capacity INT NOT NULL,
		type TEXT NOT NULL DEFAULT '',
		features JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cohort_preferences (
		cohort TEXT PRIMARY KEY,
		bucket TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		version INT NOT NULL,
		status TEXT NOT NULL,
		metrics JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (name, version)
	)`,
	`CREATE TABLE IF NOT EXISTS scenario_assignments (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL REFERENCES scenarios (id),
		section_id TEXT NOT NULL,
		faculty_id TEXT NOT NULL,
		room_id TEXT NOT NULL,
		day INT NOT NULL,
		period INT NOT NULL,
		cohort TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scenario_assignments_scenario ON scenario_assignments (scenario_id)`,
}

func main() {
	var (
		withSample bool
		timeout    time.Duration
	)
	flag.BoolVar(&withSample, "sample", true, "insert a sample catalog after creating the schema")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("failed to apply schema: %v", err)
		}
	}
	log.Println("schema applied")

	if !withSample {
		return
	}
	if err := seedCatalog(ctx, db); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}
	log.Println("sample catalog loaded")
}

func seedCatalog(ctx context.Context, db *sqlx.DB) error {
	sections := []struct {
		code, label, title, category, cohort string
		hours, enrollment                    int
		features                             string
	}{
		{"CS301", "A", "Operating Systems", "MAJOR", "CS-3A", 4, 52, `[]`},
		{"CS301", "B", "Operating Systems", "MAJOR", "CS-3B", 4, 48, `[]`},
		{"CS305L", "A", "Networks Lab", "LAB", "CS-3A", 2, 26, `["lab_computers"]`},
		{"MA201", "A", "Linear Algebra", "MINOR", "CS-3A", 3, 55, `[]`},
		{"HS101", "A", "Professional Ethics", "AEC", "CS-3B", 2, 50, `[]`},
		{"PE110", "A", "Design Thinking", "SKILL", "CS-3B", 2, 45, `["projector"]`},
	}
	for _, s := range sections {
		_, err := db.ExecContext(ctx, `
INSERT INTO course_sections (id, course_code, section_label, title, category, weekly_hours, enrollment, cohort, required_features)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (course_code, section_label) DO NOTHING`,
			uuid.NewString(), s.code, s.label, s.title, s.category, s.hours, s.enrollment, s.cohort, s.features)
		if err != nil {
			return err
		}
	}

	faculty := []struct {
		id, name, expertise, availability string
		maxHours                          int
	}{
		{"fac-rao", "Prof. Rao", `["CS301", "MAJOR"]`, `{}`, 16},
		{"fac-iyer", "Dr. Iyer", `["CS305L", "LAB"]`, `{"1": [1, 2, 3, 4], "2": [1, 2, 3, 4], "3": [1, 2, 3, 4]}`, 12},
		{"fac-das", "Dr. Das", `["MA201", "MINOR"]`, `{}`, 14},
		{"fac-mehta", "Prof. Mehta", `["HS101", "AEC", "SKILL"]`, `{}`, 10},
	}
	for _, f := range faculty {
		_, err := db.ExecContext(ctx, `
INSERT INTO faculty_members (id, name, max_weekly_hours, expertise, availability)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`,
			f.id, f.name, f.maxHours, f.expertise, f.availability)
		if err != nil {
			return err
		}
	}

	rooms := []struct {
		id, name, roomType, features string
		capacity                     int
	}{
		{"room-101", "LH-101", "lecture", `["projector"]`, 60},
		{"room-102", "LH-102", "lecture", `[]`, 55},
		{"room-lab1", "CSE Lab 1", "lab", `["lab_computers", "projector"]`, 30},
	}
	for _, r := range rooms {
		_, err := db.ExecContext(ctx, `
INSERT INTO rooms (id, name, capacity, type, features)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`,
			r.id, r.name, r.capacity, r.roomType, r.features)
		if err != nil {
			return err
		}
	}

	prefs := map[string]string{"CS-3A": "MORNING", "CS-3B": "AFTERNOON"}
	for cohort, bucket := range prefs {
		_, err := db.ExecContext(ctx, `
INSERT INTO cohort_preferences (cohort, bucket)
VALUES ($1, $2)
ON CONFLICT (cohort) DO UPDATE SET bucket = EXCLUDED.bucket`,
			cohort, bucket)
		if err != nil {
			return err
		}
	}
	return nil
}
