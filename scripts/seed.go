package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sitebrief/toolboxtalk/backend/internal/adapters/database"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/clients/postgres"
	"github.com/sitebrief/toolboxtalk/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
	token_hash TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS toolbox_meetings (
	id                        TEXT PRIMARY KEY,
	user_id                   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at                TIMESTAMPTZ NOT NULL,
	updated_at                TIMESTAMPTZ NOT NULL,
	job_title                 TEXT NOT NULL DEFAULT '',
	job_description           TEXT NOT NULL DEFAULT '',
	company                   TEXT NOT NULL DEFAULT '',
	site_address              TEXT NOT NULL DEFAULT '',
	date                      TEXT NOT NULL DEFAULT '',
	time                      TEXT NOT NULL DEFAULT '',
	supervisor_name           TEXT NOT NULL DEFAULT '',
	supervisor_phone          TEXT NOT NULL DEFAULT '',
	emergency_site_number     TEXT NOT NULL DEFAULT '',
	weather_conditions        TEXT NOT NULL DEFAULT '',
	temperature               DOUBLE PRECISION NOT NULL DEFAULT 0,
	road_conditions           TEXT NOT NULL DEFAULT '',
	lease_conditions          TEXT NOT NULL DEFAULT '',
	hazards                   JSONB NOT NULL DEFAULT '{}',
	additional_comments       TEXT NOT NULL DEFAULT '',
	ai_safety_summary         TEXT,
	safety_standards          TEXT,
	safety_standards_sources  JSONB NOT NULL DEFAULT '[]',
	safety_standards_metadata JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_toolbox_meetings_user_created
	ON toolbox_meetings (user_id, created_at DESC);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, dropping tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `DROP TABLE IF EXISTS toolbox_meetings, sessions, users CASCADE`); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset database")
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to create schema")
	}
	log.Info().Msg("Schema ready")

	userID := uuid.New().String()
	now := time.Now().UTC()
	if _, err := pgClient.DB().ExecContext(ctx,
		`INSERT INTO users (id, email, first_name, last_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5) ON CONFLICT (email) DO NOTHING`,
		userID, "demo@sitebrief.dev", "Demo", "Supervisor", now,
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed user")
	}

	// A fixed dev token so local clients can authenticate immediately.
	token := os.Getenv("SEED_SESSION_TOKEN")
	if token == "" {
		token = "dev-token"
	}
	tokenHash := sha256.Sum256([]byte(token))
	if _, err := pgClient.DB().ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at, created_at)
		 VALUES ($1, (SELECT id FROM users WHERE email = $2), $3, $4)
		 ON CONFLICT (token_hash) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		hex.EncodeToString(tokenHash[:]), "demo@sitebrief.dev", now.Add(30*24*time.Hour), now,
	); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed session")
	}

	var demoUserID string
	if err := pgClient.DB().QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = $1`, "demo@sitebrief.dev",
	).Scan(&demoUserID); err != nil {
		log.Fatal().Err(err).Msg("Failed to look up demo user")
	}

	meetingRepo := database.NewMeetingAdapter(pgClient)
	sample := &entities.Meeting{
		ID:                  uuid.New().String(),
		UserID:              demoUserID,
		CreatedAt:           now,
		UpdatedAt:           now,
		JobTitle:            "Scaffold erection - east elevation",
		JobDescription:      "Erect frame scaffold to 12m on the east elevation for brick veneer work",
		Company:             "Sitebrief Demo Contracting",
		SiteAddress:         "10230 Jasper Ave, Edmonton, AB",
		Date:                now.Format("2006-01-02"),
		Time:                "07:00",
		SupervisorName:      "Demo Supervisor",
		SupervisorPhone:     "780-555-0142",
		EmergencySiteNumber: "780-555-0199",
		WeatherConditions:   "Partly Cloudy",
		Temperature:         14.5,
		RoadConditions:      "Dry",
		LeaseConditions:     "Graded, dry",
		Hazards: entities.HazardFlags{
			WorkingAtHeights: true,
			HandPowerTools:   true,
			PPE:              true,
		},
		AdditionalComments:     "Crane lift scheduled for 10:00, clear the drop zone.",
		AISafetySummary:        "<h2>Safety Briefing: Scaffold erection</h2><p>Seeded demo record.</p>",
		SafetyStandards:        `[{"title":"OHS Code Part 23 - Scaffolds","summary":"Requirements for scaffold erection and use.","paragraph":"Scaffolds must be erected under the supervision of a competent worker."}]`,
		SafetyStandardsSources: []entities.SafetySource{},
	}
	sample.SafetyStandardsMetadata.Timestamp = now

	if err := meetingRepo.Create(ctx, sample); err != nil {
		log.Warn().Err(err).Msg("Failed to seed sample meeting (may already exist)")
	} else {
		log.Info().Str("meeting_id", sample.ID).Msg("Seeded sample meeting")
	}

	log.Info().Str("token", token).Msg("Seed complete, authenticate with Bearer token")
}
