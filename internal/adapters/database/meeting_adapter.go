package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/repositories"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

const meetingsTable = "toolbox_meetings"

var meetingColumns = []any{
	"id", "user_id", "created_at", "updated_at",
	"job_title", "job_description", "company", "site_address", "date", "time",
	"supervisor_name", "supervisor_phone", "emergency_site_number",
	"weather_conditions", "temperature", "road_conditions", "lease_conditions",
	"hazards", "additional_comments",
	"ai_safety_summary", "safety_standards", "safety_standards_sources", "safety_standards_metadata",
}

// MeetingAdapter implements MeetingRepository on Postgres. The hazard flag
// set, citation sources and provider metadata are stored as jsonb.
type MeetingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewMeetingAdapter creates a new meeting adapter.
func NewMeetingAdapter(client *postgres.Client) repositories.MeetingRepository {
	return &MeetingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a meeting record.
func (a *MeetingAdapter) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return apperrors.NewValidationError("meeting is required")
	}

	hazardsRaw, err := json.Marshal(meeting.Hazards)
	if err != nil {
		return apperrors.NewInternalError("failed to encode hazards", err)
	}
	sourcesRaw, err := json.Marshal(meeting.SafetyStandardsSources)
	if err != nil {
		return apperrors.NewInternalError("failed to encode safety standard sources", err)
	}
	metadataRaw, err := json.Marshal(meeting.SafetyStandardsMetadata)
	if err != nil {
		return apperrors.NewInternalError("failed to encode safety standard metadata", err)
	}

	record := goqu.Record{
		"id":                        meeting.ID,
		"user_id":                   meeting.UserID,
		"created_at":                meeting.CreatedAt,
		"updated_at":                meeting.UpdatedAt,
		"job_title":                 meeting.JobTitle,
		"job_description":           meeting.JobDescription,
		"company":                   meeting.Company,
		"site_address":              meeting.SiteAddress,
		"date":                      meeting.Date,
		"time":                      meeting.Time,
		"supervisor_name":           meeting.SupervisorName,
		"supervisor_phone":          meeting.SupervisorPhone,
		"emergency_site_number":     meeting.EmergencySiteNumber,
		"weather_conditions":        meeting.WeatherConditions,
		"temperature":               meeting.Temperature,
		"road_conditions":           meeting.RoadConditions,
		"lease_conditions":          meeting.LeaseConditions,
		"hazards":                   hazardsRaw,
		"additional_comments":       meeting.AdditionalComments,
		"ai_safety_summary":         meeting.AISafetySummary,
		"safety_standards":          meeting.SafetyStandards,
		"safety_standards_sources":  sourcesRaw,
		"safety_standards_metadata": metadataRaw,
	}

	query, args, err := a.db.Insert(meetingsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build meeting insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create meeting", err)
	}

	return nil
}

// GetByIDAndOwner retrieves a meeting scoped to its owner. A record owned by
// someone else is indistinguishable from a missing one.
func (a *MeetingAdapter) GetByIDAndOwner(ctx context.Context, id, userID string) (*entities.Meeting, error) {
	query, args, err := a.db.Select(meetingColumns...).
		From(meetingsTable).
		Where(goqu.Ex{"id": id, "user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build meeting query", err)
	}

	meeting, err := scanMeeting(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("meeting with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get meeting", err)
	}

	return meeting, nil
}

// ListByOwner retrieves one page of the owner's meetings newest-first, plus
// the exact total count.
func (a *MeetingAdapter) ListByOwner(ctx context.Context, userID string, filter repositories.MeetingFilter) ([]*entities.Meeting, int, error) {
	countQuery, countArgs, err := a.db.Select(goqu.COUNT("*")).
		From(meetingsTable).
		Where(goqu.Ex{"user_id": userID}).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build meeting count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count meetings", err)
	}

	ds := a.db.Select(meetingColumns...).
		From(meetingsTable).
		Where(goqu.Ex{"user_id": userID}).
		Order(goqu.I("created_at").Desc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build meeting list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list meetings", err)
	}
	defer rows.Close()

	meetings := []*entities.Meeting{}
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan meeting", err)
		}
		meetings = append(meetings, meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("error iterating meetings", err)
	}

	return meetings, total, nil
}

// UpdateSummary updates the ai_safety_summary of one owned record.
func (a *MeetingAdapter) UpdateSummary(ctx context.Context, id, userID, summary string) error {
	query, args, err := a.db.Update(meetingsTable).
		Set(goqu.Record{
			"ai_safety_summary": summary,
			"updated_at":        time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id, "user_id": userID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build summary update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update meeting summary", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("meeting with id %s not found", id))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*entities.Meeting, error) {
	meeting := &entities.Meeting{}
	var hazardsRaw, sourcesRaw, metadataRaw []byte
	var summary, standards sql.NullString

	err := row.Scan(
		&meeting.ID,
		&meeting.UserID,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
		&meeting.JobTitle,
		&meeting.JobDescription,
		&meeting.Company,
		&meeting.SiteAddress,
		&meeting.Date,
		&meeting.Time,
		&meeting.SupervisorName,
		&meeting.SupervisorPhone,
		&meeting.EmergencySiteNumber,
		&meeting.WeatherConditions,
		&meeting.Temperature,
		&meeting.RoadConditions,
		&meeting.LeaseConditions,
		&hazardsRaw,
		&meeting.AdditionalComments,
		&summary,
		&standards,
		&sourcesRaw,
		&metadataRaw,
	)
	if err != nil {
		return nil, err
	}

	// Older records may predate the enrichment fields.
	meeting.AISafetySummary = summary.String
	meeting.SafetyStandards = standards.String

	if len(hazardsRaw) > 0 {
		if err := json.Unmarshal(hazardsRaw, &meeting.Hazards); err != nil {
			return nil, fmt.Errorf("failed to decode hazards: %w", err)
		}
	}
	if len(sourcesRaw) > 0 {
		if err := json.Unmarshal(sourcesRaw, &meeting.SafetyStandardsSources); err != nil {
			return nil, fmt.Errorf("failed to decode safety standards sources: %w", err)
		}
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &meeting.SafetyStandardsMetadata); err != nil {
			return nil, fmt.Errorf("failed to decode safety standards metadata: %w", err)
		}
	}

	return meeting, nil
}
