package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx/types"
)

// StudentStatusActive is the status every newly enrolled student starts with.
const StudentStatusActive = "active"

// DefaultProgressPercentage applies when a student has no recorded progress.
const DefaultProgressPercentage = 0

// StudentRow is one children row joined with its primary therapist. Columns
// the table guarantees are still nullable here so a damaged row surfaces as a
// missing field instead of a scan failure.
type StudentRow struct {
	ID                 *int64             `db:"id"`
	FirstName          *string            `db:"first_name"`
	LastName           *string            `db:"last_name"`
	DateOfBirth        *string            `db:"date_of_birth"`
	EnrollmentDate     *string            `db:"enrollment_date"`
	Diagnosis          *string            `db:"diagnosis"`
	Status             *string            `db:"status"`
	PrimaryTherapistID *int64             `db:"primary_therapist_id"`
	ProfileDetails     ProfileDetails     `db:"profile_details"`
	MedicalDiagnosis   *string            `db:"medical_diagnosis"`
	AssessmentDetails  types.NullJSONText `db:"assessment_details"`
	DriveURL           *string            `db:"drive_url"`
	PriorDiagnosis     *bool              `db:"prior_diagnosis"`

	TherapistID        *int64  `db:"therapist_id"`
	TherapistFirstName *string `db:"therapist_first_name"`
	TherapistLastName  *string `db:"therapist_last_name"`
	TherapistEmail     *string `db:"therapist_email"`
}

// TherapistRef is the joined primary therapist of a student.
type TherapistRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Therapist returns the joined therapist, or nil when the join matched nothing.
func (r StudentRow) Therapist() *TherapistRef {
	if r.TherapistID == nil {
		return nil
	}
	return &TherapistRef{
		ID:        *r.TherapistID,
		FirstName: deref(r.TherapistFirstName),
		LastName:  deref(r.TherapistLastName),
		Email:     deref(r.TherapistEmail),
	}
}

// NewStudent is the insert payload for a children row.
type NewStudent struct {
	FirstName          string             `db:"first_name"`
	LastName           string             `db:"last_name"`
	DateOfBirth        string             `db:"date_of_birth"`
	EnrollmentDate     string             `db:"enrollment_date"`
	Diagnosis          *string            `db:"diagnosis"`
	Status             string             `db:"status"`
	PrimaryTherapistID int64              `db:"primary_therapist_id"`
	MedicalDiagnosis   *string            `db:"medical_diagnosis"`
	DriveURL           *string            `db:"drive_url"`
	PriorDiagnosis     bool               `db:"prior_diagnosis"`
	AssessmentDetails  types.NullJSONText `db:"assessment_details"`
	ProfileDetails     ProfileDetails     `db:"profile_details"`
}

// Recognised profile_details keys.
const (
	ProfileKeyAge                = "age"
	ProfileKeyGoals              = "goals"
	ProfileKeyProgressPercentage = "progress_percentage"
	ProfileKeyPhotoURL           = "photo_url"
	ProfileKeyNextSession        = "next_session"
	ProfileKeyProfileInfo        = "profile_info"
	ProfileKeyEnrollmentNotes    = "enrollment_notes"
)

// ProfileDetails is the open profile_details document stored as JSONB.
// Accessors never fail on absent or mistyped keys.
type ProfileDetails map[string]interface{}

// Goals returns the goal list, skipping non-string entries.
func (p ProfileDetails) Goals() []string {
	switch v := p[ProfileKeyGoals].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		goals := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				goals = append(goals, s)
			}
		}
		return goals
	}
	return nil
}

// ProgressPercentage returns the recorded progress when present and numeric.
func (p ProfileDetails) ProgressPercentage() (int, bool) {
	switch v := p[ProfileKeyProgressPercentage].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// PhotoURL returns photo_url when it is a non-empty string.
func (p ProfileDetails) PhotoURL() *string {
	return p.stringValue(ProfileKeyPhotoURL)
}

// NextSession returns next_session when it is a non-empty string.
func (p ProfileDetails) NextSession() *string {
	return p.stringValue(ProfileKeyNextSession)
}

// ProfileInfo returns the nested profile_info document, if any.
func (p ProfileDetails) ProfileInfo() map[string]interface{} {
	if info, ok := p[ProfileKeyProfileInfo].(map[string]interface{}); ok {
		return info
	}
	return nil
}

func (p ProfileDetails) stringValue(key string) *string {
	if s, ok := p[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

// Value marshals the document for persistence.
func (p ProfileDetails) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(map[string]interface{}(p))
	if err != nil {
		return nil, fmt.Errorf("marshal profile details: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload. NULL scans as an empty document.
func (p *ProfileDetails) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*p = ProfileDetails{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ProfileDetails", value)
	}
	doc := ProfileDetails{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("unmarshal profile details: %w", err)
		}
	}
	if doc == nil {
		doc = ProfileDetails{}
	}
	*p = doc
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
