package service

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/therapy-students-api/internal/dto"
	"github.com/noah-isme/therapy-students-api/internal/models"
	appErrors "github.com/noah-isme/therapy-students-api/pkg/errors"
)

const isoDate = "2006-01-02"

var defaultGoals = [...]string{
	"Improve communication skills",
	"Develop social interaction",
	"Enhance cognitive abilities",
}

// DefaultGoals returns a fresh copy of the goals assigned when a student has none.
func DefaultGoals() []string {
	goals := make([]string, len(defaultGoals))
	copy(goals, defaultGoals[:])
	return goals
}

func resolveGoals(goals []string) []string {
	if len(goals) == 0 {
		return DefaultGoals()
	}
	return append([]string(nil), goals...)
}

// ParseBirthDate parses an ISO calendar date.
func ParseBirthDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty birth date")
	}
	return time.Parse(isoDate, raw)
}

// CalculateAge returns whole years between dob and today, or nil when dob is
// absent or not a YYYY-MM-DD date. Nothing is logged.
func CalculateAge(dob *string, today time.Time) *int {
	return silentTransformer.Age(dob, today)
}

func ageAt(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// FormatTherapistName renders "First Last" when both names are present.
func FormatTherapistName(ref *models.TherapistRef) *string {
	if ref == nil || ref.FirstName == "" || ref.LastName == "" {
		return nil
	}
	name := ref.FirstName + " " + ref.LastName
	return &name
}

var silentTransformer = NewStudentTransformer(nil)

// StudentTransformer maps joined children rows onto StudentView.
type StudentTransformer struct {
	logger *zap.Logger
}

// NewStudentTransformer constructs a transformer.
func NewStudentTransformer(logger *zap.Logger) *StudentTransformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentTransformer{logger: logger}
}

// Transform builds the view of row as of today. withTherapist controls
// whether the joined therapist's display name is resolved. Only a missing
// required column is an error.
func (t *StudentTransformer) Transform(row models.StudentRow, withTherapist bool, today time.Time) (dto.StudentView, error) {
	switch {
	case row.ID == nil:
		return dto.StudentView{}, appErrors.Integrity("id")
	case row.FirstName == nil:
		return dto.StudentView{}, appErrors.Integrity("first_name")
	case row.LastName == nil:
		return dto.StudentView{}, appErrors.Integrity("last_name")
	case row.EnrollmentDate == nil:
		return dto.StudentView{}, appErrors.Integrity("enrollment_date")
	}

	profile := row.ProfileDetails
	if profile == nil {
		profile = models.ProfileDetails{}
	}

	view := dto.StudentView{
		ID:                 *row.ID,
		Name:               *row.FirstName + " " + *row.LastName,
		FirstName:          *row.FirstName,
		LastName:           *row.LastName,
		Age:                t.Age(row.DateOfBirth, today, zap.Int64("student_id", *row.ID)),
		DateOfBirth:        row.DateOfBirth,
		EnrollmentDate:     *row.EnrollmentDate,
		Diagnosis:          row.Diagnosis,
		Status:             models.StudentStatusActive,
		PrimaryTherapistID: row.PrimaryTherapistID,
		ProfileDetails:     profile,
		MedicalDiagnosis:   row.MedicalDiagnosis,
		DriveURL:           row.DriveURL,
		Photo:              profile.PhotoURL(),
		ProgressPercentage: models.DefaultProgressPercentage,
		NextSession:        profile.NextSession(),
		Goals:              resolveGoals(profile.Goals()),
	}
	if row.Status != nil {
		view.Status = *row.Status
	}
	if row.PriorDiagnosis != nil {
		view.PriorDiagnosis = *row.PriorDiagnosis
	}
	if progress, ok := profile.ProgressPercentage(); ok {
		view.ProgressPercentage = progress
	}
	if row.AssessmentDetails.Valid {
		view.AssessmentDetails = json.RawMessage(row.AssessmentDetails.JSONText)
	}
	if withTherapist {
		view.PrimaryTherapist = FormatTherapistName(row.Therapist())
	}
	return view, nil
}

// Age is CalculateAge that logs why no age could be derived: debug for a
// missing birth date, warn for a malformed one. fields identify the student.
func (t *StudentTransformer) Age(dob *string, today time.Time, fields ...zap.Field) *int {
	if dob == nil || *dob == "" {
		t.logger.Debug("student has no birth date", fields...)
		return nil
	}
	birth, err := ParseBirthDate(*dob)
	if err != nil {
		t.logger.Warn("invalid birth date format", append(fields, zap.String("date_of_birth", *dob), zap.Error(err))...)
		return nil
	}
	age := ageAt(birth, today)
	return &age
}
