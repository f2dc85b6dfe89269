package dto

import (
	"encoding/json"

	"github.com/noah-isme/therapy-students-api/internal/models"
)

// StudentView is the frontend representation of a student, recomputed on
// every read.
type StudentView struct {
	ID                 int64                 `json:"id"`
	Name               string                `json:"name"`
	FirstName          string                `json:"firstName"`
	LastName           string                `json:"lastName"`
	Age                *int                  `json:"age"`
	DateOfBirth        *string               `json:"dateOfBirth"`
	EnrollmentDate     string                `json:"enrollmentDate"`
	Diagnosis          *string               `json:"diagnosis"`
	Status             string                `json:"status"`
	PrimaryTherapist   *string               `json:"primaryTherapist"`
	PrimaryTherapistID *int64                `json:"primaryTherapistId"`
	ProfileDetails     models.ProfileDetails `json:"profileDetails"`
	MedicalDiagnosis   *string               `json:"medicalDiagnosis"`
	AssessmentDetails  json.RawMessage       `json:"assessmentDetails"`
	DriveURL           *string               `json:"driveUrl"`
	PriorDiagnosis     bool                  `json:"priorDiagnosis"`
	Photo              *string               `json:"photo"`
	ProgressPercentage int                   `json:"progressPercentage"`
	NextSession        *string               `json:"nextSession"`
	Goals              []string              `json:"goals"`
}

// EnrollmentRequest is the payload for enrolling a new student. Only presence
// of the required fields is checked.
type EnrollmentRequest struct {
	FirstName         string                 `json:"firstName" validate:"required"`
	LastName          string                 `json:"lastName" validate:"required"`
	DateOfBirth       string                 `json:"dateOfBirth" validate:"required"`
	TherapistID       *int64                 `json:"therapistId" validate:"required"`
	Diagnosis         *string                `json:"diagnosis,omitempty"`
	MedicalDiagnosis  *string                `json:"medicalDiagnosis,omitempty"`
	PriorDiagnosis    bool                   `json:"priorDiagnosis"`
	DriveURL          *string                `json:"driveUrl,omitempty"`
	AssessmentDetails map[string]interface{} `json:"assessmentDetails,omitempty"`
	Goals             []string               `json:"goals,omitempty"`
	ProfileInfo       map[string]interface{} `json:"profileInfo,omitempty"`
	Age               *int                   `json:"age,omitempty"`
}
