package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/therapy-students-api/internal/models"
)

const studentsTable = "children c"

// StudentRepository reads and creates children rows.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student in backend order.
func (r *StudentRepository) List(ctx context.Context) ([]models.StudentRow, error) {
	query, args := buildStudentQuery(studentsTable)
	return r.selectRows(ctx, "list students", query, args)
}

// FindByID returns the student with id, or nil when none exists.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.StudentRow, error) {
	query, args := buildStudentQuery(studentsTable, eq("id", id))
	rows, err := r.selectRows(ctx, "find student", query, args)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// ListByTherapist returns students whose primary therapist is therapistID.
func (r *StudentRepository) ListByTherapist(ctx context.Context, therapistID int64) ([]models.StudentRow, error) {
	query, args := buildStudentQuery(studentsTable, eq("primary_therapist_id", therapistID))
	return r.selectRows(ctx, "list students by therapist", query, args)
}

// ListTempByTherapist returns the therapist's students enrolled with a prior diagnosis.
func (r *StudentRepository) ListTempByTherapist(ctx context.Context, therapistID int64) ([]models.StudentRow, error) {
	query, args := buildStudentQuery(studentsTable, eq("primary_therapist_id", therapistID), eq("prior_diagnosis", true))
	return r.selectRows(ctx, "list temp students by therapist", query, args)
}

// Create inserts a student and reads it back through the standard
// projection. A nil row with a nil error means the insert returned nothing.
func (r *StudentRepository) Create(ctx context.Context, student *models.NewStudent) (*models.StudentRow, error) {
	read, _ := buildStudentQuery("inserted c")
	query := `WITH inserted AS (
        INSERT INTO children (first_name, last_name, date_of_birth, enrollment_date, diagnosis, status, primary_therapist_id,
            medical_diagnosis, drive_url, prior_diagnosis, assessment_details, profile_details)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING *
    ) ` + read
	args := []interface{}{
		student.FirstName,
		student.LastName,
		student.DateOfBirth,
		student.EnrollmentDate,
		student.Diagnosis,
		student.Status,
		student.PrimaryTherapistID,
		student.MedicalDiagnosis,
		student.DriveURL,
		student.PriorDiagnosis,
		student.AssessmentDetails,
		student.ProfileDetails,
	}
	rows, err := r.selectRows(ctx, "create student", query, args)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *StudentRepository) selectRows(ctx context.Context, label, query string, args []interface{}) ([]models.StudentRow, error) {
	var rows []models.StudentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return rows, nil
}
