package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/therapy-students-api/internal/dto"
	"github.com/noah-isme/therapy-students-api/internal/models"
	appErrors "github.com/noah-isme/therapy-students-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.StudentRow, error)
	FindByID(ctx context.Context, id int64) (*models.StudentRow, error)
	ListByTherapist(ctx context.Context, therapistID int64) ([]models.StudentRow, error)
	ListTempByTherapist(ctx context.Context, therapistID int64) ([]models.StudentRow, error)
	Create(ctx context.Context, student *models.NewStudent) (*models.StudentRow, error)
}

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Repo      studentRepository
	Validator *validator.Validate
	Metrics   *MetricsService
	Logger    *zap.Logger
	Now       func() time.Time
}

// StudentService implements student retrieval and enrollment.
type StudentService struct {
	repo        studentRepository
	validator   *validator.Validate
	transformer *StudentTransformer
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(params StudentServiceParams) *StudentService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &StudentService{
		repo:        params.Repo,
		validator:   validate,
		transformer: NewStudentTransformer(logger),
		metrics:     params.Metrics,
		logger:      logger,
		now:         now,
	}
}

// ListAll returns every student with therapist names resolved.
func (s *StudentService) ListAll(ctx context.Context) ([]dto.StudentView, error) {
	return s.list(ctx, "all students", "students_list", true, func() ([]models.StudentRow, error) {
		return s.repo.List(ctx)
	})
}

// GetByID returns one student, or nil when no student has id.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*dto.StudentView, error) {
	scope := fmt.Sprintf("student %d", id)
	start := time.Now()
	row, err := s.repo.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("students_get", time.Since(start))
	if err != nil {
		return nil, s.fail("fetch", scope, err)
	}
	if row == nil {
		s.logger.Info("student not found", zap.Int64("student_id", id))
		return nil, nil
	}
	view, err := s.transformer.Transform(*row, true, s.now())
	if err != nil {
		return nil, s.fail("fetch", scope, err)
	}
	s.logger.Info("fetched student", zap.Int64("student_id", id))
	return &view, nil
}

// ListByTherapist returns the caseload of therapistID.
func (s *StudentService) ListByTherapist(ctx context.Context, therapistID int64) ([]dto.StudentView, error) {
	scope := fmt.Sprintf("students for therapist %d", therapistID)
	return s.list(ctx, scope, "students_by_therapist", false, func() ([]models.StudentRow, error) {
		return s.repo.ListByTherapist(ctx, therapistID)
	})
}

// ListTempByTherapist returns the therapistID caseload enrolled with a prior diagnosis.
func (s *StudentService) ListTempByTherapist(ctx context.Context, therapistID int64) ([]dto.StudentView, error) {
	scope := fmt.Sprintf("temporary students for therapist %d", therapistID)
	return s.list(ctx, scope, "temp_students_by_therapist", false, func() ([]models.StudentRow, error) {
		return s.repo.ListTempByTherapist(ctx, therapistID)
	})
}

func (s *StudentService) list(ctx context.Context, scope, metric string, withTherapist bool, fetch func() ([]models.StudentRow, error)) ([]dto.StudentView, error) {
	start := time.Now()
	rows, err := fetch()
	s.metrics.ObserveDBQuery(metric, time.Since(start))
	if err != nil {
		return nil, s.fail("fetch", scope, err)
	}
	views := make([]dto.StudentView, 0, len(rows))
	if len(rows) == 0 {
		s.logger.Info("no students found", zap.String("scope", scope))
		return views, nil
	}
	today := s.now()
	for _, row := range rows {
		view, err := s.transformer.Transform(row, withTherapist, today)
		if err != nil {
			return nil, s.fail("fetch", scope, err)
		}
		views = append(views, view)
	}
	s.logger.Info("fetched students", zap.String("scope", scope), zap.Int("count", len(views)))
	return views, nil
}

// Enroll creates a student and returns its view. It never returns a nil view
// without an error.
func (s *StudentService) Enroll(ctx context.Context, req dto.EnrollmentRequest) (*dto.StudentView, error) {
	const op, scope = "enroll", "new student"
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordEnrollment(false)
		return nil, s.fail(op, scope, missingField(err))
	}

	today := s.now()
	goals := resolveGoals(req.Goals)
	record, err := s.newStudent(req, goals, today)
	if err != nil {
		s.metrics.RecordEnrollment(false)
		return nil, s.fail(op, scope, err)
	}

	start := time.Now()
	row, err := s.repo.Create(ctx, record)
	s.metrics.ObserveDBQuery("students_create", time.Since(start))
	if err == nil && row == nil {
		err = appErrors.EmptyInsert("children")
	}
	if err != nil {
		s.metrics.RecordEnrollment(false)
		return nil, s.fail(op, scope, err)
	}

	view, err := s.transformer.Transform(*row, false, today)
	if err != nil {
		s.metrics.RecordEnrollment(false)
		return nil, s.fail(op, scope, err)
	}
	view.ProgressPercentage = 0
	view.Goals = goals
	view.EnrollmentDate = *row.EnrollmentDate

	s.metrics.RecordEnrollment(true)
	s.logger.Info("enrolled student", zap.Int64("student_id", view.ID), zap.String("name", view.Name), zap.Int64("therapist_id", record.PrimaryTherapistID))
	return &view, nil
}

func (s *StudentService) newStudent(req dto.EnrollmentRequest, goals []string, today time.Time) (*models.NewStudent, error) {
	enrolledOn := today.Format(isoDate)
	profile := models.ProfileDetails{
		models.ProfileKeyAge:                s.enrollmentAge(req, today),
		models.ProfileKeyGoals:              goals,
		models.ProfileKeyProgressPercentage: 0,
		models.ProfileKeyEnrollmentNotes:    "Enrolled on " + enrolledOn,
	}
	if len(req.ProfileInfo) > 0 {
		profile[models.ProfileKeyProfileInfo] = req.ProfileInfo
	}
	assessment, err := normalizeAssessment(req.AssessmentDetails)
	if err != nil {
		return nil, err
	}
	return &models.NewStudent{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		DateOfBirth:        req.DateOfBirth,
		EnrollmentDate:     enrolledOn,
		Diagnosis:          req.Diagnosis,
		Status:             models.StudentStatusActive,
		PrimaryTherapistID: *req.TherapistID,
		MedicalDiagnosis:   req.MedicalDiagnosis,
		DriveURL:           req.DriveURL,
		PriorDiagnosis:     req.PriorDiagnosis,
		AssessmentDetails:  assessment,
		ProfileDetails:     profile,
	}, nil
}

// enrollmentAge derives the stored age from the birth date, the same way
// reads do. A caller-supplied age only survives when the birth date does not
// parse.
func (s *StudentService) enrollmentAge(req dto.EnrollmentRequest, today time.Time) interface{} {
	derived := s.transformer.Age(&req.DateOfBirth, today, zap.String("scope", "enrollment"))
	switch {
	case derived == nil && req.Age == nil:
		return nil
	case derived == nil:
		return *req.Age
	}
	if req.Age != nil && *req.Age != *derived {
		s.logger.Warn("ignoring supplied age that disagrees with date of birth",
			zap.Int("supplied_age", *req.Age), zap.Int("derived_age", *derived), zap.String("date_of_birth", req.DateOfBirth))
	}
	return *derived
}

func (s *StudentService) fail(op, scope string, err error) error {
	normalized := appErrors.Normalize(op, scope, err)
	s.logger.Error(normalized.Message, zap.String("kind", string(normalized.Kind)), zap.Error(err))
	return normalized
}

func missingField(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		integrity := appErrors.Integrity(fieldErrs[0].Field())
		integrity.Err = err
		return integrity
	}
	return err
}
