package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/therapy-students-api/internal/dto"
	"github.com/noah-isme/therapy-students-api/internal/models"
	appErrors "github.com/noah-isme/therapy-students-api/pkg/errors"
)

type mockStudentRepo struct {
	rows       []models.StudentRow
	err        error
	created    *models.NewStudent
	createNone bool
	lastID     int64
	nextID     int64
}

func (m *mockStudentRepo) List(ctx context.Context) ([]models.StudentRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (*models.StudentRow, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.rows {
		if m.rows[i].ID != nil && *m.rows[i].ID == id {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (m *mockStudentRepo) ListByTherapist(ctx context.Context, therapistID int64) ([]models.StudentRow, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.StudentRow
	for _, row := range m.rows {
		if row.PrimaryTherapistID != nil && *row.PrimaryTherapistID == therapistID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) ListTempByTherapist(ctx context.Context, therapistID int64) ([]models.StudentRow, error) {
	rows, err := m.ListByTherapist(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	var out []models.StudentRow
	for _, row := range rows {
		if row.PriorDiagnosis != nil && *row.PriorDiagnosis {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.NewStudent) (*models.StudentRow, error) {
	m.created = student
	if m.err != nil {
		return nil, m.err
	}
	if m.createNone {
		return nil, nil
	}
	enrolled := student.EnrollmentDate
	dob := student.DateOfBirth
	status := student.Status
	prior := student.PriorDiagnosis
	if m.nextID == 0 {
		m.nextID = 101
	}
	id := m.nextID
	m.nextID++
	row := models.StudentRow{
		ID:                 int64Ptr(id),
		FirstName:          strPtr(student.FirstName),
		LastName:           strPtr(student.LastName),
		DateOfBirth:        &dob,
		EnrollmentDate:     &enrolled,
		Diagnosis:          student.Diagnosis,
		Status:             &status,
		PrimaryTherapistID: int64Ptr(student.PrimaryTherapistID),
		ProfileDetails:     models.ProfileDetails{"progress_percentage": float64(80)},
		PriorDiagnosis:     &prior,
		AssessmentDetails:  student.AssessmentDetails,
	}
	m.rows = append(m.rows, row)
	return &row, nil
}

func newTestStudentService(repo *mockStudentRepo) *StudentService {
	return NewStudentService(StudentServiceParams{
		Repo:    repo,
		Metrics: NewMetricsService(),
		Logger:  zap.NewNop(),
		Now:     func() time.Time { return fixedToday },
	})
}

func rowWith(id int64, dob string, therapistID int64, prior bool) models.StudentRow {
	row := sampleRow()
	row.ID = int64Ptr(id)
	row.DateOfBirth = strPtr(dob)
	row.PrimaryTherapistID = int64Ptr(therapistID)
	row.TherapistID = int64Ptr(therapistID)
	row.PriorDiagnosis = boolPtr(prior)
	return row
}

func TestStudentServiceListAll(t *testing.T) {
	repo := &mockStudentRepo{rows: []models.StudentRow{
		rowWith(1, "2010-06-20", 7, false),
		rowWith(2, "2010-06-10", 8, true),
	}}
	views, err := newTestStudentService(repo).ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 13, *views[0].Age)
	assert.Equal(t, 14, *views[1].Age)
	assert.Equal(t, strPtr("Ana Lee"), views[0].PrimaryTherapist)
}

func TestStudentServiceListAllEmpty(t *testing.T) {
	views, err := newTestStudentService(&mockStudentRepo{}).ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, views)
	assert.Empty(t, views)
}

func TestStudentServiceBackendFailure(t *testing.T) {
	svc := newTestStudentService(&mockStudentRepo{err: sql.ErrConnDone})

	_, err := svc.ListAll(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.KindBackend))
	assert.ErrorIs(t, err, sql.ErrConnDone)

	_, err = svc.ListByTherapist(context.Background(), 7)
	assert.True(t, appErrors.Is(err, appErrors.KindBackend))
	assert.Contains(t, err.Error(), "therapist 7")
}

func TestStudentServiceIntegrityFailure(t *testing.T) {
	row := sampleRow()
	row.LastName = nil
	_, err := newTestStudentService(&mockStudentRepo{rows: []models.StudentRow{row}}).ListAll(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.KindIntegrity))
}

func TestStudentServiceGetByID(t *testing.T) {
	repo := &mockStudentRepo{rows: []models.StudentRow{rowWith(5, "2010-06-20", 7, false)}}
	svc := newTestStudentService(repo)

	first, err := svc.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, first)
	second, err := svc.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, strPtr("Ana Lee"), first.PrimaryTherapist)

	missing, err := svc.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, int64(999), repo.lastID)
}

func TestStudentServiceListByTherapist(t *testing.T) {
	repo := &mockStudentRepo{rows: []models.StudentRow{
		rowWith(1, "2010-06-20", 7, false),
		rowWith(2, "2011-01-01", 7, true),
		rowWith(3, "2012-01-01", 9, true),
	}}
	svc := newTestStudentService(repo)

	views, err := svc.ListByTherapist(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Nil(t, v.PrimaryTherapist)
		assert.Equal(t, int64Ptr(7), v.PrimaryTherapistID)
	}

	temp, err := svc.ListTempByTherapist(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, temp, 1)
	assert.Equal(t, int64(2), temp[0].ID)
	assert.True(t, temp[0].PriorDiagnosis)

	none, err := svc.ListTempByTherapist(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func enrollmentRequest() dto.EnrollmentRequest {
	return dto.EnrollmentRequest{
		FirstName:   "Leo",
		LastName:    "Park",
		DateOfBirth: "2010-06-10",
		TherapistID: int64Ptr(7),
		Diagnosis:   strPtr("ADHD"),
		AssessmentDetails: map[string]interface{}{
			"vb-mapp": map[string]interface{}{"items": map[string]interface{}{"mand": float64(2)}, "average": float64(2)},
		},
		ProfileInfo: map[string]interface{}{"school": "Oak"},
	}
}

func TestStudentServiceEnroll(t *testing.T) {
	repo := &mockStudentRepo{}
	view, err := newTestStudentService(repo).Enroll(context.Background(), enrollmentRequest())
	require.NoError(t, err)
	require.NotNil(t, view)

	assert.Equal(t, int64(101), view.ID)
	assert.Equal(t, "Leo Park", view.Name)
	assert.Equal(t, "2024-06-15", view.EnrollmentDate)
	assert.Equal(t, 0, view.ProgressPercentage)
	assert.Equal(t, DefaultGoals(), view.Goals)
	assert.Equal(t, 14, *view.Age)
	assert.Nil(t, view.PrimaryTherapist)

	require.NotNil(t, repo.created)
	assert.Equal(t, models.StudentStatusActive, repo.created.Status)
	assert.Equal(t, int64(7), repo.created.PrimaryTherapistID)
	assert.Equal(t, 14, repo.created.ProfileDetails[models.ProfileKeyAge])
	assert.Equal(t, 0, repo.created.ProfileDetails[models.ProfileKeyProgressPercentage])
	assert.Equal(t, "Enrolled on 2024-06-15", repo.created.ProfileDetails[models.ProfileKeyEnrollmentNotes])
	assert.Equal(t, map[string]interface{}{"school": "Oak"}, repo.created.ProfileDetails[models.ProfileKeyProfileInfo])
	assert.True(t, repo.created.AssessmentDetails.Valid)
}

func TestStudentServiceEnrollKeepsSuppliedGoals(t *testing.T) {
	req := enrollmentRequest()
	req.Goals = []string{"Read"}
	wrongAge := 3
	req.Age = &wrongAge
	repo := &mockStudentRepo{}

	view, err := newTestStudentService(repo).Enroll(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Read"}, view.Goals)
	assert.Equal(t, 14, repo.created.ProfileDetails[models.ProfileKeyAge])
}

func TestStudentServiceEnrollUnparsableBirthDate(t *testing.T) {
	req := enrollmentRequest()
	req.DateOfBirth = "sometime in 2010"
	age := 13
	req.Age = &age
	repo := &mockStudentRepo{}
	core, logs := observer.New(zap.WarnLevel)
	svc := NewStudentService(StudentServiceParams{
		Repo:   repo,
		Logger: zap.New(core),
		Now:    func() time.Time { return fixedToday },
	})

	view, err := svc.Enroll(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, view.Age)
	assert.Equal(t, 13, repo.created.ProfileDetails[models.ProfileKeyAge])

	warnings := logs.FilterMessage("invalid birth date format").All()
	require.NotEmpty(t, warnings)
	assert.Equal(t, "enrollment", warnings[0].ContextMap()["scope"])
	assert.Equal(t, "sometime in 2010", warnings[0].ContextMap()["date_of_birth"])
}

func TestStudentServiceEnrollEmptyInsert(t *testing.T) {
	view, err := newTestStudentService(&mockStudentRepo{createNone: true}).Enroll(context.Background(), enrollmentRequest())
	require.Error(t, err)
	assert.Nil(t, view)
	assert.True(t, appErrors.Is(err, appErrors.KindEmptyInsert))
}

func TestStudentServiceEnrollBackendFailure(t *testing.T) {
	view, err := newTestStudentService(&mockStudentRepo{err: sql.ErrConnDone}).Enroll(context.Background(), enrollmentRequest())
	require.Error(t, err)
	assert.Nil(t, view)
	assert.True(t, appErrors.Is(err, appErrors.KindBackend))
	assert.True(t, strings.HasPrefix(err.Error(), "failed to enroll new student"))
}

func TestStudentServiceEnrollMissingField(t *testing.T) {
	repo := &mockStudentRepo{}
	req := enrollmentRequest()
	req.FirstName = ""

	view, err := newTestStudentService(repo).Enroll(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, view)
	assert.True(t, appErrors.Is(err, appErrors.KindIntegrity))
	assert.Nil(t, repo.created)

	req = enrollmentRequest()
	req.TherapistID = nil
	_, err = newTestStudentService(repo).Enroll(context.Background(), req)
	assert.True(t, appErrors.Is(err, appErrors.KindIntegrity))
}

func TestStudentServiceEnrolledStudentJoinsCaseload(t *testing.T) {
	repo := &mockStudentRepo{rows: []models.StudentRow{rowWith(1, "2010-06-20", 9, false)}}
	svc := newTestStudentService(repo)

	regular, err := svc.Enroll(context.Background(), enrollmentRequest())
	require.NoError(t, err)
	withPrior := enrollmentRequest()
	withPrior.FirstName = "Ivy"
	withPrior.PriorDiagnosis = true
	temp, err := svc.Enroll(context.Background(), withPrior)
	require.NoError(t, err)

	caseload, err := svc.ListByTherapist(context.Background(), 7)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{regular.ID, temp.ID}, studentIDs(caseload))

	temporary, err := svc.ListTempByTherapist(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{temp.ID}, studentIDs(temporary))

	fetched, err := svc.GetByID(context.Background(), regular.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Leo Park", fetched.Name)
	assert.False(t, fetched.PriorDiagnosis)
}

func studentIDs(views []dto.StudentView) []int64 {
	ids := make([]int64, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}
