package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/therapy-students-api/internal/dto"
	"github.com/noah-isme/therapy-students-api/pkg/export"
)

var caseloadHeaders = []string{"Name", "Age", "Date of Birth", "Enrolled", "Diagnosis", "Status", "Prior Diagnosis", "Progress", "Goals"}

type caseloadLister interface {
	ListByTherapist(ctx context.Context, therapistID int64) ([]dto.StudentView, error)
}

// CaseloadFile is a rendered caseload export.
type CaseloadFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CaseloadExporter renders a therapist's caseload as CSV or PDF.
type CaseloadExporter struct {
	students caseloadLister
	renderer *export.Renderer
	title    string
}

// NewCaseloadExporter constructs a CaseloadExporter.
func NewCaseloadExporter(students caseloadLister, renderer *export.Renderer, title string) *CaseloadExporter {
	if renderer == nil {
		renderer = export.NewRenderer()
	}
	if title == "" {
		title = "Caseload"
	}
	return &CaseloadExporter{students: students, renderer: renderer, title: title}
}

// Export renders the caseload of therapistID in format.
func (e *CaseloadExporter) Export(ctx context.Context, therapistID int64, format export.Format) (*CaseloadFile, error) {
	views, err := e.students.ListByTherapist(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	body, err := e.renderer.Render(format, caseloadDataset(views), fmt.Sprintf("%s - therapist %d", e.title, therapistID))
	if err != nil {
		return nil, fmt.Errorf("render caseload: %w", err)
	}
	return &CaseloadFile{
		Filename:    fmt.Sprintf("caseload-%d.%s", therapistID, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func caseloadDataset(views []dto.StudentView) export.Dataset {
	rows := make([]map[string]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, map[string]string{
			"Name":            v.Name,
			"Age":             optionalInt(v.Age),
			"Date of Birth":   optionalString(v.DateOfBirth),
			"Enrolled":        v.EnrollmentDate,
			"Diagnosis":       optionalString(v.Diagnosis),
			"Status":          v.Status,
			"Prior Diagnosis": strconv.FormatBool(v.PriorDiagnosis),
			"Progress":        strconv.Itoa(v.ProgressPercentage) + "%",
			"Goals":           strings.Join(v.Goals, "; "),
		})
	}
	return export.Dataset{Headers: caseloadHeaders, Rows: rows}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
