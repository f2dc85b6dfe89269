package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/therapy-students-api/internal/dto"
	"github.com/noah-isme/therapy-students-api/internal/service"
	appErrors "github.com/noah-isme/therapy-students-api/pkg/errors"
	"github.com/noah-isme/therapy-students-api/pkg/export"
	"github.com/noah-isme/therapy-students-api/pkg/response"
)

type studentService interface {
	ListAll(ctx context.Context) ([]dto.StudentView, error)
	GetByID(ctx context.Context, id int64) (*dto.StudentView, error)
	ListByTherapist(ctx context.Context, therapistID int64) ([]dto.StudentView, error)
	ListTempByTherapist(ctx context.Context, therapistID int64) ([]dto.StudentView, error)
	Enroll(ctx context.Context, req dto.EnrollmentRequest) (*dto.StudentView, error)
}

type caseloadExporter interface {
	Export(ctx context.Context, therapistID int64, format export.Format) (*service.CaseloadFile, error)
}

// StudentHandler exposes the student directory endpoints.
type StudentHandler struct {
	service  studentService
	exporter caseloadExporter
}

// NewStudentHandler builds a student handler. exporter may be nil when exports are disabled.
func NewStudentHandler(service studentService, exporter caseloadExporter) *StudentHandler {
	return &StudentHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List all students
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"count": len(students)})
}

// Get godoc
// @Summary Get a student
// @Tags Students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id must be an integer"))
		return
	}
	student, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if student == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "student not found"))
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Mine godoc
// @Summary List the caller's caseload
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /my-students [get]
func (h *StudentHandler) Mine(c *gin.Context) {
	h.caseload(c, h.service.ListByTherapist)
}

// Temporary godoc
// @Summary List the caller's students enrolled with a prior diagnosis
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /temp-students [get]
func (h *StudentHandler) Temporary(c *gin.Context) {
	h.caseload(c, h.service.ListTempByTherapist)
}

func (h *StudentHandler) caseload(c *gin.Context, fetch func(context.Context, int64) ([]dto.StudentView, error)) {
	therapistID, err := therapistFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := fetch(c.Request.Context(), therapistID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"count": len(students)})
}

// Enroll godoc
// @Summary Enroll a new student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.EnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enroll-student [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	if req.TherapistID == nil {
		if therapistID, err := therapistFromContext(c); err == nil {
			req.TherapistID = &therapistID
		}
	}
	student, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Export godoc
// @Summary Download the caller's caseload
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /my-students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()))
		return
	}
	therapistID, err := therapistFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), therapistID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
