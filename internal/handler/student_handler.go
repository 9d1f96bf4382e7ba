package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/browser"
	"github.com/noah-isme/sma-student-portal/internal/middleware"
	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/internal/service"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
	"github.com/noah-isme/sma-student-portal/pkg/response"
)

const (
	flashKey           = "flash"
	formTokenKeyPrefix = "editToken_"
	defaultUpdateFlash = "Student updated successfully"
	staleFormFlash     = "This form was already submitted or has expired, so nothing was saved."
)

// StudentHandler renders the roster views.
type StudentHandler struct {
	students *service.StudentService
	exports  *service.ExportService
	logger   *zap.Logger
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students *service.StudentService, exports *service.ExportService, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{students: students, exports: exports, logger: logger}
}

// Home godoc
// @Summary Student roster
// @Description Lists every student with domain labels; load failures are shown inline
// @Tags Students
// @Produce html
// @Success 200 {string} string "HTML page"
// @Success 302
// @Router / [get]
func (h *StudentHandler) Home(c *gin.Context) {
	ctx := c.Request.Context()
	b := middleware.BrowserFrom(c)

	roster := h.students.LoadRoster(ctx, b)
	if navigated(c) || ctx.Err() != nil {
		return
	}

	data := gin.H{"Roster": roster}
	if roster.Err != nil {
		data["Error"] = appErrors.FromError(roster.Err).Message
	}
	if notice := h.takeFlash(ctx, b); notice != "" {
		data["Notice"] = notice
	}
	response.HTML(c, http.StatusOK, "home.html", page(c, "Students", data))
}

// Edit godoc
// @Summary Edit form
// @Description Renders the edit form with the student's domain reduced to an identifier
// @Tags Students
// @Produce html
// @Param id path string true "Student id or roll number"
// @Success 200 {string} string "HTML page"
// @Failure 404 {string} string "HTML page"
// @Router /students/{id}/edit [get]
func (h *StudentHandler) Edit(c *gin.Context) {
	ctx := c.Request.Context()
	b := middleware.BrowserFrom(c)

	roster := h.students.LoadRoster(ctx, b)
	if navigated(c) || ctx.Err() != nil {
		return
	}
	if roster.Err != nil {
		h.renderError(c, roster.Err)
		return
	}

	key := c.Param("id")
	student, ok := models.FindStudent(roster.Students, key)
	if !ok {
		h.renderError(c, appErrors.Clone(appErrors.ErrNotFound, "Student not found"))
		return
	}

	form := models.NewStudentForm(student, roster.Domains)
	h.renderForm(c, http.StatusOK, key, form, roster.Domains, "")
}

// Update godoc
// @Summary Save student
// @Description Reconciles the edit form against loaded domains and sends the full student to the backend
// @Tags Students
// @Accept x-www-form-urlencoded
// @Produce html
// @Param id path string true "Student id or roll number"
// @Success 303
// @Failure 422 {string} string "HTML page"
// @Failure 502 {string} string "HTML page"
// @Router /students/{id} [post]
func (h *StudentHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	b := middleware.BrowserFrom(c)
	key := c.Param("id")

	var form models.StudentForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, key, form, nil, "Invalid form submission")
		return
	}

	if !h.consumeToken(ctx, b, key, form.Token) {
		h.logger.Info("ignoring replayed student update", zap.String("student", key))
		h.setFlash(ctx, b, staleFormFlash)
		response.Redirect(c, "/")
		return
	}

	domains, err := h.students.ListDomains(ctx, b)
	if navigated(c) || ctx.Err() != nil {
		return
	}
	if err != nil {
		h.renderForm(c, appErrors.FromError(err).Status, key, form, nil, "Domains could not be loaded, so the student was not saved. Please try again.")
		return
	}

	message, err := h.students.SubmitForm(ctx, b, form, domains)
	if navigated(c) || ctx.Err() != nil {
		return
	}
	if err != nil {
		status := appErrors.FromError(err).Status
		if errors.Is(err, appErrors.ErrValidation) {
			status = http.StatusUnprocessableEntity
		}
		h.renderForm(c, status, key, form, domains, appErrors.FromError(err).Message)
		return
	}

	if message == "" {
		message = defaultUpdateFlash
	}
	h.setFlash(ctx, b, message)
	middleware.MarkAudited(c, map[string]interface{}{"rollNo": form.RollNo})
	response.Redirect(c, "/")
}

// Domain godoc
// @Summary Domain details
// @Tags Domains
// @Produce html
// @Param program path string true "Domain id or program name"
// @Success 200 {string} string "HTML page"
// @Failure 404 {string} string "HTML page"
// @Router /domains/{program} [get]
func (h *StudentHandler) Domain(c *gin.Context) {
	ctx := c.Request.Context()

	domains, err := h.students.ListDomains(ctx, middleware.BrowserFrom(c))
	if navigated(c) || ctx.Err() != nil {
		return
	}
	if err != nil {
		h.renderError(c, err)
		return
	}

	param := c.Param("program")
	var (
		domain models.Domain
		ok     bool
	)
	if id, perr := strconv.ParseInt(param, 10, 64); perr == nil {
		domain, ok = models.FindDomainByID(domains, id)
	}
	if !ok {
		domain, ok = models.FindDomainByProgram(domains, param)
	}
	if !ok {
		h.renderError(c, appErrors.Clone(appErrors.ErrNotFound, "Domain not found"))
		return
	}

	response.HTML(c, http.StatusOK, "domain.html", page(c, domain.Program, gin.H{"Domain": domain}))
}

// Export godoc
// @Summary Export roster
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {string} string "HTML page"
// @Router /students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	roster := h.students.LoadRoster(ctx, middleware.BrowserFrom(c))
	if navigated(c) || ctx.Err() != nil {
		return
	}
	if roster.Err != nil {
		h.renderError(c, roster.Err)
		return
	}

	file, err := h.exports.Render(roster, c.Query("format"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *StudentHandler) renderForm(c *gin.Context, status int, key string, form models.StudentForm, domains []models.Domain, message string) {
	form.Token = h.issueToken(c.Request.Context(), middleware.BrowserFrom(c), key)
	data := gin.H{"Key": key, "Form": form, "Domains": domains}
	if message != "" {
		data["Error"] = message
	}
	response.HTML(c, status, "edit.html", page(c, "Edit student", data))
}

func (h *StudentHandler) renderError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	title := "Something went wrong"
	if appErr.Status == http.StatusNotFound {
		title = "Not found"
	}
	response.HTML(c, appErr.Status, "error.html", page(c, title, gin.H{"Message": appErr.Message}))
}

// issueToken stores a fresh one-shot submit token for the student's form.
func (h *StudentHandler) issueToken(ctx context.Context, b browser.Browser, key string) string {
	token := uuid.NewString()
	if err := b.Storage().Set(ctx, formTokenKeyPrefix+key, token); err != nil {
		h.logger.Warn("failed to store form token", zap.Error(err))
	}
	return token
}

// consumeToken accepts token once. Storage failures let the submit through.
func (h *StudentHandler) consumeToken(ctx context.Context, b browser.Browser, key, token string) bool {
	stored, ok, err := b.Storage().Get(ctx, formTokenKeyPrefix+key)
	if err != nil {
		h.logger.Warn("failed to read form token", zap.Error(err))
		return true
	}
	if !ok || token == "" || stored != token {
		return false
	}
	if err := b.Storage().Remove(ctx, formTokenKeyPrefix+key); err != nil {
		h.logger.Warn("failed to clear form token", zap.Error(err))
	}
	return true
}

func (h *StudentHandler) setFlash(ctx context.Context, b browser.Browser, notice string) {
	if err := b.Storage().Set(ctx, flashKey, notice); err != nil {
		h.logger.Warn("failed to store notice", zap.Error(err))
	}
}

func (h *StudentHandler) takeFlash(ctx context.Context, b browser.Browser) string {
	notice, ok, err := b.Storage().Get(ctx, flashKey)
	if err != nil || !ok {
		return ""
	}
	if err := b.Storage().Remove(ctx, flashKey); err != nil {
		h.logger.Warn("failed to clear notice", zap.Error(err))
	}
	return notice
}
