package service

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-student-portal/internal/browser"
	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/internal/repository"
	appErrors "github.com/noah-isme/sma-student-portal/pkg/errors"
)

type loginTrigger interface {
	RequireLogin(ctx context.Context, b browser.Browser) error
}

// StudentService reads and edits the roster through the backend.
type StudentService struct {
	backend   backendDoer
	auth      loginTrigger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(backend backendDoer, auth loginTrigger, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewFormValidator()
	}
	return &StudentService{backend: backend, auth: auth, validator: validate, logger: logger}
}

// ListStudents returns the full roster.
func (s *StudentService) ListStudents(ctx context.Context, b browser.Browser) ([]models.Student, error) {
	students, err := s.fetchStudents(ctx, b)
	return students, s.guard(ctx, b, err)
}

// ListDomains returns every academic domain.
func (s *StudentService) ListDomains(ctx context.Context, b browser.Browser) ([]models.Domain, error) {
	domains, err := s.fetchDomains(ctx, b)
	return domains, s.guard(ctx, b, err)
}

// UpdateStudent sends the full student object and returns the backend's confirmation text.
func (s *StudentService) UpdateStudent(ctx context.Context, b browser.Browser, student models.Student) (string, error) {
	resp, err := s.backend.Do(ctx, b.Credentials(), repository.BackendRequest{
		Method: http.MethodPut,
		Path:   "/api/editstudent",
		Body:   student,
	}, nil)
	if err := s.guard(ctx, b, err); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// SubmitForm validates the edit form, reconciles it against the loaded domains
// and sends the update.
func (s *StudentService) SubmitForm(ctx context.Context, b browser.Browser, form models.StudentForm, domains []models.Domain) (string, error) {
	if err := s.validator.Struct(form); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}
	student, err := form.ToStudent(domains)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return s.UpdateStudent(ctx, b, student)
}

// LoadRoster fetches students and domains concurrently. A domain failure only
// costs the labels; a student failure becomes the roster's inline error. Login
// is triggered at most once even when both calls are rejected.
func (s *StudentService) LoadRoster(ctx context.Context, b browser.Browser) models.Roster {
	var (
		roster     models.Roster
		domainsErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		students, err := s.fetchStudents(gctx, b)
		if err != nil {
			return err
		}
		roster.Students = students
		return nil
	})
	g.Go(func() error {
		domains, err := s.fetchDomains(gctx, b)
		if err != nil {
			domainsErr = err
			return nil
		}
		roster.Domains = domains
		return nil
	})
	studentsErr := g.Wait()

	if domainsErr != nil && !errors.Is(domainsErr, context.Canceled) {
		s.logger.Warn("failed to load domains", zap.Error(domainsErr))
	}

	switch {
	case errors.Is(studentsErr, appErrors.ErrNotAuthenticated), errors.Is(domainsErr, appErrors.ErrNotAuthenticated):
		roster.Err = s.guard(ctx, b, appErrors.ErrNotAuthenticated)
	case studentsErr != nil:
		s.logger.Warn("failed to load students", zap.Error(studentsErr))
		roster.Err = studentsErr
	}
	return roster
}

func (s *StudentService) fetchStudents(ctx context.Context, b browser.Browser) ([]models.Student, error) {
	var students []models.Student
	if _, err := s.backend.Do(ctx, b.Credentials(), repository.BackendRequest{
		Method: http.MethodGet,
		Path:   "/api/getstudentdetails",
	}, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (s *StudentService) fetchDomains(ctx context.Context, b browser.Browser) ([]models.Domain, error) {
	var domains []models.Domain
	if _, err := s.backend.Do(ctx, b.Credentials(), repository.BackendRequest{
		Method: http.MethodGet,
		Path:   "/api/domains",
	}, &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// guard triggers the login flow for rejected sessions and passes err through.
func (s *StudentService) guard(ctx context.Context, b browser.Browser, err error) error {
	if err == nil || !errors.Is(err, appErrors.ErrNotAuthenticated) {
		return err
	}
	if loginErr := s.auth.RequireLogin(ctx, b); loginErr != nil {
		s.logger.Error("failed to start login", zap.Error(loginErr))
	}
	return err
}

// NewFormValidator reports field errors by their form names.
func NewFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErrors.ErrValidation.Message
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "email":
			parts = append(parts, fe.Field()+" must be a valid email address")
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
