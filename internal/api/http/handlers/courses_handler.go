package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/coursedesk/internal/api/dto"
	"github.com/campuskit/coursedesk/internal/auth"
	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/service"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// CoursesHandler exposes the course registry.
type CoursesHandler struct {
	courses *service.CourseService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courses *service.CourseService) *CoursesHandler {
	return &CoursesHandler{courses: courses}
}

// Create handles POST /admin/courses.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	var req dto.CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	course, err := h.courses.CreateCourse(c.Context(), principal.User, courseInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": courseResponse(course)})
}

// Update handles PUT /admin/courses/:id.
func (h *CoursesHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	courseID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	course, err := h.courses.EditCourse(c.Context(), principal.User, courseID, courseInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseResponse(course)})
}

// SetActive handles PATCH /admin/courses/:id/active. A disabled course no
// longer accepts new tickets; existing tickets stay reachable.
func (h *CoursesHandler) SetActive(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	courseID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	course, err := h.courses.SetActive(c.Context(), principal.User, courseID, req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseResponse(course)})
}

// ListAll handles GET /admin/courses.
func (h *CoursesHandler) ListAll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	courses, err := h.courses.ListCourses(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseResponses(courses)})
}

// ListActive handles GET /courses. The active courses a ticket can be raised
// against.
func (h *CoursesHandler) ListActive(c *fiber.Ctx) error {
	courses, err := h.courses.ListActiveCourses(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseResponses(courses)})
}

func courseInput(req dto.CourseRequest) service.CourseInput {
	return service.CourseInput{
		Code:     req.Code,
		Title:    req.Title,
		AuthorID: req.AuthorID,
		TutorID:  req.TutorID,
	}
}

func courseResponse(course *domain.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:        course.ID,
		Code:      course.Code,
		Title:     course.Title,
		AuthorID:  course.AuthorID,
		TutorID:   course.TutorID,
		Active:    course.Active,
		CreatedAt: course.CreatedAt,
	}
}

func courseResponses(courses []domain.Course) []dto.CourseResponse {
	items := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		items = append(items, courseResponse(&courses[i]))
	}
	return items
}
