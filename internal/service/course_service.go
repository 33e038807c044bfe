package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/repository"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// CourseService manages the course registry. All mutations are admin only;
// the ticket engine consults the registry for authorship and routing.
type CourseService struct {
	courses repository.CourseRepository
	users   repository.UserRepository
}

// NewCourseService constructs the service.
func NewCourseService(courses repository.CourseRepository, users repository.UserRepository) *CourseService {
	return &CourseService{courses: courses, users: users}
}

// CourseInput describes course creation and edit payloads.
type CourseInput struct {
	Code     string
	Title    string
	AuthorID int64
	TutorID  int64
}

// CreateCourse registers a course. The author must hold author rank, the
// tutor at least tutor rank.
func (s *CourseService) CreateCourse(ctx context.Context, actor *domain.User, input CourseInput) (*domain.Course, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("admin rank required")
	}
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	course := &domain.Course{
		Code:     input.Code,
		Title:    input.Title,
		AuthorID: input.AuthorID,
		TutorID:  input.TutorID,
		Active:   true,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// EditCourse updates course fields. Admin only.
func (s *CourseService) EditCourse(ctx context.Context, actor *domain.User, courseID int64, input CourseInput) (*domain.Course, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("admin rank required")
	}
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, &input); err != nil {
		return nil, err
	}

	course.Code = input.Code
	course.Title = input.Title
	course.AuthorID = input.AuthorID
	course.TutorID = input.TutorID
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// SetActive enables or disables a course. A disabled course is hidden from
// ticket creation and listing; existing tickets are untouched.
func (s *CourseService) SetActive(ctx context.Context, actor *domain.User, courseID int64, active bool) (*domain.Course, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("admin rank required")
	}
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	course.Active = active
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// ListCourses returns every course. Admin only.
func (s *CourseService) ListCourses(ctx context.Context, actor *domain.User) ([]domain.Course, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewPermissionError("admin rank required")
	}
	return s.courses.List(ctx)
}

// ListActiveCourses returns the courses available for ticket creation.
func (s *CourseService) ListActiveCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courses.ListActive(ctx)
}

// AuthorOf returns the author user id of the course.
func (s *CourseService) AuthorOf(ctx context.Context, courseID int64) (int64, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return course.AuthorID, nil
}

// TutorOf returns the tutor user id of the course.
func (s *CourseService) TutorOf(ctx context.Context, courseID int64) (int64, error) {
	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return course.TutorID, nil
}

func (s *CourseService) validateInput(ctx context.Context, input *CourseInput) error {
	input.Code = strings.TrimSpace(input.Code)
	input.Title = strings.TrimSpace(input.Title)
	if input.Code == "" || input.Title == "" {
		return apperrors.NewValidationError("code and title required", nil)
	}

	author, err := s.getUserRef(ctx, input.AuthorID)
	if err != nil {
		return err
	}
	if !author.Role.HasRank(domain.RoleAuthor) {
		return apperrors.NewValidationError("course author must hold author rank", map[string]any{
			"user_id": author.ID,
			"role":    author.Role.String(),
		})
	}

	tutor, err := s.getUserRef(ctx, input.TutorID)
	if err != nil {
		return err
	}
	if !tutor.Role.HasRank(domain.RoleTutor) {
		return apperrors.NewValidationError("course tutor must hold at least tutor rank", map[string]any{
			"user_id": tutor.ID,
			"role":    tutor.Role.String(),
		})
	}
	return nil
}

func (s *CourseService) getCourse(ctx context.Context, id int64) (*domain.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("course", map[string]any{"id": id})
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) getUserRef(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("referenced user does not exist", map[string]any{"id": id})
		}
		return nil, err
	}
	return user, nil
}
