package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/coursedesk/internal/api/dto"
	"github.com/campuskit/coursedesk/internal/auth"
	"github.com/campuskit/coursedesk/internal/domain"
	"github.com/campuskit/coursedesk/internal/service"
	apperrors "github.com/campuskit/coursedesk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticketType, err := domain.ParseTicketType(req.Type)
	if err != nil {
		return apperrors.NewValidationError("unknown ticket type", map[string]any{"type": req.Type})
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": req.Category})
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}
	medium, err := mediumFromRequest(ticketType.MediumKind(), req.Medium)
	if err != nil {
		return err
	}

	ticket, err := h.service.CreateTicket(c.Context(), principal.User, service.CreateTicketInput{
		Type:        ticketType,
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Priority:    priority,
		CourseID:    req.CourseID,
		Medium:      medium,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	ticketID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	ticket, medium, comments, err := h.service.GetTicket(c.Context(), principal.User, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, medium, comments)})
}

// Update handles PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	ticketID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.EditTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return apperrors.NewValidationError("unknown category", map[string]any{"category": req.Category})
	}
	priority, err := domain.ParsePriority(req.Priority)
	if err != nil {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": req.Priority})
	}

	ticket, err := h.service.EditTicket(c.Context(), principal.User, ticketID, service.EditTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Priority:    priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ChangeStatus handles POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	ticketID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.StatusChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	event, err := domain.ParseStatusEvent(req.Event)
	if err != nil {
		return apperrors.NewValidationError("unknown status event", map[string]any{"event": req.Event})
	}

	ticket, err := h.service.ChangeStatus(c.Context(), principal.User, ticketID, event)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment handles POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	ticketID, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.AddComment(c.Context(), principal.User, ticketID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// Search handles GET /tickets. Criteria come as query parameters; the
// caller's visibility scope is applied by the service on top of them.
func (h *TicketsHandler) Search(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewAuthError("authentication required")
	}
	criteria, err := parseSearchQuery(c)
	if err != nil {
		return err
	}

	tickets, err := h.service.Search(c.Context(), principal.User, criteria)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseSearchQuery(c *fiber.Ctx) (service.SearchCriteria, error) {
	criteria := service.SearchCriteria{}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError("unknown status", map[string]any{"status": raw})
		}
		criteria.Status = &status
	}
	if raw := c.Query("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError("unknown category", map[string]any{"category": raw})
		}
		criteria.Category = &category
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return criteria, apperrors.NewValidationError("unknown priority", map[string]any{"priority": raw})
		}
		criteria.Priority = &priority
	}
	if raw := c.Query("course_id"); raw != "" {
		courseID, err := parseID(raw)
		if err != nil {
			return criteria, err
		}
		criteria.CourseID = &courseID
	}
	if raw := strings.TrimSpace(c.Query("q")); raw != "" {
		criteria.Search = &raw
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)
	criteria.Offset = (page - 1) * pageSize
	criteria.Limit = pageSize
	return criteria, nil
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func mediumFromRequest(kind domain.MediumKind, req dto.MediumRequest) (domain.Medium, error) {
	switch kind {
	case domain.MediumText:
		return domain.TextMedium{Page: req.Page, Line: req.Line}, nil
	case domain.MediumRecording:
		timecode, err := domain.ParseTimecode(req.Time)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid timecode, expected HH:MM:SS", map[string]any{"time": req.Time})
		}
		return domain.RecordingMedium{Time: timecode}, nil
	case domain.MediumInteractive:
		url := strings.TrimSpace(req.URL)
		if url == "" {
			return nil, apperrors.NewValidationError("url required", nil)
		}
		return domain.InteractiveMedium{URL: url}, nil
	case domain.MediumQuestionnaire:
		return domain.QuestionnaireMedium{Question: req.Question, Answer: req.Answer}, nil
	default:
		return nil, apperrors.NewValidationError("unknown medium kind", map[string]any{"kind": kind.String()})
	}
}

func mediumResponse(medium domain.Medium) dto.MediumResponse {
	resp := dto.MediumResponse{Kind: medium.Kind().String()}
	switch m := medium.(type) {
	case domain.TextMedium:
		resp.Page = &m.Page
		resp.Line = &m.Line
	case domain.RecordingMedium:
		resp.Time = m.Time.String()
	case domain.InteractiveMedium:
		resp.URL = m.URL
	case domain.QuestionnaireMedium:
		resp.Question = &m.Question
		resp.Answer = m.Answer
	}
	return resp
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        ticket.ID,
		Type:      ticket.Type.String(),
		Title:     ticket.Title,
		Category:  ticket.Category.String(),
		Priority:  ticket.Priority.String(),
		Status:    ticket.Status.String(),
		CourseID:  ticket.CourseID,
		CreatorID: ticket.CreatorID,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, medium domain.Medium, comments []domain.Comment) dto.TicketDetailResponse {
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Type:        ticket.Type.String(),
		Title:       ticket.Title,
		Description: ticket.Description,
		Category:    ticket.Category.String(),
		Priority:    ticket.Priority.String(),
		Status:      ticket.Status.String(),
		CourseID:    ticket.CourseID,
		CreatorID:   ticket.CreatorID,
		Medium:      mediumResponse(medium),
		Comments:    items,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Message:   comment.Message,
		CreatedAt: comment.CreatedAt,
	}
}
