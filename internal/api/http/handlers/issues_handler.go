package handlers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/service"
)

// IssuesHandler serves /api/issues/:project. Every outcome of the issue engine,
// business errors included, is answered by the error middleware or here with JSON.
type IssuesHandler struct {
	service *service.IssueService
	logger  *zap.Logger
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService, logger *zap.Logger) *IssuesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssuesHandler{service: issueService, logger: logger}
}

// CreateIssue POST /api/issues/:project.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	payload := h.parsePayload(c, false)
	issue, err := h.service.CreateIssue(c.UserContext(), c.Params("project"), payload)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueResponse(issue))
}

// ListIssues GET /api/issues/:project.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	issues, err := h.service.ListIssues(c.UserContext(), c.Params("project"), c.Queries())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewIssueListResponse(issues))
}

// UpdateIssue PUT /api/issues/:project.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	payload := h.parsePayload(c, true)
	id, err := h.service.UpdateIssue(c.UserContext(), c.Params("project"), payload)
	if err != nil {
		return err
	}
	return c.JSON(dto.ResultResponse{Result: dto.ResultUpdated, ID: id})
}

// DeleteIssue DELETE /api/issues/:project.
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	payload := h.parsePayload(c, true)
	id, err := h.service.DeleteIssue(c.UserContext(), c.Params("project"), payload)
	if err != nil {
		return err
	}
	return c.JSON(dto.ResultResponse{Result: dto.ResultDeleted, ID: id})
}

// parsePayload decodes a JSON, URL-encoded or multipart body into a raw mapping.
// An undecodable body yields an empty mapping so validation reports what is missing.
// With queryFallback, query parameters fill keys the body did not carry.
func (h *IssuesHandler) parsePayload(c *fiber.Ctx, queryFallback bool) service.Payload {
	payload := service.Payload{}
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))

	switch {
	case len(c.Body()) == 0:
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		dec := json.NewDecoder(bytes.NewReader(c.Body()))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			h.logger.Debug("ignoring undecodable json body", zap.Error(err))
			payload = service.Payload{}
		}
	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			payload[string(key)] = string(value)
		})
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			h.logger.Debug("ignoring undecodable multipart body", zap.Error(err))
			break
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				payload[key] = values[0]
			}
		}
	}

	if queryFallback {
		c.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
			if _, ok := payload[string(key)]; !ok {
				payload[string(key)] = string(value)
			}
		})
	}
	return payload
}
