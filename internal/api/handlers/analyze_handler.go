package handlers

import (
	"strings"

	"agent-falcon/internal/apperror"
	"agent-falcon/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalyzeHandler struct {
	validator      *service.SchemaValidator
	analyzeService *service.AnalyzeService
	logger         *zap.Logger
}

func NewAnalyzeHandler(validator *service.SchemaValidator, analyzeService *service.AnalyzeService, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		validator:      validator,
		analyzeService: analyzeService,
		logger:         logger,
	}
}

// Analyze godoc
// @Summary Analyze spending
// @Description Validates the request, shapes it into agent input and returns the financial agent's answer
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Analysis request"
// @Security ApiKey
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} dto.ErrorEnvelope
// @Failure 401 {object} dto.ErrorEnvelope
// @Failure 404 {object} dto.ErrorEnvelope
// @Failure 413 {object} dto.ErrorEnvelope
// @Failure 415 {object} dto.ErrorEnvelope
// @Failure 429 {object} dto.ErrorEnvelope
// @Failure 500 {object} dto.ErrorEnvelope
// @Router /analyze [post]
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	if err := checkJSONBody(c); err != nil {
		return err
	}

	// raw bytes: BODY_LIMIT was enforced on exactly these
	req, err := h.validator.Validate(c.Request().Body())
	if err != nil {
		return err
	}

	h.logger.Debug("Analyze request accepted",
		zap.Int("transactions", len(req.Transactions)),
		zap.Bool("metadata", req.Metadata != nil),
	)

	resp, err := h.analyzeService.Analyze(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// checkJSONBody accepts only uncompressed application/json bodies. BODY_LIMIT
// counts the bytes on the wire.
func checkJSONBody(c *fiber.Ctx) error {
	if enc := strings.TrimSpace(c.Get(fiber.HeaderContentEncoding)); enc != "" && !strings.EqualFold(enc, "identity") {
		return apperror.UnsupportedMedia("Content-Encoding " + enc + " is not supported")
	}
	if !c.Is("json") {
		return apperror.UnsupportedMedia("Content-Type must be application/json")
	}
	return nil
}
