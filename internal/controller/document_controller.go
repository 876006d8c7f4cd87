package controller

import (
	"errors"

	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/pkg/serverutils"
	"rfp-analysis-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError translates domain sentinels into HTTP status codes.
// Anything unrecognized falls through to the error middleware.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrIndexNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProtectedIndex):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStaleIndex):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
	Cleanup(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Post("upload", c.Upload)
	h.Post("clear", c.Clear)
	h.Delete("session/:session_id", c.Cleanup)
}

func (c *documentController) Upload(ctx *fiber.Ctx) error {
	var req dto.UploadDocumentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Upload(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success upload document", res))
}

func (c *documentController) Clear(ctx *fiber.Ctx) error {
	var req dto.ClearDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.documentService.Clear(ctx.Context(), req.SessionID)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear session documents", res))
}

func (c *documentController) Cleanup(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("session_id")
	if sessionID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_id is required")
	}

	if err := c.documentService.Cleanup(ctx.Context(), sessionID); err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success cleanup session", fiber.Map{
		"session_id": sessionID,
	}))
}
