package controller

import (
	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/pkg/serverutils"
	"rfp-analysis-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRfpController interface {
	RegisterRoutes(r fiber.Router)
	Extract(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	Compare(ctx *fiber.Ctx) error
}

type rfpController struct {
	extractionService service.IExtractionService
	chatService       service.IChatService
	analysisService   service.IAnalysisService
	referenceIndex    string
}

func NewRfpController(
	extractionService service.IExtractionService,
	chatService service.IChatService,
	analysisService service.IAnalysisService,
	referenceIndex string,
) IRfpController {
	return &rfpController{
		extractionService: extractionService,
		chatService:       chatService,
		analysisService:   analysisService,
		referenceIndex:    referenceIndex,
	}
}

func (c *rfpController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rfp/v1")
	h.Post("extract", c.Extract)
	h.Post("chat", c.Chat)
	h.Post("compare", c.Compare)
}

func (c *rfpController) Extract(ctx *fiber.Ctx) error {
	var req dto.ExtractRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.extractionService.Extract(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success extract document data", res))
}

func (c *rfpController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Chat(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat with documents", res))
}

func (c *rfpController) Compare(ctx *fiber.Ctx) error {
	var req dto.CompareIndexesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	reference := req.ReferenceIndex
	if reference == "" {
		reference = c.referenceIndex
	}

	avg, count, err := c.analysisService.Compare(ctx.Context(), req.SessionID, reference)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success compare indexes", &dto.CompareIndexesResponse{
		SessionID:      req.SessionID,
		ReferenceIndex: reference,
		AverageScore:   avg,
		MatchCount:     count,
	}))
}
