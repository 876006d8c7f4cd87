package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/pkg/serverutils"
	"rfp-analysis-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
}

type analysisController struct {
	analysisService service.IAnalysisService
}

func NewAnalysisController(analysisService service.IAnalysisService) IAnalysisController {
	return &analysisController{
		analysisService: analysisService,
	}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analysis/v1")
	h.Post("analyze", c.Analyze)
}

// Analyze streams orchestration events as server-sent events. The
// stream always ends with a complete or error event; transport
// failures mid-stream cancel the run.
func (c *analysisController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// The run outlives the handler, so it gets its own context tied
	// to the stream writer's lifetime rather than the request's.
	runCtx, cancel := context.WithCancel(context.Background())

	events, err := c.analysisService.Analyze(runCtx, req.SessionID, req.Questions)
	if err != nil {
		cancel()
		return mapServiceError(err)
	}

	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for evt := range events {
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				break
			}
			if err := w.Flush(); err != nil {
				// Client went away; stop the run and drain.
				cancel()
				for range events {
				}
				break
			}
		}
	}))

	return nil
}
