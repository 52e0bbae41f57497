package controller

import (
	"doc-ingestion-be/internal/pkg/serverutils"
	"doc-ingestion-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IJobController interface {
	RegisterRoutes(r fiber.Router)
	Show(ctx *fiber.Ctx) error
}

type jobController struct {
	statusService service.IStatusService
}

func NewJobController(statusService service.IStatusService) IJobController {
	return &jobController{
		statusService: statusService,
	}
}

func (c *jobController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/job/v1")
	h.Get(":id", c.Show)
}

func (c *jobController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid job id")
	}

	res, err := c.statusService.GetJob(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show job", res))
}
