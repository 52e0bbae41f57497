package controller

import (
	"doc-ingestion-be/internal/dto"
	"doc-ingestion-be/internal/pkg/serverutils"
	"doc-ingestion-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	retrievalService service.IRetrievalService
}

func NewSearchController(retrievalService service.IRetrievalService) ISearchController {
	return &searchController{
		retrievalService: retrievalService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search/v1")
	h.Post("", c.Search)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.retrievalService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search chunks", res))
}
