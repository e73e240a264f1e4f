package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/model"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

func (s *Server) handleCreateCategory(c *fiber.Ctx) error {
	var body categoryRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	category, err := s.coordinator.CreateCategory(c.UserContext(), auth.UserFromCtx(c), ledger.CategoryRequest{
		Name:  body.Name,
		Color: body.Color,
		Type:  model.TransactionType(body.Type),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCategoryResponse(category))
}

func (s *Server) handleListCategories(c *fiber.Ctx) error {
	var typ *model.TransactionType
	if q := c.Query("type"); q != "" {
		t := model.TransactionType(q)
		if !model.ValidTransactionType(t) {
			return respondError(c, common.InvalidArgumentf("unknown transaction type %q", q))
		}
		typ = &t
	}

	categories, err := s.coordinator.ListCategories(c.UserContext(), auth.UserFromCtx(c), typ)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]categoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryResponse(&categories[i]))
	}
	return c.JSON(out)
}

func (s *Server) handleGetCategory(c *fiber.Ctx) error {
	category, err := s.coordinator.GetCategory(c.UserContext(), auth.UserFromCtx(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(c *fiber.Ctx) error {
	var body categoryRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	category, err := s.coordinator.UpdateCategory(c.UserContext(), auth.UserFromCtx(c), c.Params("id"), ledger.CategoryRequest{
		Name:  body.Name,
		Color: body.Color,
		Type:  model.TransactionType(body.Type),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(c *fiber.Ctx) error {
	if err := s.coordinator.DeleteCategory(c.UserContext(), auth.UserFromCtx(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
