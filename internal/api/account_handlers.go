package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/model"
)

type accountRequest struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initial_balance"`
}

func (r *accountRequest) toLedger() (ledger.AccountRequest, error) {
	req := ledger.AccountRequest{
		Name:     r.Name,
		Type:     model.AccountType(r.Type),
		Currency: r.Currency,
	}
	if r.InitialBalance != "" {
		balance, err := model.ParseMoney(r.InitialBalance)
		if err != nil {
			return ledger.AccountRequest{}, err
		}
		req.InitialBalance = balance
	}
	return req, nil
}

func (s *Server) handleCreateAccount(c *fiber.Ctx) error {
	var body accountRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req, err := body.toLedger()
	if err != nil {
		return respondError(c, err)
	}

	account, err := s.coordinator.CreateAccount(c.UserContext(), auth.UserFromCtx(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAccountResponse(account))
}

func (s *Server) handleListAccounts(c *fiber.Ctx) error {
	accounts, err := s.coordinator.ListAccounts(c.UserContext(), auth.UserFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}

	out := make([]accountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, toAccountResponse(&accounts[i]))
	}
	return c.JSON(out)
}

func (s *Server) handleGetAccount(c *fiber.Ctx) error {
	account, err := s.coordinator.GetAccount(c.UserContext(), auth.UserFromCtx(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAccountResponse(account))
}

func (s *Server) handleUpdateAccount(c *fiber.Ctx) error {
	var body accountRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req, err := body.toLedger()
	if err != nil {
		return respondError(c, err)
	}

	account, err := s.coordinator.UpdateAccount(c.UserContext(), auth.UserFromCtx(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toAccountResponse(account))
}

func (s *Server) handleDeleteAccount(c *fiber.Ctx) error {
	if err := s.coordinator.DeleteAccount(c.UserContext(), auth.UserFromCtx(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
