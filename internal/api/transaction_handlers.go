package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

type transactionRequest struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	AccountID   string `json:"account_id"`
	CategoryID  string `json:"category_id"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

func (r *transactionRequest) toLedger() (ledger.TransactionRequest, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return ledger.TransactionRequest{}, err
	}
	amount, err := model.ParseMoney(r.Amount)
	if err != nil {
		return ledger.TransactionRequest{}, err
	}
	return ledger.TransactionRequest{
		Date:        date,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		Notes:       r.Notes,
		Type:        model.TransactionType(r.Type),
		Amount:      amount,
	}, nil
}

func (s *Server) handleCreateTransaction(c *fiber.Ctx) error {
	var body transactionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req, err := body.toLedger()
	if err != nil {
		return respondError(c, err)
	}

	txn, err := s.coordinator.CreateTransaction(c.UserContext(), auth.UserFromCtx(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(txn))
}

func (s *Server) handleListTransactions(c *fiber.Ctx) error {
	filter, err := parseTransactionFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	page, err := s.coordinator.ListTransactions(c.UserContext(), auth.UserFromCtx(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toPageResponse(page))
}

func parseTransactionFilter(c *fiber.Ctx) (service.TransactionFilter, error) {
	filter := service.TransactionFilter{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 20),
	}

	if q := c.Query("start_date"); q != "" {
		t, err := parseDate(q)
		if err != nil {
			return filter, err
		}
		filter.StartDate = &t
	}
	if q := c.Query("end_date"); q != "" {
		t, err := parseDate(q)
		if err != nil {
			return filter, err
		}
		filter.EndDate = &t
	}
	if q := c.Query("type"); q != "" {
		t := model.TransactionType(q)
		if !model.ValidTransactionType(t) {
			return filter, common.InvalidArgumentf("unknown transaction type %q", q)
		}
		filter.Type = &t
	}
	if q := c.Query("account_id"); q != "" {
		filter.AccountID = &q
	}
	if q := c.Query("category_id"); q != "" {
		filter.CategoryID = &q
	}
	return filter, nil
}

func (s *Server) handleGetTransaction(c *fiber.Ctx) error {
	txn, err := s.coordinator.GetTransaction(c.UserContext(), auth.UserFromCtx(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTransactionResponse(txn))
}

func (s *Server) handleUpdateTransaction(c *fiber.Ctx) error {
	var body transactionRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	req, err := body.toLedger()
	if err != nil {
		return respondError(c, err)
	}

	txn, err := s.coordinator.UpdateTransaction(c.UserContext(), auth.UserFromCtx(c), c.Params("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTransactionResponse(txn))
}

func (s *Server) handleDeleteTransaction(c *fiber.Ctx) error {
	if err := s.coordinator.DeleteTransaction(c.UserContext(), auth.UserFromCtx(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
