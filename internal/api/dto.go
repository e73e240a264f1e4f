package api

import (
	"time"

	"github.com/tallyapp/tally/internal/common"
	"github.com/tallyapp/tally/internal/model"
	"github.com/tallyapp/tally/internal/service"
)

// Monetary amounts cross the wire as decimal strings ("123.45") so that
// clients never see float artifacts.

type userResponse struct {
	ID        string             `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Email     string             `json:"email"`
	Settings  model.UserSettings `json:"settings"`
	CreatedAt time.Time          `json:"created_at"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Settings:  u.Settings,
		CreatedAt: u.CreatedAt,
	}
}

type accountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountResponse(a *model.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Currency:  a.Currency,
		Balance:   a.Balance.String(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type categoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCategoryResponse(cat *model.Category) categoryResponse {
	return categoryResponse{
		ID:        cat.ID,
		Name:      cat.Name,
		Type:      string(cat.Type),
		Color:     cat.Color,
		CreatedAt: cat.CreatedAt,
		UpdatedAt: cat.UpdatedAt,
	}
}

type transactionResponse struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	AccountID   string    `json:"account_id"`
	CategoryID  string    `json:"category_id"`
	Description string    `json:"description,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTransactionResponse(t *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Date:        t.Date.Format(time.DateOnly),
		Type:        string(t.Type),
		Amount:      t.Amount.String(),
		AccountID:   t.AccountID,
		CategoryID:  t.CategoryID,
		Description: t.Description,
		Notes:       t.Notes,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type pageResponse struct {
	Items []transactionResponse `json:"items"`
	Total int                   `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

func toPageResponse(p *service.Page) pageResponse {
	items := make([]transactionResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, toTransactionResponse(&p.Items[i]))
	}
	return pageResponse{Items: items, Total: p.Total, Page: p.Page, Limit: p.Limit}
}

type categoryTotalResponse struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Total        string `json:"total"`
}

type summaryResponse struct {
	StartDate          string                  `json:"start_date"`
	EndDate            string                  `json:"end_date"`
	TotalIncome        string                  `json:"total_income"`
	TotalExpense       string                  `json:"total_expense"`
	Balance            string                  `json:"balance"`
	TransactionCount   int                     `json:"transaction_count"`
	IncomeByCategory   []categoryTotalResponse `json:"income_by_category"`
	ExpensesByCategory []categoryTotalResponse `json:"expenses_by_category"`
}

func toSummaryResponse(s *service.AnalyticsSummary) summaryResponse {
	return summaryResponse{
		StartDate:          s.Period.Start.Format(time.DateOnly),
		EndDate:            s.Period.End.Format(time.DateOnly),
		TotalIncome:        s.TotalIncome.String(),
		TotalExpense:       s.TotalExpense.String(),
		Balance:            s.Balance.String(),
		TransactionCount:   s.TransactionCount,
		IncomeByCategory:   toCategoryTotals(s.IncomeByCategory),
		ExpensesByCategory: toCategoryTotals(s.ExpensesByCategory),
	}
}

func toCategoryTotals(totals []service.CategoryTotal) []categoryTotalResponse {
	out := make([]categoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryTotalResponse{
			CategoryID:   t.CategoryID,
			CategoryName: t.CategoryName,
			Total:        t.Total.String(),
		})
	}
	return out
}

// parseDate accepts either a bare date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, common.InvalidArgumentf("invalid date %q, want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
