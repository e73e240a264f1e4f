package api

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tallyapp/tally/internal/analytics"
	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/common"
)

// periodFromQuery reads start_date/end_date, defaulting to the trailing
// thirty days when both are absent.
func periodFromQuery(c *fiber.Ctx) (start, end time.Time, err error) {
	startQ, endQ := c.Query("start_date"), c.Query("end_date")
	if startQ == "" && endQ == "" {
		start, end = analytics.DefaultPeriod(time.Now().UTC())
		return start, end, nil
	}
	if startQ == "" || endQ == "" {
		return start, end, common.InvalidArgumentf("start_date and end_date must be given together")
	}

	if start, err = parseDate(startQ); err != nil {
		return start, end, err
	}
	if end, err = parseDate(endQ); err != nil {
		return start, end, err
	}
	if end.Before(start) {
		return start, end, common.InvalidArgumentf("end_date is before start_date")
	}
	return start, end, nil
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	start, end, err := periodFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	summary, err := s.aggregator.Summarize(c.UserContext(), auth.UserFromCtx(c), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSummaryResponse(summary))
}

func (s *Server) handleBalance(c *fiber.Ctx) error {
	balance, err := s.aggregator.CurrentBalance(c.UserContext(), auth.UserFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"balance": balance.String()})
}

func (s *Server) handleReportCSV(c *fiber.Ctx) error {
	start, end, err := periodFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	csv, err := s.reporter.GenerateCSV(c.UserContext(), auth.UserFromCtx(c), start, end)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	return c.SendString(csv)
}

func (s *Server) handleReportSummary(c *fiber.Ctx) error {
	start, end, err := periodFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	text, err := s.reporter.GenerateTextSummary(c.UserContext(), auth.UserFromCtx(c), start, end)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(text)
}

func (s *Server) handleReportPDF(c *fiber.Ctx) error {
	start, end, err := periodFromQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	pdf, err := s.reporter.GeneratePDF(c.UserContext(), auth.UserFromCtx(c), start, end)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="statement.pdf"`)
	return c.Send(pdf)
}
