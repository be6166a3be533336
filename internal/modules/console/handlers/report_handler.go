package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/agent-console/internal/core/export"
	"github.com/MuhamadAgungGumelar/agent-console/internal/core/report"
	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/services"
)

type ReportHandler struct {
	console *services.ConsoleService
	reports *report.Service
}

func NewReportHandler(console *services.ConsoleService) *ReportHandler {
	return &ReportHandler{console: console, reports: console.Reports()}
}

// GetReport godoc
// @Summary Generate or read the current report
// @Description With start and end (YYYY-MM-DD) or a named period a new report is generated, otherwise the current one is returned.
// @Tags Reports
// @Produce json
// @Param period query string false "today, yesterday, this_week, last_week, this_month, last_month, last_30_days, last_90_days"
// @Param start query string false "Start date" example(2024-01-01)
// @Param end query string false "End date" example(2024-01-31)
// @Success 200 {object} models.Report
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /reports [get]
func (h *ReportHandler) GetReport(c *fiber.Ctx) error {
	start, end := c.Query("start"), c.Query("end")
	if period := c.Query("period"); period != "" {
		var err error
		if start, end, err = report.PeriodRange(period, time.Now()); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if start == "" && end == "" {
		r, ok := h.reports.Current()
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": report.ErrNoReport.Error(),
			})
		}
		return c.JSON(r)
	}

	if err := report.ValidateRange(start, end); err != nil {
		return badRequest(c, err.Error())
	}
	r, err := h.reports.Generate(c.UserContext(), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(r)
}

// GetChart godoc
// @Summary Classification breakdown of the current report
// @Tags Reports
// @Produce json
// @Success 200 {object} report.PieChartData
// @Failure 404 {object} map[string]string
// @Router /reports/chart [get]
func (h *ReportHandler) GetChart(c *fiber.Ctx) error {
	r, ok := h.reports.Current()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": report.ErrNoReport.Error(),
		})
	}
	return c.JSON(report.ClassificationChart(r))
}

// ClearReport godoc
// @Summary Drop the current report
// @Tags Reports
// @Success 204
// @Router /reports [delete]
func (h *ReportHandler) ClearReport(c *fiber.Ctx) error {
	h.reports.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportReport godoc
// @Summary Download the current report
// @Tags Reports
// @Produce octet-stream
// @Param format query string false "csv, excel or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /reports/export [get]
func (h *ReportHandler) ExportReport(c *fiber.Ctx) error {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	file, name, err := h.console.ExportReport(c.UserContext(), format)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Attachment(name)
	return c.Send(file.Data)
}

// ListExports godoc
// @Summary Files written by the scheduled report export
// @Tags Reports
// @Produce json
// @Param limit query int false "Max rows" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /reports/exports [get]
func (h *ReportHandler) ListExports(c *fiber.Ctx) error {
	records, err := h.console.ExportHistory(c.UserContext(), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"exports": records})
}
