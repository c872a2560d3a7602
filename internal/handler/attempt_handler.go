package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/handler/dto"
	"github.com/yourusername/updrill-api/internal/middleware"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
	"github.com/yourusername/updrill-api/internal/pkg/response"
	"github.com/yourusername/updrill-api/internal/service"
)

// Форматы выгрузки истории
const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

// AttemptHandler обрабатывает запросы, связанные с попытками
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// SubmitAttempt оценивает и сохраняет попытку
// POST /api/attempts
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	var req dto.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Validation(apperrors.FieldError{Field: "body", Message: "Request body must be valid JSON"}))
		return
	}

	view, err := h.attemptService.Submit(c.Request.Context(), middleware.UserID(c), service.SubmitAttemptInput{
		DrillID: req.DrillID,
		Answers: req.ToAnswers(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAttemptResponse(view, true))
}

// ListAttempts возвращает последние попытки пользователя
// GET /api/attempts?limit=
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	views, err := h.attemptService.ListByUser(c.Request.Context(), middleware.UserID(c), c.Query("limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptListResponse(views))
}

// GetAttempt возвращает попытку владельцу
// GET /api/attempts/:id
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	view, err := h.attemptService.GetByID(c.Request.Context(), middleware.UserID(c), c.GetString("attemptID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptResponse(view, true))
}

// GetStats возвращает статистику пользователя
// GET /api/attempts/stats
func (h *AttemptHandler) GetStats(c *gin.Context) {
	stats, err := h.attemptService.StatsByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportAttempts выгружает всю историю попыток в Excel или CSV
// GET /api/attempts/export?format=xlsx|csv
func (h *AttemptHandler) ExportAttempts(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", ExportFormatXLSX))
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		response.Error(c, apperrors.Validation(apperrors.FieldError{Field: "format", Message: "Format must be one of: xlsx, csv"}))
		return
	}

	views, err := h.attemptService.ExportByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := slug.Make(fmt.Sprintf("updrill attempts %s", time.Now().UTC().Format("2006-01-02")))

	switch format {
	case ExportFormatCSV:
		h.exportCSV(c, views, filename)
	default:
		h.exportXLSX(c, views, filename)
	}
}

var exportHeaders = []string{"Date", "Drill", "Difficulty", "Tags", "Score", "Answers"}

func exportRow(v *entity.AttemptView) []string {
	title := v.DrillTitle
	if title == "" {
		title = v.DrillID
	}
	return []string{
		v.CreatedAt.UTC().Format(time.RFC3339),
		sanitizeForExcel(title),
		string(v.DrillDifficulty),
		sanitizeForExcel(strings.Join(v.DrillTags, ", ")),
		strconv.Itoa(v.Score),
		strconv.Itoa(len(v.Answers)),
	}
}

// exportCSV экспортирует историю в CSV с правильным экранированием спецсимволов
func (h *AttemptHandler) exportCSV(c *gin.Context, views []entity.AttemptView, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи заголовков CSV: %v", err)
		return
	}
	for i := range views {
		if err := writer.Write(exportRow(&views[i])); err != nil {
			log.Printf("[AttemptHandler] Ошибка записи строки CSV %d: %v", i, err)
			return
		}
	}
}

// exportXLSX экспортирует историю в Excel с использованием StreamWriter
func (h *AttemptHandler) exportXLSX(c *gin.Context, views []entity.AttemptView, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attempts"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		response.Error(c, apperrors.Internal("failed to create Excel file", err))
		return
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AttemptHandler] Ошибка создания StreamWriter: %v", err)
		response.Error(c, apperrors.Internal("failed to create Excel file", err))
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, name := range exportHeaders {
		headers[i] = name
	}
	if err := sw.SetRow("A1", headers); err != nil {
		response.Error(c, apperrors.Internal("failed to write Excel headers", err))
		return
	}

	for i := range views {
		v := &views[i]
		row := exportRow(v)
		cells := []interface{}{row[0], row[1], row[2], row[3], v.Score, len(v.Answers)}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, cells); err != nil {
			log.Printf("[AttemptHandler] Ошибка записи строки %d: %v", i+2, err)
			response.Error(c, apperrors.Internal("failed to write Excel row", err))
			return
		}
	}

	if err := sw.Flush(); err != nil {
		response.Error(c, apperrors.Internal("failed to flush Excel file", err))
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
