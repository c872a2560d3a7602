package handler

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
	"github.com/yourusername/updrill-api/internal/pkg/response"
	"github.com/yourusername/updrill-api/internal/service"
)

// DrillHandler обрабатывает запросы каталога дриллов
type DrillHandler struct {
	drillService *service.DrillService
}

// NewDrillHandler создает новый обработчик дриллов
func NewDrillHandler(drillService *service.DrillService) *DrillHandler {
	return &DrillHandler{drillService: drillService}
}

// ListDrills возвращает страницу каталога
// GET /api/drills?difficulty=&tags=&search=&limit=&page=
func (h *DrillHandler) ListDrills(c *gin.Context) {
	listing, err := h.drillService.List(c.Request.Context(), service.DrillQuery{
		Difficulty: c.Query("difficulty"),
		Tags:       c.Query("tags"),
		Search:     c.Query("search"),
		Page:       c.Query("page"),
		Limit:      c.Query("limit"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	body, err := json.Marshal(listing)
	if err != nil {
		response.Error(c, apperrors.Internal("failed to encode drills", err))
		return
	}

	// Ответ совпадает у всех клиентов, поэтому его можно кешировать публично
	etag := fmt.Sprintf(`"%x"`, sha256.Sum256(body))
	c.Header("ETag", etag)
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.drillService.CacheTTL().Seconds())))

	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// GetDrill возвращает дрилл по ID
// GET /api/drills/:id
func (h *DrillHandler) GetDrill(c *gin.Context) {
	drill, err := h.drillService.GetByID(c.Request.Context(), c.GetString("drillID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, drill)
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
