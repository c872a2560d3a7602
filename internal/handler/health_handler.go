package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler отвечает на проверку живости
type HealthHandler struct {
	storage string
}

// NewHealthHandler создает обработчик; storage — имя драйвера хранилища
func NewHealthHandler(storage string) *HealthHandler {
	return &HealthHandler{storage: storage}
}

// Health возвращает {ok: true}
// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "storage": h.storage})
}
