package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/updrill-api/internal/cache"
	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	"github.com/yourusername/updrill-api/internal/metrics"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// Параметры страницы каталога
const (
	DefaultDrillsPage  = 1
	DefaultDrillsLimit = 50
	MaxDrillsLimit     = 100
)

// DrillQuery — сырые параметры запроса списка дриллов
type DrillQuery struct {
	Difficulty string
	Tags       string // через запятую
	Search     string
	Page       string
	Limit      string
}

// DrillService отдает каталог дриллов через кеш списка
type DrillService struct {
	drillRepo repository.DrillRepository
	cache     cache.ListingCache
	ttl       time.Duration
}

// NewDrillService создает сервис каталога
func NewDrillService(drillRepo repository.DrillRepository, listingCache cache.ListingCache, ttl time.Duration) *DrillService {
	if listingCache == nil {
		listingCache = cache.NewMemorySlot(nil)
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &DrillService{drillRepo: drillRepo, cache: listingCache, ttl: ttl}
}

// CacheTTL возвращает TTL кеша списка
func (s *DrillService) CacheTTL() time.Duration {
	return s.ttl
}

// List возвращает страницу каталога. Только запрос с параметрами по умолчанию
// читается из кеша и записывается в него; данные могут отставать не более чем на TTL.
func (s *DrillService) List(ctx context.Context, q DrillQuery) (*entity.DrillListing, error) {
	filter, page, limit, err := parseDrillQuery(q)
	if err != nil {
		return nil, err
	}

	cacheable := filter.IsEmpty() && page == DefaultDrillsPage && limit == DefaultDrillsLimit
	if cacheable {
		if listing, ok := s.cache.Get(ctx, cache.DefaultListingKey); ok {
			metrics.DrillCacheLookups.WithLabelValues(metrics.CacheHit).Inc()
			return listing, nil
		}
		metrics.DrillCacheLookups.WithLabelValues(metrics.CacheMiss).Inc()
	} else {
		metrics.DrillCacheLookups.WithLabelValues(metrics.CacheBypass).Inc()
	}

	drills, total, err := s.drillRepo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		log.Printf("[DrillService] Ошибка получения списка дриллов: %v", err)
		return nil, apperrors.Internal("failed to list drills", err)
	}

	listing := &entity.DrillListing{
		Drills: drills,
		Pagination: entity.Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int((total + int64(limit) - 1) / int64(limit)),
		},
	}

	if cacheable {
		s.cache.Set(ctx, cache.DefaultListingKey, listing, s.ttl)
	}
	return listing, nil
}

// GetByID возвращает дрилл по ID
func (s *DrillService) GetByID(ctx context.Context, id string) (*entity.Drill, error) {
	drill, err := s.drillRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Drill not found")
		}
		log.Printf("[DrillService] Ошибка получения дрилла %s: %v", id, err)
		return nil, apperrors.Internal("failed to load drill", err)
	}
	return drill, nil
}

func parseDrillQuery(q DrillQuery) (repository.DrillFilter, int, int, error) {
	var (
		filter repository.DrillFilter
		fields []apperrors.FieldError
	)

	if d := strings.TrimSpace(q.Difficulty); d != "" {
		difficulty, ok := entity.ParseDifficulty(d)
		if !ok {
			fields = append(fields, apperrors.FieldError{
				Field:   "difficulty",
				Message: "Difficulty must be one of: easy, medium, hard",
			})
		}
		filter.Difficulty = difficulty
	}

	for _, tag := range strings.Split(q.Tags, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			filter.Tags = append(filter.Tags, t)
		}
	}
	filter.Search = strings.TrimSpace(q.Search)

	limit := parseBoundedInt(q.Limit, DefaultDrillsLimit, 1, MaxDrillsLimit)
	// (page-1)*limit не должен переполнять int
	page := parseBoundedInt(q.Page, DefaultDrillsPage, 1, math.MaxInt/limit)

	if len(fields) > 0 {
		return filter, 0, 0, apperrors.Validation(fields...)
	}
	return filter, page, limit, nil
}

// parseBoundedInt разбирает число с умолчанием и границами; max <= 0 означает без верхней границы
func parseBoundedInt(raw string, def, min, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
