// analytics.go — агрегатная статистика каталога: подлинные/поддельные
// продукты и разбивка регистраций по дням (UTC).
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sreedotee/verisure/internal/domain/model"
	"github.com/sreedotee/verisure/internal/repository"
)

// dateLayout — формат даты в разбивке по дням.
const dateLayout = "2006-01-02"

// AnalyticsService — сервис статистики.
type AnalyticsService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewAnalyticsService создаёт сервис статистики.
func NewAnalyticsService(products repository.ProductRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		products: products,
		logger:   logger.With(slog.String("component", "analytics_service")),
	}
}

// Summary считает статистику по проекции каталога.
func (s *AnalyticsService) Summary(ctx context.Context) (*model.Analytics, error) {
	stats, err := s.products.ListStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение статистики каталога: %w", err)
	}

	result := aggregate(stats)
	s.logger.Debug("Статистика рассчитана",
		slog.Int("total", result.TotalCount),
		slog.Int("days", len(result.Daily)),
	)
	return result, nil
}

// aggregate сводит проекцию в счётчики и дневную разбивку по возрастанию даты.
func aggregate(stats []model.ProductStat) *model.Analytics {
	result := &model.Analytics{Daily: []model.DailyCount{}}
	byDate := make(map[string]*model.DailyCount)

	for _, st := range stats {
		date := st.CreatedAt.UTC().Format(dateLayout)
		day, ok := byDate[date]
		if !ok {
			day = &model.DailyCount{Date: date}
			byDate[date] = day
		}
		day.Count++

		if st.IsFake {
			result.FakeCount++
			day.Fake++
		} else {
			result.RealCount++
			day.Real++
		}
	}
	result.TotalCount = result.RealCount + result.FakeCount

	for _, day := range byDate {
		result.Daily = append(result.Daily, *day)
	}
	// Формат YYYY-MM-DD сортируется лексикографически
	sort.Slice(result.Daily, func(i, j int) bool {
		return result.Daily[i].Date < result.Daily[j].Date
	})
	return result
}
