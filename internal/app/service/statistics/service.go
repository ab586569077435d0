package statistics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ovenline/bakehouse/pkg/types"
)

type StatisticType string

const (
	// Daily order counts and revenue, split between one-time checkout orders
	// and subscription-billed orders.
	StatisticTypeDailyOrderCount   StatisticType = "daily_order_count"
	StatisticTypeDailyRevenue      StatisticType = "daily_revenue"
	StatisticTypeDailyUnitsSold    StatisticType = "daily_units_sold"
	StatisticTypeBatchUtilization  StatisticType = "batch_utilization"
	StatisticTypeSubscriptionSplit StatisticType = "subscription_split"
)

type SalesStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type SalesStatisticRequest struct {
	From      string                    `json:"from"`
	To        string                    `json:"to"`
	DataItems []*SalesStatisticDataItem `json:"data_items"`
}

// dateRange resolves the request window, defaulting to the trailing 30 days.
func (r *SalesStatisticRequest) dateRange(now time.Time) (time.Time, time.Time, error) {
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := to.AddDate(0, 0, -30)

	if r.From != "" {
		parsed, err := time.Parse("2006-01-02", r.From)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date %q", r.From)
		}
		from = parsed
	}
	if r.To != "" {
		parsed, err := time.Parse("2006-01-02", r.To)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date %q", r.To)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date precedes from date")
	}
	return from, to, nil
}

type SalesStatisticResponseDataItem struct {
	Date   string `json:"date"`
	Label  string `json:"label,omitempty"`
	Value  int64  `json:"value"`
	Value2 int64  `json:"value2,omitempty"`
}

type SalesStatisticResponse struct {
	DataItems map[StatisticType][]SalesStatisticResponseDataItem `json:"data_items"`
}

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) getDailyOrderCount(ctx context.Context, from, to time.Time) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Table(`"order"`).
		Select("TO_CHAR(delivery_date, 'YYYY-MM-DD') as date, count(*) as value").
		Where("status = ?", types.OrderStatusPaid).
		Where("delivery_date BETWEEN ? AND ?", from, to).
		Group("TO_CHAR(delivery_date, 'YYYY-MM-DD')").
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyRevenue(ctx context.Context, from, to time.Time) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Table(`"order"`).
		Select("TO_CHAR(delivery_date, 'YYYY-MM-DD') as date, sum(total_cents) as value").
		Where("status = ?", types.OrderStatusPaid).
		Where("delivery_date BETWEEN ? AND ?", from, to).
		Group("TO_CHAR(delivery_date, 'YYYY-MM-DD')").
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyUnitsSold(ctx context.Context, from, to time.Time) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Table("order_item").
		Select("TO_CHAR(batch.batch_date, 'YYYY-MM-DD') as date, product.name as label, sum(order_item.quantity) as value").
		Joins("JOIN batch ON batch.id = order_item.batch_id").
		Joins("JOIN product ON product.id = order_item.product_id").
		Where("batch.batch_date BETWEEN ? AND ?", from, to).
		Group("TO_CHAR(batch.batch_date, 'YYYY-MM-DD')").
		Group("product.name").
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// getBatchUtilization reports sold vs available units per batch date.
func (s *Service) getBatchUtilization(ctx context.Context, from, to time.Time) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Table("batch").
		Select("TO_CHAR(batch_date, 'YYYY-MM-DD') as date, sum(quantity_sold) as value, sum(quantity_available) as value2").
		Where("batch_date BETWEEN ? AND ?", from, to).
		Group("TO_CHAR(batch_date, 'YYYY-MM-DD')").
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// getSubscriptionSplit breaks daily paid orders into subscription-billed vs
// one-time checkout.
func (s *Service) getSubscriptionSplit(ctx context.Context, from, to time.Time) ([]SalesStatisticResponseDataItem, error) {
	var results []SalesStatisticResponseDataItem
	err := s.db.WithContext(ctx).Raw(`
SELECT TO_CHAR(o.delivery_date, 'YYYY-MM-DD') as date,
       COUNT(*) FILTER (WHERE so.id IS NOT NULL) as value,
       COUNT(*) FILTER (WHERE so.id IS NULL) as value2
FROM "order" o
LEFT JOIN subscription_order so ON so.order_id = o.id
WHERE o.status = ? AND o.delivery_date BETWEEN ? AND ?
GROUP BY TO_CHAR(o.delivery_date, 'YYYY-MM-DD')
ORDER BY date
`, types.OrderStatusPaid, from, to).Scan(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getSalesStatistic(ctx context.Context, from, to time.Time, dataItem *SalesStatisticDataItem) ([]SalesStatisticResponseDataItem, error) {
	switch dataItem.ID {
	case StatisticTypeDailyOrderCount:
		return s.getDailyOrderCount(ctx, from, to)
	case StatisticTypeDailyRevenue:
		return s.getDailyRevenue(ctx, from, to)
	case StatisticTypeDailyUnitsSold:
		return s.getDailyUnitsSold(ctx, from, to)
	case StatisticTypeBatchUtilization:
		return s.getBatchUtilization(ctx, from, to)
	case StatisticTypeSubscriptionSplit:
		return s.getSubscriptionSplit(ctx, from, to)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", dataItem.ID)
	}
}

// GetSalesStatistics answers a dashboard request, resolving each requested
// series concurrently.
func (s *Service) GetSalesStatistics(ctx context.Context, request *SalesStatisticRequest) (*SalesStatisticResponse, error) {
	if request == nil || len(request.DataItems) == 0 {
		return nil, fmt.Errorf("no data items requested")
	}
	from, to, err := request.dateRange(time.Now())
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(request.DataItems))
	resChan := make(chan *lo.Entry[StatisticType, []SalesStatisticResponseDataItem], len(request.DataItems))

	for _, item := range request.DataItems {
		wg.Add(1)
		go func(di *SalesStatisticDataItem) {
			defer wg.Done()
			res, err := s.getSalesStatistic(ctx, from, to, di)
			if err != nil {
				errChan <- err
				return
			}
			resChan <- &lo.Entry[StatisticType, []SalesStatisticResponseDataItem]{Key: di.ID, Value: res}
		}(item)
	}

	go func() { wg.Wait(); close(errChan); close(resChan) }()

	results := make(map[StatisticType][]SalesStatisticResponseDataItem)
	for i := 0; i < len(request.DataItems); i++ {
		select {
		case err := <-errChan:
			if err != nil {
				return nil, err
			}
		case entry := <-resChan:
			results[entry.Key] = entry.Value
		}
	}
	return &SalesStatisticResponse{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
