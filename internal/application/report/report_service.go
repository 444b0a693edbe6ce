package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/shared"
	"github.com/catalogsync/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoData is returned when a percentage report has no products to divide by
var ErrNoData = shared.NewDomainError("NO_DATA", "No products available to compute the report")

// Cache stores computed report payloads. Implementations must be safe for
// concurrent use.
//
// Generation changes on every Invalidate. Keys are versioned with the
// generation read before computing, so a report computed across an
// invalidation is stored under a key no later read asks for.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
	Generation(ctx context.Context) (uint64, error)
}

const (
	cacheKeyDeleted    = "deleted-percentage"
	cacheKeyNonDeleted = "non-deleted-percentage"

	dateLayout = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

// Percentage is a report ratio in percent
type Percentage struct {
	Value   decimal.Decimal `json:"value"`
	Display string          `json:"display"`
}

func newPercentage(value decimal.Decimal) Percentage {
	return Percentage{Value: value, Display: value.String() + "%"}
}

// Float returns the percentage as a float64
func (p Percentage) Float() float64 {
	f, _ := p.Value.Float64()
	return f
}

// String renders the percentage as "50%"
func (p Percentage) String() string {
	return p.Display
}

// NonDeletedFilter narrows the non-deleted percentage numerator
type NonDeletedFilter struct {
	// WithPrice true counts rows with a price, false rows without one
	WithPrice *bool
	// StartDate and EndDate bound the upstream creation timestamp inclusively
	// and must be given together
	StartDate *string
	EndDate   *string
}

// CustomReport lists every product, deleted or not, whose attribute matches
type CustomReport struct {
	Criteria catalog.Criterion
	Value    string
	Count    int
	Products []catalog.Product
}

// ReportService computes aggregate reports over the product store
type ReportService struct {
	productRepo catalog.ProductRepository
	cache       Cache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewReportService creates a new ReportService. cache may be nil.
func NewReportService(productRepo catalog.ProductRepository, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{
		productRepo: productRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// DeletedPercentage returns deleted / total * 100
func (s *ReportService) DeletedPercentage(ctx context.Context) (Percentage, error) {
	return s.cached(ctx, cacheKeyDeleted, func() (Percentage, error) {
		total, err := s.productRepo.Count(ctx, catalog.CountFilter{})
		if err != nil {
			return Percentage{}, err
		}
		if total == 0 {
			return Percentage{}, ErrNoData
		}

		deleted := true
		count, err := s.productRepo.Count(ctx, catalog.CountFilter{Deleted: &deleted})
		if err != nil {
			return Percentage{}, err
		}

		return newPercentage(decimal.NewFromInt(count).Mul(hundred).Div(decimal.NewFromInt(total))), nil
	})
}

// NonDeletedPercentage returns the share of non-deleted products matching
// filter over the unfiltered total, rounded to two decimal places
func (s *ReportService) NonDeletedPercentage(ctx context.Context, filter NonDeletedFilter) (Percentage, error) {
	dateRange, err := filter.dateRange()
	if err != nil {
		return Percentage{}, err
	}

	return s.cached(ctx, filter.cacheKey(), func() (Percentage, error) {
		total, err := s.productRepo.Count(ctx, catalog.CountFilter{})
		if err != nil {
			return Percentage{}, err
		}
		if total == 0 {
			return Percentage{}, ErrNoData
		}

		notDeleted := false
		count, err := s.productRepo.Count(ctx, catalog.CountFilter{
			Deleted:        &notDeleted,
			WithPrice:      filter.WithPrice,
			CreatedBetween: dateRange,
		})
		if err != nil {
			return Percentage{}, err
		}

		return newPercentage(decimal.NewFromInt(count).Mul(hundred).Div(decimal.NewFromInt(total)).Round(2)), nil
	})
}

// CustomReport lists every product whose criteria attribute equals value.
// Numeric attributes compare numerically; a non-numeric value matches nothing.
func (s *ReportService) CustomReport(ctx context.Context, criteria, value string) (*CustomReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "custom",
		telemetry.WithAttribute(telemetry.SpanAttrCriteria, criteria),
	)
	defer span.End()

	criterion, err := catalog.ParseCriterion(criteria)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	products, err := s.productRepo.FindByCriterion(ctx, catalog.NewCriterionMatch(criterion, value))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &CustomReport{
		Criteria: criterion,
		Value:    value,
		Count:    len(products),
		Products: products,
	}, nil
}

func (s *ReportService) cached(ctx context.Context, key string, compute func() (Percentage, error)) (Percentage, error) {
	if s.cache == nil {
		return compute()
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("Report cache unavailable", zap.String("key", key), zap.Error(err))
		return compute()
	}
	key = versionedKey(key, gen)

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var p Percentage
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
		s.logger.Warn("Discarding undecodable cached report", zap.String("key", key))
	}

	p, err := compute()
	if err != nil {
		return Percentage{}, err
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return p, nil
}

// dateRange validates the bounds. A date-only end bound covers its whole day.
func (f NonDeletedFilter) dateRange() (*catalog.DateRange, error) {
	start, end := trimmed(f.StartDate), trimmed(f.EndDate)
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, shared.ErrInvalidInput.WithMessage("startDate and endDate must be provided together")
	}

	startAt, err := parseBound(start)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("invalid startDate: %s", start))
	}
	endAt, err := parseBound(end)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithMessage(fmt.Sprintf("invalid endDate: %s", end))
	}
	if endAt.Before(startAt) {
		return nil, shared.ErrInvalidInput.WithMessage("startDate must not be after endDate")
	}

	if len(end) == len(dateLayout) {
		end += "T23:59:59.999Z"
	}
	return &catalog.DateRange{Start: start, End: end}, nil
}

func (f NonDeletedFilter) cacheKey() string {
	withPrice := "any"
	if f.WithPrice != nil {
		withPrice = fmt.Sprintf("%t", *f.WithPrice)
	}
	return strings.Join([]string{cacheKeyNonDeleted, withPrice, trimmed(f.StartDate), trimmed(f.EndDate)}, ":")
}

func parseBound(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func versionedKey(key string, gen uint64) string {
	return fmt.Sprintf("%s@%d", key, gen)
}
