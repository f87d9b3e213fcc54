package ingest

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/vitalscope/vitalscope/internal/domain"
)

// TestRepository handles database operations for measurement runs
type TestRepository interface {
	// Create inserts a new test and assigns its id
	Create(ctx context.Context, test *domain.PagespeedTest) error

	// ListByUrlDevice retrieves all tests for one (url, device) pair,
	// ordered ascending by test date
	ListByUrlDevice(ctx context.Context, url, deviceType string) ([]domain.PagespeedTest, error)

	// List retrieves all tests ordered descending by test date
	List(ctx context.Context) ([]domain.PagespeedTest, error)
}

// MetricRepository handles database operations for metric rows
type MetricRepository interface {
	// CreateBatch inserts metric rows in one batch and assigns their ids
	CreateBatch(ctx context.Context, metrics []*domain.PagespeedMetric) error

	// ListByTestIds retrieves all metrics belonging to the given tests
	ListByTestIds(ctx context.Context, testIds []int64) ([]domain.PagespeedMetric, error)
}

// DistributionRepository handles database operations for histogram bands
type DistributionRepository interface {
	// CreateBatch inserts distribution rows in one batch
	CreateBatch(ctx context.Context, distributions []*domain.PagespeedDistribution) error

	// ListByMetricId retrieves the bands of one metric ordered by min value
	ListByMetricId(ctx context.Context, metricId int64) ([]domain.PagespeedDistribution, error)
}

// SiteRepository handles database operations for monitored sites
type SiteRepository interface {
	Create(ctx context.Context, site *domain.PsSite) error
	Update(ctx context.Context, site *domain.PsSite) error
	GetByID(ctx context.Context, id int64) (*domain.PsSite, error)
	List(ctx context.Context) ([]domain.PsSite, error)
	Delete(ctx context.Context, id int64) error

	// GetDue retrieves enabled sites whose next run time has passed
	GetDue(ctx context.Context, now time.Time) ([]domain.PsSite, error)

	// MarkRun records the outcome of an ingestion sweep for a site
	MarkRun(ctx context.Context, id int64, now time.Time, result, category string) error
}

// GormTestRepository is the GORM implementation of TestRepository
type GormTestRepository struct {
	db *gorm.DB
}

func NewGormTestRepository(db *gorm.DB) *GormTestRepository {
	return &GormTestRepository{db: db}
}

func (r *GormTestRepository) Create(ctx context.Context, test *domain.PagespeedTest) error {
	return r.db.WithContext(ctx).Create(test).Error
}

func (r *GormTestRepository) ListByUrlDevice(ctx context.Context, url, deviceType string) ([]domain.PagespeedTest, error) {
	var tests []domain.PagespeedTest
	err := r.db.WithContext(ctx).
		Where("url = ?", url).
		Where("device_type = ?", deviceType).
		Order("test_date ASC").
		Find(&tests).Error
	return tests, err
}

func (r *GormTestRepository) List(ctx context.Context) ([]domain.PagespeedTest, error) {
	var tests []domain.PagespeedTest
	err := r.db.WithContext(ctx).Order("test_date DESC").Find(&tests).Error
	return tests, err
}

// GormMetricRepository is the GORM implementation of MetricRepository
type GormMetricRepository struct {
	db *gorm.DB
}

func NewGormMetricRepository(db *gorm.DB) *GormMetricRepository {
	return &GormMetricRepository{db: db}
}

func (r *GormMetricRepository) CreateBatch(ctx context.Context, metrics []*domain.PagespeedMetric) error {
	if len(metrics) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(metrics).Error
}

func (r *GormMetricRepository) ListByTestIds(ctx context.Context, testIds []int64) ([]domain.PagespeedMetric, error) {
	var metrics []domain.PagespeedMetric
	if len(testIds) == 0 {
		return metrics, nil
	}
	err := r.db.WithContext(ctx).
		Where("test_id IN ?", testIds).
		Order("id ASC").
		Find(&metrics).Error
	return metrics, err
}

// GormDistributionRepository is the GORM implementation of DistributionRepository
type GormDistributionRepository struct {
	db *gorm.DB
}

func NewGormDistributionRepository(db *gorm.DB) *GormDistributionRepository {
	return &GormDistributionRepository{db: db}
}

func (r *GormDistributionRepository) CreateBatch(ctx context.Context, distributions []*domain.PagespeedDistribution) error {
	if len(distributions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(distributions).Error
}

func (r *GormDistributionRepository) ListByMetricId(ctx context.Context, metricId int64) ([]domain.PagespeedDistribution, error) {
	var distributions []domain.PagespeedDistribution
	err := r.db.WithContext(ctx).
		Where("metric_id = ?", metricId).
		Order("min_value ASC").
		Find(&distributions).Error
	return distributions, err
}

// GormSiteRepository is the GORM implementation of SiteRepository
type GormSiteRepository struct {
	db *gorm.DB
}

func NewGormSiteRepository(db *gorm.DB) *GormSiteRepository {
	return &GormSiteRepository{db: db}
}

func (r *GormSiteRepository) Create(ctx context.Context, site *domain.PsSite) error {
	return r.db.WithContext(ctx).Create(site).Error
}

func (r *GormSiteRepository) Update(ctx context.Context, site *domain.PsSite) error {
	return r.db.WithContext(ctx).Save(site).Error
}

func (r *GormSiteRepository) GetByID(ctx context.Context, id int64) (*domain.PsSite, error) {
	var site domain.PsSite
	err := r.db.WithContext(ctx).First(&site, id).Error
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *GormSiteRepository) List(ctx context.Context) ([]domain.PsSite, error) {
	var sites []domain.PsSite
	err := r.db.WithContext(ctx).Order("id ASC").Find(&sites).Error
	return sites, err
}

func (r *GormSiteRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.PsSite{}, id).Error
}

func (r *GormSiteRepository) GetDue(ctx context.Context, now time.Time) ([]domain.PsSite, error) {
	var sites []domain.PsSite
	err := r.db.WithContext(ctx).
		Where("status = ?", "enabled").
		Where("next_run_at IS NULL OR next_run_at <= ?", now).
		Find(&sites).Error
	return sites, err
}

func (r *GormSiteRepository) MarkRun(ctx context.Context, id int64, now time.Time, result, category string) error {
	var site domain.PsSite
	if err := r.db.WithContext(ctx).First(&site, id).Error; err != nil {
		return err
	}
	interval := site.Interval
	if interval <= 0 {
		interval = 86400
	}
	return r.db.WithContext(ctx).Model(&domain.PsSite{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at":   now,
			"next_run_at":   now.Add(time.Duration(interval) * time.Second),
			"last_result":   result,
			"last_category": category,
			"updated_at":    now,
		}).Error
}
