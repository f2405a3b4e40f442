package persistence

import (
	"context"

	"github.com/travelpkg/backend/internal/domain/report"
	"github.com/travelpkg/backend/internal/domain/shared"
	"github.com/travelpkg/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNoticeRepository implements report.NoticeRepository using GORM
type GormNoticeRepository struct {
	db *gorm.DB
}

// NewGormNoticeRepository creates a new GormNoticeRepository
func NewGormNoticeRepository(db *gorm.DB) *GormNoticeRepository {
	return &GormNoticeRepository{db: db}
}

// FindImportant returns up to limit important notices, newest first
func (r *GormNoticeRepository) FindImportant(ctx context.Context, limit int) ([]report.Notice, error) {
	var rows []models.NoticeModel
	query := r.db.WithContext(ctx).Where("is_important = ?", true).Order("created_at DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toNotices(rows), nil
}

// FindAll finds notices matching the filter
func (r *GormNoticeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]report.Notice, error) {
	var rows []models.NoticeModel
	if err := orderAndPage(r.db.WithContext(ctx).Model(&models.NoticeModel{}), filter, NoticeSortFields).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toNotices(rows), nil
}

// Save creates or updates a notice
func (r *GormNoticeRepository) Save(ctx context.Context, notice *report.Notice) error {
	return translateError(r.db.WithContext(ctx).Save(models.NoticeModelFromDomain(notice)).Error)
}

func toNotices(rows []models.NoticeModel) []report.Notice {
	out := make([]report.Notice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}
