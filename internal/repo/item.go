package repo

import (
	"ShopKeeper/internal/model"
	"context"

	"gorm.io/gorm"
)

// ItemRepository определяет контракт доступа к Item для слоя сервиса.
type ItemRepository interface {
	// Create вставляет новый товар.
	Create(ctx context.Context, it *model.Item) error

	// GetByID возвращает неудалённый товар пользователя. Если не найден —
	// gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, userID int64, id string) (*model.Item, error)

	// ListByUser возвращает все неудалённые товары пользователя.
	ListByUser(ctx context.Context, userID int64) ([]model.Item, error)

	// UpdateWithVersion обновляет товар только если его текущая версия равна
	// expectedVersion. Возвращает число затронутых строк: 0 означает конфликт
	// версий или отсутствие записи.
	UpdateWithVersion(ctx context.Context, it *model.Item, expectedVersion int64) (int64, error)

	// SoftDelete помечает товар удалённым, не стирая строку.
	SoftDelete(ctx context.Context, userID int64, id string) error
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) GetByID(ctx context.Context, userID int64, id string) (*model.Item, error) {
	var it model.Item
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND deleted = ?", id, userID, false).
		First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) ListByUser(ctx context.Context, userID int64) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND deleted = ?", userID, false).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateWithVersion пишет все изменяемые поля выбранным списком, чтобы нулевые
// значения (снятая обложка, опустевшая галерея) тоже попадали в UPDATE.
func (r *itemRepo) UpdateWithVersion(ctx context.Context, it *model.Item, expectedVersion int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ? AND user_id = ? AND version = ? AND deleted = ?", it.ID, it.UserID, expectedVersion, false).
		Select("name", "description", "price_cents", "code", "cover", "preview_video", "demo_video", "gallery", "attachments", "version").
		Updates(it)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *itemRepo) SoftDelete(ctx context.Context, userID int64, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Item{}).
		Where("id = ? AND user_id = ? AND deleted = ?", id, userID, false).
		Updates(map[string]any{
			"deleted": true,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
