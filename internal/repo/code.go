package repo

import (
	"ShopKeeper/internal/model"
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CodeRepository управляет реестром кодов товаров: выдаёт наименьший
// свободный код (или выпускает новый) и возвращает коды в free-list.
type CodeRepository interface {
	// Allocate выдаёт код товару itemID. Сначала переиспользуется наименьший
	// свободный код; если свободных нет — выпускается max(code)+1.
	// Ошибка означает недоступность хранилища и фатальна для вызывающего.
	Allocate(ctx context.Context, itemID string) (int, error)

	// Release возвращает код в free-list. Идемпотентна: освобождение уже
	// свободного или никогда не выдававшегося кода просто создаёт/обновляет
	// свободную запись. Файловую систему не трогает.
	Release(ctx context.Context, code int) error
}

type codeRepo struct {
	db *gorm.DB
}

// NewCodeRepository создаёт реализацию репозитория для Code.
func NewCodeRepository(db *gorm.DB) CodeRepository {
	return &codeRepo{db: db}
}

// Allocate выполняет «найти свободный → пометить занятым» в одной транзакции
// с блокировкой строки-кандидата, чтобы два конкурентных вызова не получили
// один и тот же код. На SQLite блокировка строк не поддерживается и drop'ается
// драйвером; писатели там и так сериализованы.
func (r *codeRepo) Allocate(ctx context.Context, itemID string) (int, error) {
	var allocated int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec model.Code
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("assigned = ?", false).
			Order("code").
			First(&rec).Error
		switch {
		case err == nil:
			// переиспользуем наименьший свободный код
			res := tx.Model(&model.Code{}).
				Where("code = ?", rec.Code).
				Updates(map[string]any{"assigned": true, "item_id": itemID})
			if res.Error != nil {
				return res.Error
			}
			allocated = rec.Code
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			// свободных нет — выпускаем новый: max(code)+1, пустой реестр считаем нулём
			var max sql.NullInt64
			if err := tx.Model(&model.Code{}).Select("MAX(code)").Scan(&max).Error; err != nil {
				return err
			}
			next := int(max.Int64) + 1
			rec = model.Code{Code: next, Assigned: true, ItemID: &itemID, UpdatedAt: time.Now().UTC()}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			allocated = next
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return 0, err
	}
	return allocated, nil
}

func (r *codeRepo) Release(ctx context.Context, code int) error {
	rec := &model.Code{Code: code, Assigned: false, ItemID: nil, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.Assignments(map[string]any{
			"assigned":   false,
			"item_id":    nil,
			"updated_at": time.Now().UTC(),
		}),
	}).Create(rec).Error
}
