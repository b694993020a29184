package service

import (
	"ShopKeeper/internal/assets"
	"ShopKeeper/internal/model"
	"ShopKeeper/internal/repo"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrVersionConflict — товар был изменён параллельно, версия устарела.
var ErrVersionConflict = errors.New("item version conflict")

// ItemService — бизнес-логика товаров каталога. Оркестрирует жизненный цикл
// ассетов: на создании/дублировании выдаёт код, переносит ссылки всех полей
// внутрь каталога кода, сохраняет запись и только потом зачищает сирот;
// на удалении освобождает код и сносит каталог.
type ItemService struct {
	items  repo.ItemRepository
	codes  repo.CodeRepository
	layout *assets.Layout
	mig    *assets.Migrator
	sweep  *assets.Sweeper
	log    *zap.SugaredLogger
}

func NewItemService(
	items repo.ItemRepository,
	codes repo.CodeRepository,
	layout *assets.Layout,
	mig *assets.Migrator,
	sweep *assets.Sweeper,
	log *zap.SugaredLogger,
) *ItemService {
	return &ItemService{items: items, codes: codes, layout: layout, mig: mig, sweep: sweep, log: log}
}

// ItemInput — поля товара, приходящие от клиента. Ссылки на ассеты — в том
// виде, как их прислал клиент: inline base64, путь под /uploads или внешний URL.
type ItemInput struct {
	Name         string
	Description  string
	PriceCents   int64
	Cover        string
	PreviewVideo string
	DemoVideo    string
	Gallery      []string
	Attachments  []string
}

// Create создаёт товар: выдаёт код, готовит каталог, переносит ассеты,
// сохраняет запись и зачищает сирот. Сбой выдачи кода фатален для запроса;
// сбой подготовки каталога — нет (перенос деградирует до «ссылка как есть»).
func (s *ItemService) Create(ctx context.Context, userID int64, in ItemInput) (*model.Item, error) {
	id := uuid.NewString()

	code, err := s.codes.Allocate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("allocate item code: %w", err)
	}
	if _, err := s.layout.DirFor(code); err != nil {
		s.log.Warnw("Create: asset dir not ready", "code", code, "error", err)
	}

	it := &model.Item{
		ID:          id,
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Code:        code,
		Version:     1,
	}
	s.relocateAssets(it, in)

	if err := s.items.Create(ctx, it); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	// зачистка строго после сохранения ссылок, иначе keep-набор был бы устаревшим
	s.sweep.Sweep(code, s.keepSet(it))
	return it, nil
}

// Update обновляет товар с оптимистичной проверкой версии. Перенос ассетов
// идёт против существующего кода; зачистка — после записи новых ссылок.
func (s *ItemService) Update(ctx context.Context, userID int64, id string, in ItemInput) (*model.Item, error) {
	it, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if it.Code == 0 {
		// товар создан до включения файлового каталога — выдаём код сейчас
		code, err := s.codes.Allocate(ctx, it.ID)
		if err != nil {
			return nil, fmt.Errorf("allocate item code: %w", err)
		}
		it.Code = code
	}
	if _, err := s.layout.DirFor(it.Code); err != nil {
		s.log.Warnw("Update: asset dir not ready", "code", it.Code, "error", err)
	}

	expected := it.Version
	it.Name = in.Name
	it.Description = in.Description
	it.PriceCents = in.PriceCents
	s.relocateAssets(it, in)
	it.Version = expected + 1

	rows, err := s.items.UpdateWithVersion(ctx, it, expected)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if rows == 0 {
		return nil, ErrVersionConflict
	}

	s.sweep.Sweep(it.Code, s.keepSet(it))
	return it, nil
}

// Duplicate создаёт копию товара с новым кодом. Ссылки источника лежат в его
// собственном каталоге, поэтому перенос скопирует файлы, не трогая оригинал.
func (s *ItemService) Duplicate(ctx context.Context, userID int64, id string) (*model.Item, error) {
	src, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	dupID := uuid.NewString()
	code, err := s.codes.Allocate(ctx, dupID)
	if err != nil {
		return nil, fmt.Errorf("allocate item code: %w", err)
	}
	if _, err := s.layout.DirFor(code); err != nil {
		s.log.Warnw("Duplicate: asset dir not ready", "code", code, "error", err)
	}

	dup := &model.Item{
		ID:          dupID,
		UserID:      userID,
		Name:        src.Name,
		Description: src.Description,
		PriceCents:  src.PriceCents,
		Code:        code,
		Version:     1,
	}
	s.relocateAssets(dup, ItemInput{
		Cover:        src.Cover,
		PreviewVideo: src.PreviewVideo,
		DemoVideo:    src.DemoVideo,
		Gallery:      src.Gallery,
		Attachments:  src.Attachments,
	})

	if err := s.items.Create(ctx, dup); err != nil {
		return nil, fmt.Errorf("create duplicate: %w", err)
	}

	s.sweep.Sweep(code, s.keepSet(dup))
	return dup, nil
}

// Delete помечает товар удалённым, освобождает код и сносит его каталог.
// Сбои файловой зачистки не блокируют логическое удаление.
func (s *ItemService) Delete(ctx context.Context, userID int64, id string) error {
	it, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.items.SoftDelete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	if it.Code != 0 {
		if err := s.codes.Release(ctx, it.Code); err != nil {
			s.log.Errorw("Delete: failed to release code", "code", it.Code, "error", err)
		}
		s.layout.Purge(it.Code)
	}
	return nil
}

// Get возвращает товар пользователя.
func (s *ItemService) Get(ctx context.Context, userID int64, id string) (*model.Item, error) {
	return s.items.GetByID(ctx, userID, id)
}

// List возвращает все товары пользователя.
func (s *ItemService) List(ctx context.Context, userID int64) ([]model.Item, error) {
	return s.items.ListByUser(ctx, userID)
}

// relocateAssets переносит каждое ассет-поле в каталог кода товара.
// Для одиночных видеополей и вложений категория выбирается по смыслу поля.
func (s *ItemService) relocateAssets(it *model.Item, in ItemInput) {
	it.Cover = s.mig.Relocate(in.Cover, it.Code, assets.CategoryImages)
	it.PreviewVideo = s.mig.Relocate(in.PreviewVideo, it.Code, assets.CategoryVideos)
	it.DemoVideo = s.mig.Relocate(in.DemoVideo, it.Code, assets.CategoryVideos)
	it.Gallery = s.mig.RelocateAll(in.Gallery, it.Code, assets.CategoryImages)
	it.Attachments = s.mig.RelocateAll(in.Attachments, it.Code, assets.CategoryFiles)
}

// keepSet собирает имена файлов, на которые ссылается сохранённая запись.
// Имя попадает в набор только если ссылка указывает в каталог именно этого
// кода; внешние URL и чужие коды файлов не защищают.
func (s *ItemService) keepSet(it *model.Item) assets.Keep {
	var k assets.Keep

	if n, ok := s.layout.BasenameInCode(it.Cover, it.Code, assets.CategoryImages); ok {
		k.Images = append(k.Images, n)
	}
	for _, ref := range it.Gallery {
		if n, ok := s.layout.BasenameInCode(ref, it.Code, assets.CategoryImages); ok {
			k.Images = append(k.Images, n)
		}
	}
	if n, ok := s.layout.BasenameInCode(it.PreviewVideo, it.Code, assets.CategoryVideos); ok {
		k.Videos = append(k.Videos, n)
	}
	if n, ok := s.layout.BasenameInCode(it.DemoVideo, it.Code, assets.CategoryVideos); ok {
		k.Videos = append(k.Videos, n)
	}
	for _, ref := range it.Attachments {
		if n, ok := s.layout.BasenameInCode(ref, it.Code, assets.CategoryFiles); ok {
			k.Files = append(k.Files, n)
		}
	}
	return k
}
