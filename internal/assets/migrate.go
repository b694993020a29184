package assets

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Migrator переносит ссылки на ассеты внутрь каталога их кода: декодирует
// inline-картинки, перемещает файлы из общей зоны загрузки и копирует файлы,
// уже принадлежащие какому-то коду (дублирование товара).
type Migrator struct {
	layout *Layout
	log    *zap.SugaredLogger
}

// NewMigrator создаёт движок миграции поверх раскладки layout.
func NewMigrator(layout *Layout, log *zap.SugaredLogger) *Migrator {
	return &Migrator{layout: layout, log: log}
}

// inline-картинка: data:image/{png|jpeg|jpg|webp};base64,{payload}
var dataImageRe = regexp.MustCompile(`^data:image/(png|jpe?g|webp);base64,(.+)$`)

// Relocate приводит ссылку ref к виду «внутри каталога кода code» и
// возвращает новую публичную ссылку. Политика деградации: любая ошибка
// файловой системы логируется, а исходная ссылка возвращается как есть —
// потерять ссылку пользователя хуже, чем оставить её неперенесённой.
//
// Порядок разбора:
//  1. пустая ссылка — no-op;
//  2. inline base64-картинка (только для категории images) — декодировать
//     и записать в подкаталог images;
//  3. нормализация: отрезать query/fragment и всё до маркера корня загрузок,
//     если вызвавший передал полный URL;
//  4. ссылка вне корня загрузок — чужой ассет, вернуть без изменений;
//  5. файл под корнем — скопировать, если источник уже принадлежит
//     какому-то коду, иначе перенести; существующий файл в точке назначения
//     перезаписывается (последняя запись побеждает).
func (m *Migrator) Relocate(ref string, code int, cat Category) string {
	if ref == "" {
		return ref
	}

	if cat == CategoryImages {
		if sub := dataImageRe.FindStringSubmatch(ref); sub != nil {
			return m.writeInline(ref, sub[1], sub[2], code)
		}
	}

	rel := m.normalize(ref)
	if rel == "" {
		// не под нашим префиксом — внешняя ссылка, этим деревом не управляем
		return ref
	}

	subdir, err := m.layout.SubdirFor(code, cat)
	if err != nil {
		m.log.Warnw("Relocate: cannot ensure asset dir", "code", code, "category", cat, "error", err)
		return ref
	}

	src := filepath.Join(m.layout.root, filepath.FromSlash(rel))
	dst := filepath.Join(subdir, filepath.Base(src))

	if src == dst {
		// уже на месте (повтор после успешного переноса)
		return ref
	}

	if _, err := os.Stat(src); err != nil {
		m.log.Warnw("Relocate: source file missing", "ref", ref, "src", src, "error", err)
		return ref
	}

	// перезапись: новый файл с тем же именем всегда побеждает
	if _, err := os.Stat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			m.log.Warnw("Relocate: failed to replace destination", "dst", dst, "error", err)
			return ref
		}
	}

	if m.layout.ownedByAnyCode(src) {
		// источник принадлежит каталогу какого-то кода — оставляем оригинал владельцу
		if err := copyFile(src, dst); err != nil {
			m.log.Warnw("Relocate: copy failed", "src", src, "dst", dst, "error", err)
			return ref
		}
	} else {
		// временный файл из общей зоны загрузки — забираем
		if err := os.Rename(src, dst); err != nil {
			m.log.Warnw("Relocate: move failed", "src", src, "dst", dst, "error", err)
			return ref
		}
	}

	return m.layout.Ref(code, cat, filepath.Base(dst))
}

// RelocateAll применяет Relocate к каждой ссылке среза (галерея, вложения).
func (m *Migrator) RelocateAll(refs []string, code int, cat Category) []string {
	if len(refs) == 0 {
		return refs
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, m.Relocate(r, code, cat))
	}
	return out
}

// writeInline декодирует base64-картинку и пишет её в подкаталог images
// под синтезированным устойчивым к коллизиям именем.
func (m *Migrator) writeInline(ref, subtype, payload string, code int) string {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		m.log.Warnw("Relocate: invalid base64 image payload", "code", code, "error", err)
		return ref
	}

	subdir, err := m.layout.SubdirFor(code, CategoryImages)
	if err != nil {
		m.log.Warnw("Relocate: cannot ensure asset dir", "code", code, "error", err)
		return ref
	}

	ext := subtype
	if ext == "jpeg" {
		ext = "jpg"
	}
	name := fmt.Sprintf("cover-%d-%s.%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	if err := os.WriteFile(filepath.Join(subdir, name), data, 0o644); err != nil {
		m.log.Warnw("Relocate: failed to write inline image", "code", code, "name", name, "error", err)
		return ref
	}

	return m.layout.Ref(code, CategoryImages, name)
}

// normalize отрезает query/fragment и приводит ссылку к пути относительно
// корня загрузок. Если префикс корня встречается в середине строки (вызвавший
// передал полный URL), всё до него отбрасывается. Пустой результат означает
// «ссылка не наша».
func (m *Migrator) normalize(ref string) string {
	s := ref
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	marker := m.layout.prefix + "/"
	if i := strings.Index(s, marker); i > 0 {
		s = s[i:]
	}
	if !strings.HasPrefix(s, marker) {
		return ""
	}
	rel := strings.TrimPrefix(s, marker)
	if rel == "" || strings.Contains(rel, "..") {
		return ""
	}
	return rel
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
