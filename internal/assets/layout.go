// Package assets управляет жизненным циклом файловых ассетов товаров:
// каталог кода с типовыми подкаталогами, перенос ссылок внутрь каталога
// и зачистка осиротевших файлов.
package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Category — тип ассета; определяет, в какой типовой подкаталог он попадает.
type Category string

const (
	CategoryImages Category = "images"
	CategoryVideos Category = "videos"
	CategoryFiles  Category = "files"
)

// itemsDir — сегмент пути между корнем хранилища и каталогом кода.
const itemsDir = "items"

var categories = [...]Category{CategoryImages, CategoryVideos, CategoryFiles}

// validCategory сообщает, является ли строка одной из трёх типовых категорий.
func validCategory(s string) bool {
	switch Category(s) {
	case CategoryImages, CategoryVideos, CategoryFiles:
		return true
	}
	return false
}

// Layout вычисляет и поддерживает раскладку каталога ассетов:
// {root}/items/{code}/{images|videos|files}/. Все компоненты пакета ходят
// к файловой системе только через него, поэтому инвариант «каталог кода
// существует» централизован здесь.
type Layout struct {
	root   string
	prefix string // публичный префикс ссылок, например "/uploads"
	log    *zap.SugaredLogger
}

// NewLayout создаёт раскладку над корнем хранилища root с публичным
// префиксом ссылок prefix.
func NewLayout(root, prefix string, log *zap.SugaredLogger) *Layout {
	return &Layout{
		root:   filepath.Clean(root),
		prefix: strings.TrimRight(prefix, "/"),
		log:    log,
	}
}

// Root возвращает нормализованный корень хранилища.
func (l *Layout) Root() string { return l.root }

// DirFor возвращает каталог кода, создав его и все три типовых подкаталога,
// если их ещё нет. Идемпотентна: повторный вызов — no-op без ошибки.
// Каталог создаётся жадно, чтобы у товара без ассетов тоже было
// стабильное место.
func (l *Layout) DirFor(code int) (string, error) {
	dir := filepath.Join(l.root, itemsDir, strconv.Itoa(code))
	for _, cat := range categories {
		if err := os.MkdirAll(filepath.Join(dir, string(cat)), 0o755); err != nil {
			return "", fmt.Errorf("create asset dir for code %d: %w", code, err)
		}
	}
	return dir, nil
}

// SubdirFor — композиция DirFor с именем категории.
func (l *Layout) SubdirFor(code int, cat Category) (string, error) {
	dir, err := l.DirFor(code)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, string(cat)), nil
}

// Purge рекурсивно удаляет каталог кода целиком. Вызывается только при
// удалении товара, после освобождения кода. Сбой удаления логируется и
// гасится: отсутствующий каталог — не ошибка, а проблема прав не должна
// блокировать логическое удаление товара.
func (l *Layout) Purge(code int) {
	dir := filepath.Join(l.root, itemsDir, strconv.Itoa(code))
	if err := os.RemoveAll(dir); err != nil {
		l.log.Warnw("Purge: failed to remove asset dir", "code", code, "dir", dir, "error", err)
	}
}

// Ref собирает публичную ссылку на файл внутри каталога кода:
// {prefix}/items/{code}/{category}/{name}.
func (l *Layout) Ref(code int, cat Category, name string) string {
	return l.prefix + "/" + path.Join(itemsDir, strconv.Itoa(code), string(cat), name)
}

// BasenameInCode возвращает имя файла из ссылки, только если ссылка указывает
// внутрь каталога именно этого кода и категории. Любая другая ссылка —
// внешний URL, чужой код — имени не даёт: она не защищает файлы этого кода
// от зачистки и не может затронуть чужие.
func (l *Layout) BasenameInCode(ref string, code int, cat Category) (string, bool) {
	dirRef := l.prefix + "/" + path.Join(itemsDir, strconv.Itoa(code), string(cat)) + "/"
	if !strings.HasPrefix(ref, dirRef) {
		return "", false
	}
	name := strings.TrimPrefix(ref, dirRef)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// ownedByAnyCode структурно проверяет, лежит ли абсолютный путь внутри
// каталога какого-либо кода: items/<целое>/<категория>/... относительно корня.
// Разбор по сегментам, а не поиском подстроки, чтобы имя файла со словом
// "items" не выдавало ложное срабатывание.
func (l *Layout) ownedByAnyCode(abs string) bool {
	rel, err := filepath.Rel(l.root, abs)
	if err != nil {
		return false
	}
	seg := strings.Split(filepath.ToSlash(rel), "/")
	if len(seg) < 4 || seg[0] != itemsDir {
		return false
	}
	if _, err := strconv.Atoi(seg[1]); err != nil {
		return false
	}
	return validCategory(seg[2])
}
