package assets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestSweeper(t *testing.T) (*Sweeper, *Layout) {
	t.Helper()
	l := newTestLayout(t)
	return NewSweeper(l, zap.NewNop().Sugar()), l
}

func writeAsset(t *testing.T, l *Layout, code int, cat Category, name string) {
	t.Helper()
	dir, err := l.SubdirFor(code, cat)
	if err != nil {
		t.Fatalf("subdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func listAssets(t *testing.T, l *Layout, code int, cat Category) []string {
	t.Helper()
	dir, err := l.SubdirFor(code, cat)
	if err != nil {
		t.Fatalf("subdir: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSweeper_RemovesOrphans(t *testing.T) {
	s, l := newTestSweeper(t)

	writeAsset(t, l, 7, CategoryImages, "a.png")
	writeAsset(t, l, 7, CategoryImages, "b.png")

	s.Sweep(7, Keep{Images: []string{"a.png"}})

	assert.Equal(t, []string{"a.png"}, listAssets(t, l, 7, CategoryImages))
}

func TestSweeper_AllCategories(t *testing.T) {
	s, l := newTestSweeper(t)

	writeAsset(t, l, 7, CategoryImages, "keep.png")
	writeAsset(t, l, 7, CategoryImages, "orphan.png")
	writeAsset(t, l, 7, CategoryVideos, "keep.mp4")
	writeAsset(t, l, 7, CategoryVideos, "orphan.mp4")
	writeAsset(t, l, 7, CategoryFiles, "orphan.pdf")

	s.Sweep(7, Keep{
		Images: []string{"keep.png"},
		Videos: []string{"keep.mp4"},
	})

	assert.Equal(t, []string{"keep.png"}, listAssets(t, l, 7, CategoryImages))
	assert.Equal(t, []string{"keep.mp4"}, listAssets(t, l, 7, CategoryVideos))
	assert.Empty(t, listAssets(t, l, 7, CategoryFiles))
}

func TestSweeper_ScopedToOwnCode(t *testing.T) {
	s, l := newTestSweeper(t)

	writeAsset(t, l, 7, CategoryImages, "mine.png")
	writeAsset(t, l, 8, CategoryImages, "other.png")

	// зачистка кода 7 с пустым keep не трогает файлы кода 8,
	// что бы ни лежало в keep-наборе
	s.Sweep(7, Keep{Images: []string{"other.png"}})

	assert.Empty(t, listAssets(t, l, 7, CategoryImages))
	assert.Equal(t, []string{"other.png"}, listAssets(t, l, 8, CategoryImages))
}

func TestSweeper_Idempotent(t *testing.T) {
	s, l := newTestSweeper(t)

	writeAsset(t, l, 7, CategoryImages, "a.png")
	writeAsset(t, l, 7, CategoryImages, "b.png")

	keep := Keep{Images: []string{"a.png"}}
	s.Sweep(7, keep)
	// повторный запуск с тем же keep — no-op
	s.Sweep(7, keep)

	assert.Equal(t, []string{"a.png"}, listAssets(t, l, 7, CategoryImages))
}

func TestSweeper_EnsuresDirsOnEmptyCode(t *testing.T) {
	s, l := newTestSweeper(t)

	// зачистка кода без единого файла не ошибается и оставляет раскладку на месте
	s.Sweep(11, Keep{})

	for _, cat := range []Category{CategoryImages, CategoryVideos, CategoryFiles} {
		assert.Empty(t, listAssets(t, l, 11, cat))
	}
}
