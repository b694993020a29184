package assets

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Keep — набор имён файлов по категориям, которые должны остаться на диске
// после зачистки каталога кода.
type Keep struct {
	Images []string
	Videos []string
	Files  []string
}

func (k Keep) names(cat Category) []string {
	switch cat {
	case CategoryImages:
		return k.Images
	case CategoryVideos:
		return k.Videos
	case CategoryFiles:
		return k.Files
	}
	return nil
}

// Sweeper сверяет содержимое каталога кода с keep-набором и удаляет
// осиротевшие файлы.
type Sweeper struct {
	layout *Layout
	log    *zap.SugaredLogger
}

// NewSweeper создаёт зачистку поверх раскладки layout.
func NewSweeper(layout *Layout, log *zap.SugaredLogger) *Sweeper {
	return &Sweeper{layout: layout, log: log}
}

// Sweep удаляет из каждого типового подкаталога кода все файлы, имён которых
// нет в keep-наборе. Листинг ограничен подкаталогами самого кода, поэтому
// чужие коды не затрагиваются, что бы ни лежало в keep. Сбой удаления
// отдельного файла логируется и пропускается, зачистка остальных продолжается.
// Повторный запуск с тем же keep-набором — no-op.
func (s *Sweeper) Sweep(code int, keep Keep) {
	for _, cat := range categories {
		dir, err := s.layout.SubdirFor(code, cat)
		if err != nil {
			s.log.Warnw("Sweep: cannot ensure asset dir", "code", code, "category", cat, "error", err)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			s.log.Warnw("Sweep: cannot list asset dir", "code", code, "dir", dir, "error", err)
			continue
		}

		kept := make(map[string]struct{})
		for _, n := range keep.names(cat) {
			kept[n] = struct{}{}
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, ok := kept[e.Name()]; ok {
				continue
			}
			p := filepath.Join(dir, e.Name())
			if err := os.Remove(p); err != nil {
				s.log.Warnw("Sweep: failed to delete orphan", "code", code, "file", p, "error", err)
				continue
			}
			s.log.Infow("Sweep: deleted orphan asset", "code", code, "category", cat, "file", e.Name())
		}
	}
}
