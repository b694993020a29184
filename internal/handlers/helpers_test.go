package handlers_test

import (
	"ShopKeeper/internal/assets"
	"ShopKeeper/internal/config"
	"ShopKeeper/internal/handlers"
	"ShopKeeper/internal/middleware"
	"ShopKeeper/internal/model"
	"ShopKeeper/internal/repo"
	"ShopKeeper/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// Local light mocks
type hMockUserRepo struct{ mock.Mock }

func (m *hMockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*hMockUserRepo)(nil)

type hMockItemRepo struct{ mock.Mock }

func (m *hMockItemRepo) Create(ctx context.Context, it *model.Item) error {
	return m.Called(ctx, it).Error(0)
}
func (m *hMockItemRepo) GetByID(ctx context.Context, userID int64, id string) (*model.Item, error) {
	args := m.Called(ctx, userID, id)
	if v, ok := args.Get(0).(*model.Item); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockItemRepo) ListByUser(ctx context.Context, userID int64) ([]model.Item, error) {
	args := m.Called(ctx, userID)
	if v, ok := args.Get(0).([]model.Item); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *hMockItemRepo) UpdateWithVersion(ctx context.Context, it *model.Item, expectedVersion int64) (int64, error) {
	args := m.Called(ctx, it, expectedVersion)
	return args.Get(0).(int64), args.Error(1)
}
func (m *hMockItemRepo) SoftDelete(ctx context.Context, userID int64, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

var _ repo.ItemRepository = (*hMockItemRepo)(nil)

type hMockCodeRepo struct{ mock.Mock }

func (m *hMockCodeRepo) Allocate(ctx context.Context, itemID string) (int, error) {
	args := m.Called(ctx, itemID)
	return args.Int(0), args.Error(1)
}
func (m *hMockCodeRepo) Release(ctx context.Context, code int) error {
	return m.Called(ctx, code).Error(0)
}

var _ repo.CodeRepository = (*hMockCodeRepo)(nil)

// testEnv — всё, что нужно хендлер-тестам: роутер, конфиг, моки и раскладка
// над временным каталогом.
type testEnv struct {
	router http.Handler
	cfg    *config.Config
	users  *hMockUserRepo
	items  *hMockItemRepo
	codes  *hMockCodeRepo
	layout *assets.Layout
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{AuthSecret: "test-secret", UploadRoot: t.TempDir(), UploadPrefix: "/uploads"}
	logger := zap.NewNop().Sugar()

	ur := &hMockUserRepo{}
	ir := &hMockItemRepo{}
	cr := &hMockCodeRepo{}

	layout := assets.NewLayout(cfg.UploadRoot, cfg.UploadPrefix, logger)
	userSvc := service.NewUserService(ur)
	itemSvc := service.NewItemService(ir, cr, layout,
		assets.NewMigrator(layout, logger), assets.NewSweeper(layout, logger), logger)

	h := handlers.NewHandler(userSvc, itemSvc, logger, cfg)
	return &testEnv{router: h.Router, cfg: cfg, users: ur, items: ir, codes: cr, layout: layout}
}

func addAuth(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// stageUpload кладёт файл в общую зону загрузки под корнем раскладки.
func stageUpload(t *testing.T, layout *assets.Layout, rel string, data []byte) {
	t.Helper()
	p := filepath.Join(layout.Root(), filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}
