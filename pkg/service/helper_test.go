package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"hashvault/pkg/app"
	"hashvault/pkg/index"
	"hashvault/pkg/ingester"
	"hashvault/pkg/meta"
	"hashvault/pkg/refs"
	"hashvault/pkg/storage/disk"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestApp 是所有 Service 测试共享的基础设施
func setupTestApp(t *testing.T) *app.App {
	tmpDir := t.TempDir()

	store, err := disk.NewAdapter(filepath.Join(tmpDir, "objects"))
	require.NoError(t, err)

	idx, err := index.NewIndex(filepath.Join(tmpDir, "index.json"))
	require.NoError(t, err)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := meta.NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(meta.Models()...))
	repo := meta.NewRepository(metaDB)

	return &app.App{
		Store:    store,
		Index:    idx,
		Meta:     repo,
		Refs:     refs.NewManager(repo),
		Ingester: ingester.NewIngester(store),
		RepoPath: tmpDir,
	}
}

// mockDownloadStream 捕获服务端发出的每一帧
type mockDownloadStream struct {
	grpc.ServerStream
	ctx    context.Context
	frames [][]byte
}

func (m *mockDownloadStream) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

func (m *mockDownloadStream) Send(resp *wrapperspb.BytesValue) error {
	m.frames = append(m.frames, resp.GetValue())
	return nil
}

func (m *mockDownloadStream) joined() []byte {
	var out []byte
	for _, f := range m.frames {
		out = append(out, f...)
	}
	return out
}
