package client

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"

	"hashvault/pkg/app"
	"hashvault/pkg/core"
	"hashvault/pkg/index"
	"hashvault/pkg/ingester"
	"hashvault/pkg/meta"
	"hashvault/pkg/refs"
	"hashvault/pkg/server"
	"hashvault/pkg/storage/disk"
	"hashvault/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRemote 启动一个基于 bufconn 的内存服务端，返回连上它的客户端
func setupRemote(t *testing.T) (*HashClient, *app.App) {
	t.Helper()
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

	a := &app.App{
		Store:    store,
		Index:    idx,
		Meta:     repo,
		Refs:     refs.NewManager(repo),
		Ingester: ingester.NewIngester(store),
		RepoPath: tmpDir,
	}

	lis := bufconn.Listen(1024 * 1024)
	srv := server.New(a)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewHashClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, a
}

func TestHashClient_Digest(t *testing.T) {
	c, _ := setupRemote(t)

	h, err := c.Digest(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, types.Sum256("hello"), h)
}

func TestHashClient_HasAndResolve(t *testing.T) {
	c, a := setupRemote(t)
	ctx := context.Background()

	chunk := core.NewChunk([]byte("over the wire"))
	require.NoError(t, a.Store.Put(ctx, chunk))

	ok, err := c.Has(ctx, chunk.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Has(ctx, types.Sum256("absent"))
	require.NoError(t, err)
	assert.False(t, ok)

	h, err := c.Resolve(ctx, chunk.ID().Short())
	require.NoError(t, err)
	assert.Equal(t, chunk.ID(), h)

	_, err = c.Resolve(ctx, "zz")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHashClient_Head(t *testing.T) {
	c, a := setupRemote(t)
	ctx := context.Background()

	_, ok, err := c.Head(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	head := types.Sum256("remote-commit")
	require.NoError(t, a.Refs.UpdateHead(ctx, head, 0))

	got, ok, err := c.Head(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, head, got)
}

func TestHashClient_Download(t *testing.T) {
	c, a := setupRemote(t)
	ctx := context.Background()

	content := bytes.Repeat([]byte("0123456789abcdef"), 16*1024)
	node, err := a.Ingester.IngestFile(ctx, bytes.NewReader(content))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := c.Download(ctx, node.ID().String(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)
	assert.Equal(t, content, buf.Bytes())

	_, err = c.Download(ctx, types.Sum256("ghost").String(), &bytes.Buffer{})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
