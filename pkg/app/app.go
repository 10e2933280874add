package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"hashvault/pkg/index"
	"hashvault/pkg/ingester"
	"hashvault/pkg/meta"
	"hashvault/pkg/refs"
	"hashvault/pkg/storage"
	"hashvault/pkg/storage/cache"
	"hashvault/pkg/storage/disk"
	"hashvault/pkg/storage/s3"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gorm.io/gorm/logger"
)

// App 是整个应用程序的依赖容器
type App struct {
	Store    storage.Store
	Index    *index.Index
	Meta     *meta.Repository
	Refs     *refs.Manager
	Ingester *ingester.Ingester
	RepoPath string

	closers []func() error
}

// NewApp 按 Viper 配置组装全部组件，不依赖具体的 CLI 命令
func NewApp(ctx context.Context) (*App, error) {
	storePath := viper.GetString("storage.path")
	if storePath == "" {
		return nil, fmt.Errorf("storage path not set")
	}

	// storePath: .../.tv/objects
	// repoPath:  .../.tv
	repoPath := filepath.Dir(storePath)

	a := &App{RepoPath: repoPath}

	store, err := initStore(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	if c, ok := store.(*cache.CachedStore); ok {
		a.closers = append(a.closers, c.Close)
	}
	a.Store = store
	a.Ingester = ingester.NewIngester(store)

	db, err := initMeta(ctx, repoPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to init metadata: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	a.Meta = meta.NewRepository(db)
	a.Refs = refs.NewManager(a.Meta)

	a.Index, err = index.NewIndex(filepath.Join(repoPath, "index.json"))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	return a, nil
}

// Close 释放数据库与缓存连接
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// initStore 根据 storage.type 创建存储，配置了 cache.redis_url 时外面套一层缓存
func initStore(ctx context.Context, repoPath string) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)

	switch typ := viper.GetString("storage.type"); typ {
	case "", "disk":
		path := viper.GetString("storage.path")
		if path == "" {
			path = filepath.Join(repoPath, "objects")
		}
		var opts []disk.Option
		if viper.GetBool("storage.compress") {
			opts = append(opts, disk.WithCompression())
		}
		store, err = disk.NewAdapter(path, opts...)
	case "s3":
		cfg := s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          viper.GetString("s3.bucket"),
			AccessKeyID:     viper.GetString("s3.access_key"),
			SecretAccessKey: viper.GetString("s3.secret_key"),
		}
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 bucket is required (set s3.bucket)")
		}
		store, err = s3.NewAdapter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %q", typ)
	}
	if err != nil {
		return nil, err
	}

	redisURL := viper.GetString("cache.redis_url")
	if redisURL == "" {
		return store, nil
	}
	cached, err := cache.NewCachedStore(store, cache.Config{
		RedisURL: redisURL,
		TTL:      viper.GetDuration("cache.ttl"),
	})
	if err != nil {
		// 缓存不是必需的，连不上就直接用底层存储
		log.Warn().Err(err).Msg("redis cache disabled")
		return store, nil
	}
	return cached, nil
}

func initMeta(ctx context.Context, repoPath string) (*meta.DB, error) {
	cfg := meta.Config{
		Driver:   viper.GetString("database.driver"),
		Path:     viper.GetString("database.path"),
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.dbname"),
		SSLMode:  viper.GetString("database.sslmode"),
	}
	// debug 级别时打印 SQL
	if viper.GetString("log.level") == "debug" {
		cfg.LogLevel = logger.Info
	}
	if cfg.Driver == meta.DriverSQLite && cfg.Path == "" {
		cfg.Path = filepath.Join(repoPath, "meta.db")
	}
	return meta.NewDB(ctx, cfg)
}
