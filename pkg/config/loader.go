package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：当前目录 -> ./.tv -> ~/.tv
		viper.AddConfigPath(".")
		viper.AddConfigPath(".tv")
		viper.AddConfigPath(filepath.Join(home, ".tv"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 环境变量: TV_DATABASE_HOST -> database.host
	viper.SetEnvPrefix("TV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		// 只有环境变量和默认值也能工作
	case err != nil:
		return fmt.Errorf("fatal error config file: %w", err)
	}

	setupLogger(viper.GetString("log.level"))
	if used := viper.ConfigFileUsed(); used != "" && err == nil {
		log.Debug().Str("file", used).Msg("using config file")
	}
	return nil
}

// setupLogger 基础设施日志写到 stderr，不干扰命令输出
func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func setDefaults() {
	// 元数据库：默认使用仓库内的 SQLite，也可以切到 postgres
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")

	wd, _ := os.Getwd()
	viper.SetDefault("storage.path", filepath.Join(wd, ".tv", "objects"))
	viper.SetDefault("storage.type", "disk")
	viper.SetDefault("storage.compress", false)

	viper.SetDefault("s3.region", "us-east-1")
	viper.SetDefault("cache.ttl", "24h")

	viper.SetDefault("server.addr", "localhost:50051")
	viper.SetDefault("log.level", "warn")

	if u := os.Getenv("USER"); u != "" {
		viper.SetDefault("user.name", u)
	} else {
		viper.SetDefault("user.name", "unknown")
	}
}
