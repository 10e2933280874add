package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hashvault/pkg/app"
	"hashvault/pkg/config"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// noAppAnnotation 标记不需要打开仓库的命令 (它自己或任一父命令带上即可)
const noAppAnnotation = "hashvault/no-app"

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	TV *app.App
)

var rootCmd = &cobra.Command{
	Use:           "tv",
	Short:         "hashvault: content-addressed data versioning",
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsApp(cmd) {
			return nil
		}
		// 测试里可能已经注入
		if TV != nil {
			return nil
		}

		var err error
		TV, err = app.NewApp(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to open repository: %w\n(Did you run 'tv init'?)", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if TV == nil || !needsApp(cmd) {
			return nil
		}
		err := TV.Close()
		TV = nil
		return err
	},
}

// Execute 是入口
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tv/config.yaml)")

	// 既可以写在 yaml 里，也可以用 flag 覆盖
	rootCmd.PersistentFlags().String("storage-path", "", "directory to store objects")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	for key, flag := range map[string]string{
		"storage.path": "storage-path",
		"log.level":    "log-level",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintln(os.Stderr, "failed to bind flag:", err)
			os.Exit(1)
		}
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	log.Debug().Str("storage", viper.GetString("storage.path")).Msg("config loaded")
}

func needsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[noAppAnnotation]; ok {
			return false
		}
	}
	// help / completion 之类的内置命令
	return cmd.Runnable() && cmd.Name() != "help" && cmd.Name() != cobra.ShellCompRequestCmd
}

// cmdContext 直接调用 RunE (测试) 时 cmd 上没有 context
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// workTree 工作区根目录 (.tv 的上一级)
func workTree() string {
	return filepath.Dir(TV.RepoPath)
}

// repoRelative 把用户输入的路径转换为相对于工作区根目录的路径
func repoRelative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(workTree(), abs)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the repository", path)
	}
	return rel, nil
}
