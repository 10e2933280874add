package ignore

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile 仓库根目录下的忽略规则文件
const IgnoreFile = ".tvignore"

// Matcher 封装了忽略逻辑
// 它负责判断一个文件是否应该被 tv add 忽略
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 仓库根目录（用于查找 .tvignore 文件）
func NewMatcher(rootPath string) (*Matcher, error) {
	// 1. 定义系统级默认忽略规则 (Hardcoded Defaults)
	// 这些规则强制生效，防止用户误操作导致严重问题
	defaultRules := []string{
		// --- 关键系统目录 ---
		".tv",  // 仓库元数据目录，索引它会无限递归
		".git",

		// --- 安全与配置 ---
		"config.yaml", // 可能包含 S3 Secret Key 与数据库密码
		".env",

		// --- 常见垃圾文件 ---
		".DS_Store", // macOS
		"Thumbs.db", // Windows
	}

	var ignorer *gitignore.GitIgnore
	var err error

	// 2. 用户的 .tvignore 与默认规则合并编译
	ignoreFilePath := filepath.Join(rootPath, IgnoreFile)

	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
	} else {
		ignorer = gitignore.CompileIgnoreLines(defaultRules...)
	}

	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Matches 检查给定的路径是否匹配忽略规则
// path 是相对于仓库根目录的路径 (例如 "data/model.bin")，true 表示应该忽略
func (m *Matcher) Matches(path string) bool {
	if m.ignorer == nil {
		return false
	}
	// 目录可能以 "/" 结尾传入
	path = strings.TrimSuffix(filepath.ToSlash(path), "/")
	if path == "" || path == "." {
		return false
	}
	return m.ignorer.MatchesPath(path)
}
