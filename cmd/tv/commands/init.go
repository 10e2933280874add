package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"hashvault/pkg/ignore"

	"github.com/spf13/cobra"
)

// defaultIgnore 写入新仓库的 .tvignore
const defaultIgnore = `# hashvault ignore rules (gitignore syntax)
*.tmp
__pycache__/
`

var initCmd = &cobra.Command{
	Use:         "init [dir]",
	Short:       "Initialize a hashvault repository",
	Long:        `Create an empty hashvault repository, or do nothing if one already exists.`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{noAppAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		root, err := filepath.Abs(root)
		if err != nil {
			return err
		}

		repoPath := filepath.Join(root, ".tv")
		if _, err := os.Stat(repoPath); err == nil {
			fmt.Fprintf(out, "⚠️  hashvault repository already exists in %s\n", repoPath)
			return nil
		}

		// .tv/objects 存放所有对象，meta.db 和 index.json 在首次打开时创建
		if err := os.MkdirAll(filepath.Join(repoPath, "objects"), 0755); err != nil {
			return fmt.Errorf("failed to create repo directory: %w", err)
		}

		ignorePath := filepath.Join(root, ignore.IgnoreFile)
		if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
			if err := os.WriteFile(ignorePath, []byte(defaultIgnore), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", ignore.IgnoreFile, err)
			}
		}

		fmt.Fprintf(out, "✅ Initialized empty hashvault repository in %s\n", repoPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
