package commands

import (
	"fmt"
	"io"
	"os"

	"hashvault/pkg/client"
	"hashvault/pkg/types"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	remoteAddr string
	remoteOut  string
)

// dialRemote 地址优先取 --addr，其次是 server.addr
func dialRemote() (*client.HashClient, error) {
	addr := remoteAddr
	if addr == "" {
		addr = viper.GetString("server.addr")
	}
	return client.NewHashClient(addr)
}

// withRemote 为子命令打开连接，执行完毕后关闭
func withRemote(fn func(cmd *cobra.Command, c *client.HashClient, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := dialRemote()
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(cmd, c, args)
	}
}

var remoteCmd = &cobra.Command{
	Use:         "remote",
	Short:       "Talk to a hashvault server",
	Annotations: map[string]string{noAppAnnotation: ""},
}

var remoteDigestCmd = &cobra.Command{
	Use:   "digest [file]",
	Short: "Let the server hash a file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withRemote(func(cmd *cobra.Command, c *client.HashClient, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		h, err := c.Digest(cmdContext(cmd), data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	}),
}

var remoteResolveCmd = &cobra.Command{
	Use:   "resolve [hash-prefix]",
	Short: "Expand a short hash on the server",
	Args:  cobra.ExactArgs(1),
	RunE: withRemote(func(cmd *cobra.Command, c *client.HashClient, args []string) error {
		h, err := c.Resolve(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	}),
}

var remoteHasCmd = &cobra.Command{
	Use:   "has [hash]",
	Short: "Check whether the server stores an object",
	Args:  cobra.ExactArgs(1),
	RunE: withRemote(func(cmd *cobra.Command, c *client.HashClient, args []string) error {
		h, err := types.ParseHash(args[0])
		if err != nil {
			return fmt.Errorf("invalid hash %q: %w", args[0], err)
		}
		ok, err := c.Has(cmdContext(cmd), h)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	}),
}

var remoteHeadCmd = &cobra.Command{
	Use:   "head",
	Short: "Show the server's HEAD",
	Args:  cobra.NoArgs,
	RunE: withRemote(func(cmd *cobra.Command, c *client.HashClient, args []string) error {
		h, ok, err := c.Head(cmdContext(cmd))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "(no commits yet)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	}),
}

var remoteDownloadCmd = &cobra.Command{
	Use:   "download [hash]",
	Short: "Download a file from the server",
	Args:  cobra.ExactArgs(1),
	RunE: withRemote(func(cmd *cobra.Command, c *client.HashClient, args []string) error {
		w := cmd.OutOrStdout()
		if remoteOut != "" {
			f, err := os.Create(remoteOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		n, err := c.Download(cmdContext(cmd), args[0], w)
		if err != nil {
			return err
		}
		if remoteOut != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✅ wrote %d bytes to %s\n", n, remoteOut)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.AddCommand(remoteDigestCmd, remoteResolveCmd, remoteHasCmd, remoteHeadCmd, remoteDownloadCmd)
	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "", "server address (default server.addr)")
	remoteDownloadCmd.Flags().StringVarP(&remoteOut, "output", "o", "", "write to file instead of stdout")
}
