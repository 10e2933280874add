package exporter

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"hashvault/pkg/core"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"github.com/dustin/go-humanize"
)

// PrintObject 读取对象并按类型打印 (tv cat)
func (e *Exporter) PrintObject(ctx context.Context, hash types.Hash, w io.Writer) error {
	data, err := storage.ReadAll(ctx, e.store, hash)
	if err != nil {
		return err
	}

	ok, err := PrintStructure(data, w)
	if err != nil || ok {
		return err
	}

	// 解不出结构的就是 Chunk (原始数据)
	fmt.Fprintf(w, "Type: Chunk (Raw Data)\nSize: %s\n\n", humanize.IBytes(uint64(len(data))))
	fmt.Fprintf(w, "(Raw binary data not shown, use 'tv cat -p ... > file' to save)\n")
	return nil
}

// PrintStructure 解析并打印结构化对象 (Commit/Tree/FileNode)
// 如果是原始数据(Chunk)，返回 false，由调用者决定如何展示
func PrintStructure(data []byte, w io.Writer) (bool, error) {
	var header struct {
		TypeVal core.ObjectType `cbor:"t"`
	}
	if err := core.DecodeObject(data, &header); err != nil {
		return false, nil
	}

	switch header.TypeVal {
	case core.TypeCommit:
		return true, printCommit(data, w)
	case core.TypeTree:
		return true, printTree(data, w)
	case core.TypeFileNode:
		return true, printFileNode(data, w)
	default:
		// 巧合能解码的二进制数据
		return false, nil
	}
}

func printCommit(data []byte, w io.Writer) error {
	c, err := core.DecodeCommit(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Type:    Commit\n")
	fmt.Fprintf(w, "Hash:    %s\n", c.ID())
	fmt.Fprintf(w, "Tree:    %s\n", c.TreeCid.Hash)
	for _, p := range c.Parents {
		fmt.Fprintf(w, "Parent:  %s\n", p.Hash)
	}
	fmt.Fprintf(w, "Author:  %s\n", c.Author)
	fmt.Fprintf(w, "Time:    %s\n", time.Unix(c.Timestamp, 0).Format(time.RFC3339))
	fmt.Fprintf(w, "\n%s\n", c.Message)
	return nil
}

func printTree(data []byte, w io.Writer) error {
	t, err := core.DecodeTree(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Type: Tree\n\n")

	// 类似 git ls-tree
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "TYPE\tHASH\tSIZE\tNAME\n")
	for _, entry := range t.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.Type, entry.Cid.Hash.Short(), fmtSize(entry.Size), entry.Name)
	}
	return tw.Flush()
}

func printFileNode(data []byte, w io.Writer) error {
	f, err := core.DecodeFileNode(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Type:      FileNode (ADL)\n")
	fmt.Fprintf(w, "TotalSize: %s\n", humanize.IBytes(uint64(f.TotalSize)))
	fmt.Fprintf(w, "Chunks:    %d\n", len(f.Chunks))
	return nil
}

func fmtSize(s int64) string {
	if s == 0 {
		return "-"
	}
	return humanize.IBytes(uint64(s))
}
