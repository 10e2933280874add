package ingester

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
	"runtime"

	"hashvault/pkg/chunker"
	"hashvault/pkg/core"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"golang.org/x/sync/errgroup"
)

// readBufferSize 每次从流中读取的字节数
const readBufferSize = 1 << 20

type Ingester struct {
	store   storage.Store
	chunker *chunker.Chunker
	workers int
}

func NewIngester(store storage.Store) *Ingester {
	return &Ingester{
		store:   store,
		chunker: chunker.NewChunker(),
		workers: runtime.GOMAXPROCS(0),
	}
}

// Result 是一次导入的产出
type Result struct {
	Node *core.FileNode
	// Linear 是整个文件内容的 SHA-256，与 Merkle Root (Node.ID) 不同
	Linear types.LinearHash
}

// IngestFile 流式读取、切分并并发存储，返回 FileNode
func (ing *Ingester) IngestFile(ctx context.Context, reader io.Reader) (*core.FileNode, error) {
	res, err := ing.Ingest(ctx, reader)
	if err != nil {
		return nil, err
	}
	return res.Node, nil
}

// Ingest 与 IngestFile 相同，额外返回文件的线性哈希
func (ing *Ingester) Ingest(ctx context.Context, reader io.Reader) (*Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)

	linear := sha256.New()
	var links []core.ChunkLink

	// 切分在当前 goroutine 中顺序进行，links 的顺序即文件顺序；worker 只负责存储
	emit := func(data []byte) {
		chunk := core.NewChunk(data)
		idx := len(links)
		links = append(links, core.NewChunkLink(chunk))

		g.Go(func() error {
			if err := ing.store.Put(gctx, chunk); err != nil {
				return fmt.Errorf("failed to store chunk %d: %w", idx, err)
			}
			return nil
		})
	}

	readErr := ing.split(gctx, reader, linear, emit)
	// worker 的错误优先，它通常是 readErr (ctx canceled) 的原因
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}

	builder := core.NewFileNodeBuilder()
	for _, l := range links {
		builder.AddLink(l)
	}
	fileNode, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create file node: %w", err)
	}

	if err := ing.store.Put(ctx, fileNode); err != nil {
		return nil, fmt.Errorf("failed to store file node: %w", err)
	}

	sum, err := types.FromBytes(linear.Sum(nil))
	if err != nil {
		return nil, err
	}

	return &Result{Node: fileNode, Linear: types.LinearHash(sum)}, nil
}

// split 按 CDC 切点把流拆成块，未找到切点的尾部与下一次读取拼接
func (ing *Ingester) split(ctx context.Context, r io.Reader, linear hash.Hash, emit func([]byte)) error {
	buf := make([]byte, readBufferSize)
	var pending []byte
	eof := false

	for !eof {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := io.ReadFull(r, buf)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			eof = true
		case err != nil:
			return fmt.Errorf("failed to read file: %w", err)
		}
		linear.Write(buf[:n])
		pending = append(pending, buf[:n]...)

		for len(pending) > 0 {
			size, ok := ing.chunker.Next(pending)
			if !ok && !eof {
				break
			}
			// 拷贝一份，pending 的底层数组会被复用
			data := make([]byte, size)
			copy(data, pending[:size])
			emit(data)
			pending = pending[size:]
		}
		// 整理剩余数据，避免底层数组无限增长
		pending = append([]byte(nil), pending...)
	}

	return nil
}
