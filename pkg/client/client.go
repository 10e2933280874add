package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	hashrpc "hashvault/pkg/api/hashrpc/v1"
	"hashvault/pkg/types"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// HashClient 封装了与 hashvault 服务端的连接
// 服务端返回的文本在这里解析回 types.Hash，调用方不接触字符串
type HashClient struct {
	conn *grpc.ClientConn
	rpc  hashrpc.HashServiceClient
}

// NewHashClient 只负责创建对象，不等待连接就绪
// extra 追加在默认选项之后 (测试里用来注入 bufconn dialer)
func NewHashClient(addr string, extra ...grpc.DialOption) (*HashClient, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(1024*1024*1024), // 1GB
			grpc.MaxCallSendMsgSize(1024*1024*1024), // 1GB
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                10 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	// NewClient 立即返回，连接在后台建立；这里的错误通常只是地址格式不对
	conn, err := grpc.NewClient(addr, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", addr, err)
	}

	return &HashClient{
		conn: conn,
		rpc:  hashrpc.NewHashServiceClient(conn),
	}, nil
}

func (c *HashClient) Digest(ctx context.Context, data []byte) (types.Hash, error) {
	resp, err := c.rpc.Digest(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return types.Hash{}, err
	}
	return parseReply(resp.GetValue())
}

// Resolve 支持完整哈希或短哈希
func (c *HashClient) Resolve(ctx context.Context, ref string) (types.Hash, error) {
	resp, err := c.rpc.Resolve(ctx, wrapperspb.String(ref))
	if err != nil {
		return types.Hash{}, err
	}
	return parseReply(resp.GetValue())
}

func (c *HashClient) Has(ctx context.Context, h types.Hash) (bool, error) {
	resp, err := c.rpc.Has(ctx, wrapperspb.String(h.String()))
	if err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}

// Head 第二个返回值为 false 表示远端仓库还没有提交
func (c *HashClient) Head(ctx context.Context) (types.Hash, bool, error) {
	resp, err := c.rpc.Head(ctx, &emptypb.Empty{})
	if err != nil {
		return types.Hash{}, false, err
	}
	if resp.GetValue() == "" {
		return types.Hash{}, false, nil
	}
	h, err := parseReply(resp.GetValue())
	if err != nil {
		return types.Hash{}, false, err
	}
	return h, true, nil
}

// Download 把远端文件写入 w，返回写入的字节数
func (c *HashClient) Download(ctx context.Context, ref string, w io.Writer) (int64, error) {
	stream, err := c.rpc.Download(ctx, wrapperspb.String(ref))
	if err != nil {
		return 0, err
	}

	var total int64
	for {
		frame, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		n, err := w.Write(frame.GetValue())
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("failed to write download: %w", err)
		}
	}
}

// Close 关闭底层连接
func (c *HashClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func parseReply(s string) (types.Hash, error) {
	h, err := types.ParseHash(s)
	if err != nil {
		return types.Hash{}, fmt.Errorf("server returned malformed hash %q: %w", s, err)
	}
	return h, nil
}
