package service

import (
	"fmt"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ChunkSender 是 Download 流所需的最小集合，方便测试 Mock
type ChunkSender interface {
	Send(*wrapperspb.BytesValue) error
}

// StreamWriter 将服务端流包装为 io.Writer，供 exporter 使用
// 每次 Write 对应一帧
type StreamWriter struct {
	stream ChunkSender
}

func NewStreamWriter(stream ChunkSender) *StreamWriter {
	return &StreamWriter{stream: stream}
}

func (w *StreamWriter) Write(p []byte) (int, error) {
	// Send 会立即序列化 p，不需要拷贝
	if err := w.stream.Send(wrapperspb.Bytes(p)); err != nil {
		return 0, fmt.Errorf("grpc send failed: %w", err)
	}
	return len(p), nil
}
