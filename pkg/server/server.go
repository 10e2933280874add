// Package server 组装 gRPC 服务端
package server

import (
	"time"

	hashrpc "hashvault/pkg/api/hashrpc/v1"
	"hashvault/pkg/app"
	"hashvault/pkg/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

// maxMsgSize 与客户端保持一致
const maxMsgSize = 1024 * 1024 * 1024

// New 创建已注册 HashService 的 gRPC Server
// recovery 在最外层
func New(application *app.App, opts ...grpc.ServerOption) *grpc.Server {
	base := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(UnaryRecoveryInterceptor, UnaryLoggingInterceptor),
		grpc.ChainStreamInterceptor(StreamRecoveryInterceptor, StreamLoggingInterceptor),
		grpc.MaxRecvMsgSize(maxMsgSize),
		grpc.MaxSendMsgSize(maxMsgSize),
		// 允许客户端每 10s 发一次 keepalive ping
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	s := grpc.NewServer(append(base, opts...)...)
	hashrpc.RegisterHashServiceServer(s, service.NewHashService(application))
	return s
}
