package server

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// =============================================================================
// 1. Logging Interceptor
// =============================================================================

// UnaryLoggingInterceptor 记录普通请求 (Digest / Resolve / Has / Head)
func UnaryLoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logRPC("unary", info.FullMethod, time.Since(start), err)
	return resp, err
}

// StreamLoggingInterceptor 记录流式请求 (Download)
func StreamLoggingInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	start := time.Now()
	err := handler(srv, ss)
	logRPC("stream", info.FullMethod, time.Since(start), err)
	return err
}

// rpcLevel NotFound 之类的业务错误记 Warn，Internal 记 Error
func rpcLevel(code codes.Code) zerolog.Level {
	switch code {
	case codes.OK:
		return zerolog.InfoLevel
	case codes.Internal, codes.Unknown, codes.DataLoss:
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

func logRPC(kind, method string, duration time.Duration, err error) {
	code := status.Code(err)

	ev := log.WithLevel(rpcLevel(code)).
		Str("kind", kind).
		Str("method", method).
		Str("code", code.String()).
		Dur("dur", duration)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("grpc request")
}

// =============================================================================
// 2. Recovery Interceptor
// =============================================================================

func UnaryRecoveryInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverFromPanic(info.FullMethod, r)
		}
	}()
	return handler(ctx, req)
}

func StreamRecoveryInterceptor(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverFromPanic(info.FullMethod, r)
		}
	}()
	return handler(srv, ss)
}

// recoverFromPanic 返回 Internal 给客户端，而不是直接断开连接
func recoverFromPanic(method string, p any) error {
	log.Error().
		Str("method", method).
		Interface("panic", p).
		Bytes("stack", debug.Stack()).
		Msg("panic recovered")
	return status.Error(codes.Internal, "internal server error: panic recovered")
}
