package service

import (
	"context"
	"errors"

	hashrpc "hashvault/pkg/api/hashrpc/v1"
	"hashvault/pkg/app"
	"hashvault/pkg/exporter"
	"hashvault/pkg/refs"
	"hashvault/pkg/storage"
	"hashvault/pkg/types"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// HashService 把仓库的哈希能力暴露给远端
type HashService struct {
	hashrpc.UnimplementedHashServiceServer
	app *app.App
}

func NewHashService(application *app.App) *HashService {
	return &HashService{app: application}
}

// Digest 只做计算，不写存储
func (s *HashService) Digest(_ context.Context, req *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return wrapperspb.String(types.Sum256(req.GetValue()).String()), nil
}

// Resolve 支持完整哈希和短哈希
func (s *HashService) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	h, err := s.resolve(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}
	return wrapperspb.String(h.String()), nil
}

func (s *HashService) Has(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	h, err := types.ParseHash(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid hash %q: %v", req.GetValue(), err)
	}

	ok, err := s.app.Store.Has(ctx, h)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "storage check failed: %v", err)
	}
	return wrapperspb.Bool(ok), nil
}

// Head 空仓库不算错误，返回空字符串
func (s *HashService) Head(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	h, _, err := s.app.Refs.GetHead(ctx)
	if errors.Is(err, refs.ErrNoHead) {
		return wrapperspb.String(""), nil
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to read HEAD: %v", err)
	}
	return wrapperspb.String(h.String()), nil
}

// Download 逐块把 FileNode 的内容推给客户端，每块都会在服务端校验
func (s *HashService) Download(req *wrapperspb.StringValue, stream grpc.ServerStreamingServer[wrapperspb.BytesValue]) error {
	ctx := stream.Context()

	target, err := s.resolve(ctx, req.GetValue())
	if err != nil {
		return err
	}
	log.Debug().Str("hash", target.String()).Str("input", req.GetValue()).Msg("serving download")

	exp := exporter.NewExporter(s.app.Store)
	if err := exp.ExportFile(ctx, target, NewStreamWriter(stream)); err != nil {
		return toStatus(err, "export failed")
	}
	return nil
}

func (s *HashService) resolve(ctx context.Context, input string) (types.Hash, error) {
	h, err := storage.Resolve(ctx, s.app.Store, input)
	if err != nil {
		return types.Hash{}, toStatus(err, "hash resolution failed")
	}
	return h, nil
}

// toStatus 把领域错误映射为 gRPC 状态码
func toStatus(err error, msg string) error {
	switch {
	case errors.Is(err, types.ErrPrefixTooShort),
		errors.Is(err, types.ErrNotHexEncoded),
		errors.Is(err, types.ErrLengthMismatch),
		errors.Is(err, storage.ErrAmbiguousHash):
		return status.Errorf(codes.InvalidArgument, "%s: %v", msg, err)
	case errors.Is(err, storage.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: %v", msg, err)
	case errors.Is(err, exporter.ErrCorruptChunk):
		return status.Errorf(codes.DataLoss, "%s: %v", msg, err)
	default:
		return status.Errorf(codes.Internal, "%s: %v", msg, err)
	}
}
