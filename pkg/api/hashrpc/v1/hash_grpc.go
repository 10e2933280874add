// Package hashrpc 定义 HashService 的 gRPC 服务描述
//
// 消息全部使用 protobuf 的 well-known wrapper 类型，不需要额外的 .proto 生成步骤。
// 结构与 protoc-gen-go-grpc 的产物保持一致，以后切换到生成代码时调用方不用改。
package hashrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "hashvault.v1.HashService"

const (
	HashService_Digest_FullMethodName   = "/hashvault.v1.HashService/Digest"
	HashService_Resolve_FullMethodName  = "/hashvault.v1.HashService/Resolve"
	HashService_Has_FullMethodName      = "/hashvault.v1.HashService/Has"
	HashService_Head_FullMethodName     = "/hashvault.v1.HashService/Head"
	HashService_Download_FullMethodName = "/hashvault.v1.HashService/Download"
)

// HashServiceClient is the client API for HashService.
type HashServiceClient interface {
	// Digest 计算任意字节的哈希，返回 64 位大写 Hex
	Digest(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	// Resolve 把完整哈希或短哈希解析为存储中的完整哈希
	Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	// Head 返回当前 HEAD，空仓库返回空字符串
	Head(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	// Download 以流的形式还原一个 FileNode 的内容
	Download(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[wrapperspb.BytesValue], error)
}

type hashServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHashServiceClient(cc grpc.ClientConnInterface) HashServiceClient {
	return &hashServiceClient{cc}
}

func (c *hashServiceClient) Digest(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, HashService_Digest_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hashServiceClient) Resolve(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, HashService_Resolve_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hashServiceClient) Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, HashService_Has_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hashServiceClient) Head(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, HashService_Head_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *hashServiceClient) Download(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (grpc.ServerStreamingClient[wrapperspb.BytesValue], error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &HashService_ServiceDesc.Streams[0], HashService_Download_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wrapperspb.StringValue, wrapperspb.BytesValue]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// HashServiceServer is the server API for HashService.
// 实现必须嵌入 UnimplementedHashServiceServer
type HashServiceServer interface {
	Digest(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Resolve(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
	Head(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	Download(*wrapperspb.StringValue, grpc.ServerStreamingServer[wrapperspb.BytesValue]) error
	mustEmbedUnimplementedHashServiceServer()
}

// UnimplementedHashServiceServer 必须按值嵌入
type UnimplementedHashServiceServer struct{}

func (UnimplementedHashServiceServer) Digest(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Digest not implemented")
}
func (UnimplementedHashServiceServer) Resolve(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Resolve not implemented")
}
func (UnimplementedHashServiceServer) Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Has not implemented")
}
func (UnimplementedHashServiceServer) Head(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Head not implemented")
}
func (UnimplementedHashServiceServer) Download(*wrapperspb.StringValue, grpc.ServerStreamingServer[wrapperspb.BytesValue]) error {
	return status.Error(codes.Unimplemented, "method Download not implemented")
}
func (UnimplementedHashServiceServer) mustEmbedUnimplementedHashServiceServer() {}
func (UnimplementedHashServiceServer) testEmbeddedByValue()                     {}

func RegisterHashServiceServer(s grpc.ServiceRegistrar, srv HashServiceServer) {
	// 按指针嵌入时这里会 nil panic，尽早暴露问题
	if t, ok := srv.(interface{ testEmbeddedByValue() }); ok {
		t.testEmbeddedByValue()
	}
	s.RegisterService(&HashService_ServiceDesc, srv)
}

func _HashService_Digest_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HashServiceServer).Digest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HashService_Digest_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HashServiceServer).Digest(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _HashService_Resolve_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HashServiceServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HashService_Resolve_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HashServiceServer).Resolve(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _HashService_Has_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HashServiceServer).Has(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HashService_Has_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HashServiceServer).Has(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _HashService_Head_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HashServiceServer).Head(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: HashService_Head_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HashServiceServer).Head(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _HashService_Download_Handler(srv any, stream grpc.ServerStream) error {
	m := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(HashServiceServer).Download(m, &grpc.GenericServerStream[wrapperspb.StringValue, wrapperspb.BytesValue]{ServerStream: stream})
}

// HashService_ServiceDesc is the grpc.ServiceDesc for HashService.
var HashService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HashServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Digest", Handler: _HashService_Digest_Handler},
		{MethodName: "Resolve", Handler: _HashService_Resolve_Handler},
		{MethodName: "Has", Handler: _HashService_Has_Handler},
		{MethodName: "Head", Handler: _HashService_Head_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Download",
			Handler:       _HashService_Download_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "hashvault/v1/hash.proto",
}
