package grpc

// service.go hand-writes the service descriptor for
// strokeguard.inference.v1.InferenceService. Messages travel as JSON.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/strokeguard/strokeguard/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "strokeguard.inference.v1.InferenceService"

// Full method names, as seen by interceptors.
const (
	MethodPredict = "/" + ServiceName + "/Predict"
	MethodHealth  = "/" + ServiceName + "/Health"
)

// PredictRequest carries one raw patient record.
type PredictRequest struct {
	Record map[string]any `json:"record"`
}

// PredictResponse is the scored result.
type PredictResponse = dto.PredictionResponse

// HealthRequest is empty.
type HealthRequest struct{}

// HealthResponse reports which artifacts are loaded.
type HealthResponse = dto.HealthResponse

// InferenceServiceServer is the server API for InferenceService.
type InferenceServiceServer interface {
	Predict(context.Context, *PredictRequest) (*PredictResponse, error)
	Health(context.Context, *HealthRequest) (*HealthResponse, error)
	mustEmbedUnimplementedInferenceServiceServer()
}

// UnimplementedInferenceServiceServer provides forward-compatible default implementations.
type UnimplementedInferenceServiceServer struct{}

func (UnimplementedInferenceServiceServer) Predict(context.Context, *PredictRequest) (*PredictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}
func (UnimplementedInferenceServiceServer) Health(context.Context, *HealthRequest) (*HealthResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Health not implemented")
}
func (UnimplementedInferenceServiceServer) mustEmbedUnimplementedInferenceServiceServer() {}

// RegisterInferenceServiceServer registers srv with the gRPC server.
func RegisterInferenceServiceServer(s grpclib.ServiceRegistrar, srv InferenceServiceServer) {
	s.RegisterService(&inferenceServiceDesc, srv)
}

var inferenceServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InferenceServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
		{MethodName: "Health", Handler: healthHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "strokeguard/inference/v1/inference.proto",
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) { //nolint:revive // gRPC handler signature
	in := new(PredictRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InferenceServiceServer).Predict(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodPredict}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InferenceServiceServer).Predict(ctx, req.(*PredictRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func healthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) { //nolint:revive // gRPC handler signature
	in := new(HealthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InferenceServiceServer).Health(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodHealth}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InferenceServiceServer).Health(ctx, req.(*HealthRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// InferenceServiceClient calls InferenceService over a connection. Calls are
// forced onto the JSON codec.
type InferenceServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewInferenceServiceClient creates a client on cc.
func NewInferenceServiceClient(cc grpclib.ClientConnInterface) *InferenceServiceClient {
	return &InferenceServiceClient{cc: cc}
}

// Predict scores one record.
func (c *InferenceServiceClient) Predict(ctx context.Context, in *PredictRequest, opts ...grpclib.CallOption) (*PredictResponse, error) {
	out := new(PredictResponse)
	opts = append([]grpclib.CallOption{grpclib.ForceCodec(JSONCodec{})}, opts...)
	if err := c.cc.Invoke(ctx, MethodPredict, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Health fetches the health report.
func (c *InferenceServiceClient) Health(ctx context.Context, in *HealthRequest, opts ...grpclib.CallOption) (*HealthResponse, error) {
	out := new(HealthResponse)
	opts = append([]grpclib.CallOption{grpclib.ForceCodec(JSONCodec{})}, opts...)
	if err := c.cc.Invoke(ctx, MethodHealth, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
