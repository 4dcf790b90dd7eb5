package grpc

// proto.go is the hand-kept service contract of fraudscore.v1.FraudScoringService.
// Messages travel with the grpcjson codec, so they are plain structs.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName       = "fraudscore.v1.FraudScoringService"
	MethodPredict     = "/" + ServiceName + "/Predict"
	MethodListUploads = "/" + ServiceName + "/ListUploads"
)

// PredictRequest carries one loosely typed transaction record.
type PredictRequest struct {
	Record map[string]any `json:"record"`
}

// PredictResponse is the scored record.
type PredictResponse struct {
	Probability float64  `json:"probability"`
	Label       string   `json:"label"`
	Reasons     []string `json:"reasons"`
	Model       string   `json:"model"`
}

type ListUploadsRequest struct{}

// UploadMsg is one history entry.
type UploadMsg struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Kind       string `json:"kind"`
	Total      int32  `json:"total"`
	Scored     int32  `json:"scored"`
	Errors     int32  `json:"errors"`
	FraudRows  int32  `json:"fraud_rows"`
	ReviewRows int32  `json:"review_rows"`
	NormalRows int32  `json:"normal_rows"`
	CreatedAt  string `json:"created_at"`
}

type ListUploadsResponse struct {
	Uploads []*UploadMsg `json:"uploads"`
}

// FraudScoringServiceServer is the server API for FraudScoringService.
type FraudScoringServiceServer interface {
	Predict(context.Context, *PredictRequest) (*PredictResponse, error)
	ListUploads(context.Context, *ListUploadsRequest) (*ListUploadsResponse, error)
	mustEmbedUnimplementedFraudScoringServiceServer()
}

// UnimplementedFraudScoringServiceServer provides forward-compatible default implementations.
type UnimplementedFraudScoringServiceServer struct{}

func (UnimplementedFraudScoringServiceServer) Predict(context.Context, *PredictRequest) (*PredictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}
func (UnimplementedFraudScoringServiceServer) ListUploads(context.Context, *ListUploadsRequest) (*ListUploadsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListUploads not implemented")
}
func (UnimplementedFraudScoringServiceServer) mustEmbedUnimplementedFraudScoringServiceServer() {}

// RegisterFraudScoringServiceServer registers srv with the gRPC server.
func RegisterFraudScoringServiceServer(s grpclib.ServiceRegistrar, srv FraudScoringServiceServer) {
	s.RegisterService(&fraudScoringServiceDesc, srv)
}

var fraudScoringServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FraudScoringServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
		{MethodName: "ListUploads", Handler: listUploadsHandler},
	},
	Streams: []grpclib.StreamDesc{},
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(PredictRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FraudScoringServiceServer).Predict(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodPredict}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FraudScoringServiceServer).Predict(ctx, req.(*PredictRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listUploadsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	in := new(ListUploadsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FraudScoringServiceServer).ListUploads(ctx, in)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodListUploads}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(FraudScoringServiceServer).ListUploads(ctx, req.(*ListUploadsRequest))
	}
	return interceptor(ctx, in, info, handler)
}
