package grpc

// proto.go defines the gRPC server interface for creditrisk/v1/credit_risk.proto.
// Messages travel with the JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const serviceName = "creditrisk.v1.CreditRiskService"

// Full method names, used for per-method role checks.
const (
	MethodAssessCustomer = "/" + serviceName + "/AssessCustomer"
	MethodScoreProfile   = "/" + serviceName + "/ScoreProfile"
	MethodGetAssessment  = "/" + serviceName + "/GetAssessment"
	MethodGetModelInfo   = "/" + serviceName + "/GetModelInfo"
)

// CreditRiskServiceServer is the server API for CreditRiskService.
type CreditRiskServiceServer interface {
	AssessCustomer(context.Context, *AssessCustomerRequest) (*AssessCustomerResponse, error)
	ScoreProfile(context.Context, *ScoreProfileRequest) (*ScoreProfileResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error)
	GetModelInfo(context.Context, *GetModelInfoRequest) (*GetModelInfoResponse, error)
	mustEmbedUnimplementedCreditRiskServiceServer()
}

// UnimplementedCreditRiskServiceServer provides forward-compatible default implementations.
type UnimplementedCreditRiskServiceServer struct{}

func (UnimplementedCreditRiskServiceServer) AssessCustomer(context.Context, *AssessCustomerRequest) (*AssessCustomerResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessCustomer not implemented")
}
func (UnimplementedCreditRiskServiceServer) ScoreProfile(context.Context, *ScoreProfileRequest) (*ScoreProfileResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ScoreProfile not implemented")
}
func (UnimplementedCreditRiskServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedCreditRiskServiceServer) GetModelInfo(context.Context, *GetModelInfoRequest) (*GetModelInfoResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetModelInfo not implemented")
}
func (UnimplementedCreditRiskServiceServer) mustEmbedUnimplementedCreditRiskServiceServer() {}

// RegisterCreditRiskServiceServer registers srv with the gRPC server.
func RegisterCreditRiskServiceServer(s grpclib.ServiceRegistrar, srv CreditRiskServiceServer) {
	s.RegisterService(&_CreditRiskService_serviceDesc, srv)
}

var _CreditRiskService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CreditRiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessCustomer", Handler: _CreditRiskService_AssessCustomer_Handler},
		{MethodName: "ScoreProfile", Handler: _CreditRiskService_ScoreProfile_Handler},
		{MethodName: "GetAssessment", Handler: _CreditRiskService_GetAssessment_Handler},
		{MethodName: "GetModelInfo", Handler: _CreditRiskService_GetModelInfo_Handler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "creditrisk/v1/credit_risk.proto",
}

func _CreditRiskService_AssessCustomer_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(AssessCustomerRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditRiskServiceServer).AssessCustomer(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodAssessCustomer}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CreditRiskServiceServer).AssessCustomer(ctx, req.(*AssessCustomerRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CreditRiskService_ScoreProfile_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(ScoreProfileRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditRiskServiceServer).ScoreProfile(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodScoreProfile}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CreditRiskServiceServer).ScoreProfile(ctx, req.(*ScoreProfileRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CreditRiskService_GetAssessment_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetAssessmentRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditRiskServiceServer).GetAssessment(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetAssessment}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CreditRiskServiceServer).GetAssessment(ctx, req.(*GetAssessmentRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func _CreditRiskService_GetModelInfo_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetModelInfoRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CreditRiskServiceServer).GetModelInfo(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: MethodGetModelInfo}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CreditRiskServiceServer).GetModelInfo(ctx, req.(*GetModelInfoRequest))
	}
	return interceptor(ctx, req, info, handler)
}
