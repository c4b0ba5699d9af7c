package grpcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/dropcalc/internal/calc"
)

// Server implements DropCalcServer on top of calc.Service.
type Server struct {
	svc *calc.Service
	log *zap.Logger
}

func NewServer(svc *calc.Service, log *zap.Logger) *Server {
	return &Server{svc: svc, log: log}
}

// NewGRPCServer builds a grpc.Server with DropCalc and the standard health
// service registered, both reporting SERVING.
func NewGRPCServer(svc *calc.Service, log *zap.Logger) (*grpc.Server, *health.Server) {
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(log)))
	RegisterDropCalcServer(gs, NewServer(svc, log))

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return gs, hs
}

type simulateReq struct {
	calc.Request
	Trials int    `json:"trials"`
	Seed   uint64 `json:"seed"`
}

type batchReq struct {
	Requests []calc.Request `json:"requests"`
}

func (s *Server) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req calc.Request
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	res, err := s.svc.Evaluate(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(res)
}

func (s *Server) EvaluateBatch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req batchReq
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if len(req.Requests) == 0 {
		return nil, status.Error(codes.InvalidArgument, "requests must not be empty")
	}
	results, err := s.svc.EvaluateBatch(ctx, req.Requests)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(map[string]any{"results": results})
}

func (s *Server) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := simulateReq{Trials: 10000}
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	out, err := s.svc.Simulate(ctx, req.Request, req.Trials, req.Seed)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(out)
}

// decode moves a Struct into v through its JSON form. Unknown fields are
// rejected.
func decode(in *structpb.Struct, v any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch calc.ErrorKind(err) {
	case "invalid":
		return status.Error(codes.InvalidArgument, err.Error())
	case "not_found":
		return status.Error(codes.NotFound, err.Error())
	case "canceled":
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, fmt.Sprintf("evaluate: %v", err))
	}
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if code == codes.Internal || code == codes.Unknown {
			log.Error("grpc request", append(fields, zap.Error(err))...)
		} else {
			log.Info("grpc request", fields...)
		}
		return resp, err
	}
}
