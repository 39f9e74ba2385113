// Package rpc holds the pieces shared by the gRPC services: method
// descriptors over structpb messages, error mapping and the auth interceptor.
package rpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/seatbooking/internal/auth"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Handler is a unary method taking and returning a JSON-shaped message.
type Handler[S any] func(srv S, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

// Method builds a descriptor that decodes a structpb.Struct and runs the
// call through the server's interceptor chain.
func Method[S any](service, name string, h Handler[S]) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			call := func(ctx context.Context, req any) (any, error) {
				return h(srv.(S), ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, call)
		},
	}
}

var kindCodes = map[domain.ErrorKind]codes.Code{
	domain.KindNotFound:               codes.NotFound,
	domain.KindInvalidInput:           codes.InvalidArgument,
	domain.KindConflict:               codes.AlreadyExists,
	domain.KindPaymentDeclined:        codes.Aborted,
	domain.KindAuthorizationDenied:    codes.PermissionDenied,
	domain.KindInvalidStateTransition: codes.FailedPrecondition,
}

// Status converts a service error into a gRPC status. Untyped errors are
// logged and reported as Internal without detail.
func Status(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if code, ok := kindCodes[domain.KindOf(err)]; ok {
		return status.Error(code, err.Error())
	}
	logger.FromContext(ctx).WithError(err).Error("rpc failed")
	return status.Error(codes.Internal, "internal error")
}

// AuthInterceptor attaches correlation id and caller identity to the context.
// Methods listed in public may be called without a token.
func AuthInterceptor(verifier *auth.Verifier, public ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]bool, len(public))
	for _, m := range public {
		open[m] = true
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		ctx, _ = logger.WithCorrelationID(ctx, first(md, strings.ToLower(logger.CorrelationIDHeader)))
		ctx = logger.ToContext(ctx, logger.FromContext(ctx).WithField("method", info.FullMethod))

		raw, ok := auth.BearerToken(first(md, "authorization"))
		if !ok {
			if open[info.FullMethod] {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "Authentication required")
		}
		id, err := verifier.Identity(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "Could not validate credentials")
		}
		return handler(domain.WithIdentity(ctx, id), req)
	}
}

func first(md metadata.MD, key string) string {
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Int reads a numeric field. JSON numbers arrive as float64.
func Int(in *structpb.Struct, key string) (int64, error) {
	v, ok := in.GetFields()[key]
	if !ok {
		return 0, domain.InvalidInput("%s is required", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != float64(int64(n.NumberValue)) {
		return 0, domain.InvalidInput("%s must be an integer", key)
	}
	return int64(n.NumberValue), nil
}

func Float(in *structpb.Struct, key string) float64 {
	return in.GetFields()[key].GetNumberValue()
}

func String(in *structpb.Struct, key string) string {
	return in.GetFields()[key].GetStringValue()
}

// Struct builds a response message. Times become RFC 3339 strings and
// string slices become lists.
func Struct(fields map[string]any) (*structpb.Struct, error) {
	for k, v := range fields {
		switch t := v.(type) {
		case time.Time:
			fields[k] = t.UTC().Format(time.RFC3339)
		case *time.Time:
			if t == nil {
				fields[k] = nil
			} else {
				fields[k] = t.UTC().Format(time.RFC3339)
			}
		case []string:
			list := make([]any, len(t))
			for i, s := range t {
				list[i] = s
			}
			fields[k] = list
		}
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}
