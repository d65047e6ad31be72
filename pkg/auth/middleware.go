package auth

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func bearer(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// UnaryServerInterceptor authenticates every gRPC call except those in skip.
// When methodRoles names a method, the caller must hold one of its roles.
func UnaryServerInterceptor(v Validator, methodRoles map[string][]string, skip ...string) grpc.UnaryServerInterceptor {
	skipSet := make(map[string]struct{}, len(skip))
	for _, m := range skip {
		skipSet[m] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := skipSet[info.FullMethod]; ok {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing authorization metadata")
		}
		claims, err := v.Validate(bearer(values[0]))
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		if roles := methodRoles[info.FullMethod]; len(roles) > 0 && !claims.HasAnyRole(roles...) {
			return nil, status.Errorf(codes.PermissionDenied, "%s requires one of %v", info.FullMethod, roles)
		}
		return handler(ContextWithClaims(ctx, claims), req)
	}
}

// HTTPMiddleware authenticates requests carrying an Authorization bearer token.
func HTTPMiddleware(v Validator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearer(r.Header.Get("Authorization"))
		if token == "" {
			http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}
		claims, err := v.Validate(token)
		if err != nil {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// RequireRole rejects requests whose claims hold none of roles.
func RequireRole(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || !claims.HasAnyRole(roles...) {
			http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
