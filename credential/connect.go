package credential

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// IssueProcedure is the Connect procedure served by NewConnectHandler.
const IssueProcedure = "/concierge.v1.CredentialService/Issue"

// NewConnectHandler exposes credential issuance as a Connect unary
// procedure. The response message is the upstream JSON document as a
// google.protobuf.Struct, so JSON clients see the same shape the plain
// handler returns. It returns the path to mount the handler on.
func NewConnectHandler(cfg HandlerConfig, opts ...connect.HandlerOption) (string, http.Handler, error) {
	iss, err := newIssuer(cfg)
	if err != nil {
		return "", nil, err
	}

	handler := connect.NewUnaryHandler(
		IssueProcedure,
		func(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[structpb.Struct], error) {
			status, body, err := iss.issue(ctx)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnavailable, errors.New("failed to create ephemeral key"))
			}
			if status < 200 || status > 299 {
				return nil, connect.NewError(codeForStatus(status), fmt.Errorf("upstream status %d: %s", status, body))
			}

			doc := &structpb.Struct{}
			if err := protojson.Unmarshal(body, doc); err != nil {
				return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("decode upstream secret: %w", err))
			}
			return connect.NewResponse(doc), nil
		},
		opts...,
	)
	return IssueProcedure, handler, nil
}

func codeForStatus(status int) connect.Code {
	switch status {
	case http.StatusBadRequest:
		return connect.CodeInvalidArgument
	case http.StatusUnauthorized:
		return connect.CodeUnauthenticated
	case http.StatusForbidden:
		return connect.CodePermissionDenied
	case http.StatusNotFound:
		return connect.CodeNotFound
	case http.StatusTooManyRequests:
		return connect.CodeResourceExhausted
	default:
		return connect.CodeUnavailable
	}
}
