package grpc

import (
	"errors"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps the error taxonomy onto gRPC codes. Messages of internal
// errors are replaced so no low-level detail reaches the caller.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var code codes.Code
	switch {
	case errors.Is(err, common.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, common.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, common.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, common.ErrUnauthorized):
		code = codes.Unauthenticated
	default:
		return status.Error(codes.Internal, "internal error")
	}

	return status.Error(code, err.Error())
}
