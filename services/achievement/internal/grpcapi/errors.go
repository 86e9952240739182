package grpcapi

import (
	"errors"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/game-platform/services/achievement/internal/domain"
	"github.com/example/game-platform/services/achievement/internal/session"
)

const errorDomain = "achievement"

func errInvalidArgument(code, msg string, fieldViolations map[string]string) error {
	st := status.New(codes.InvalidArgument, msg)
	info := &errdetails.ErrorInfo{Reason: code, Domain: errorDomain}

	bad := &errdetails.BadRequest{}
	for field, desc := range fieldViolations {
		bad.FieldViolations = append(bad.FieldViolations, &errdetails.BadRequest_FieldViolation{Field: field, Description: desc})
	}

	st2, err := st.WithDetails(info, bad)
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

func withInfo(c codes.Code, reason, msg string, metadata map[string]string) error {
	st := status.New(c, msg)
	st2, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: errorDomain, Metadata: metadata})
	if err != nil {
		return st.Err()
	}
	return st2.Err()
}

// toStatus maps synchronization failures onto gRPC statuses.
func toStatus(err error) error {
	var dnf *domain.DefinitionNotFoundError
	if errors.As(err, &dnf) {
		return withInfo(codes.FailedPrecondition, "DEFINITION_NOT_FOUND", "achievement definition missing from catalog",
			map[string]string{"achievement_id": strconv.FormatUint(uint64(dnf.ID), 10)})
	}
	if errors.Is(err, session.ErrInvalidPlayer) {
		return errInvalidArgument("INVALID_PLAYER_ID", "player_id cannot be addressed",
			map[string]string{"value": "must not contain '.', '*', '>' or whitespace"})
	}
	var te *session.TransportError
	if errors.As(err, &te) {
		return withInfo(codes.Unavailable, "TRANSPORT_UNAVAILABLE", "player session unavailable", nil)
	}
	return withInfo(codes.Internal, "INTERNAL", "internal error", nil)
}
