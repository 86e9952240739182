package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "achievement.v1.AchievementSyncService"

// AchievementSyncServer is served under ServiceName. Requests carry the
// player id; responses are google.protobuf.Struct documents.
type AchievementSyncServer interface {
	SyncAchievements(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	GetSnapshot(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

// Register adds srv to s.
func Register(s grpc.ServiceRegistrar, srv AchievementSyncServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AchievementSyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SyncAchievements", Handler: syncAchievementsHandler},
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "achievement/v1/achievement.proto",
}

func syncAchievementsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AchievementSyncServer).SyncAchievements(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/SyncAchievements"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AchievementSyncServer).SyncAchievements(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AchievementSyncServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetSnapshot"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AchievementSyncServer).GetSnapshot(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
