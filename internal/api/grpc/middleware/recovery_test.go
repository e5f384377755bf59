package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stratpoint-engineering/enterprise-api/internal/testutil"
)

func TestRecovery_UnaryServerInterceptor(t *testing.T) {
	rec := NewRecovery(testutil.MakeNoopLogger())
	info := &grpc.UnaryServerInfo{FullMethod: "/svc.Service/Method"}

	resp, err := rec.UnaryServerInterceptor()(context.Background(), struct{}{}, info,
		func(context.Context, interface{}) (interface{}, error) {
			panic("boom")
		})

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
}
