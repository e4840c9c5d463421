package grpc_test

import (
	"context"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/strokeguard/strokeguard/internal/application/usecase"
	"github.com/strokeguard/strokeguard/internal/domain/model"
	"github.com/strokeguard/strokeguard/internal/domain/service"
	"github.com/strokeguard/strokeguard/internal/infrastructure/artifact"
	grpcpresentation "github.com/strokeguard/strokeguard/internal/presentation/grpc"
	"github.com/strokeguard/strokeguard/pkg/auth"
	"github.com/strokeguard/strokeguard/pkg/observability"
	"github.com/strokeguard/strokeguard/pkg/testutil"
)

type harness struct {
	client *grpcpresentation.InferenceServiceClient
	health healthpb.HealthClient
}

func start(t *testing.T, ictx *usecase.InferenceContext, jwt *auth.JWTService) harness {
	t.Helper()
	logger := observability.NopLogger()

	handler := grpcpresentation.NewInferenceHandler(
		usecase.NewPredictRisk(ictx, model.ValidateOptions{}, nil, logger),
		usecase.NewCheckHealth(ictx),
		logger,
	)
	srv, err := grpcpresentation.NewServer(handler, grpcpresentation.ServerConfig{
		JWT:   jwt,
		Ready: ictx.TransformLoaded(),
	}, logger)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return harness{
		client: grpcpresentation.NewInferenceServiceClient(conn),
		health: healthpb.NewHealthClient(conn),
	}
}

func readyContext(t *testing.T) *usecase.InferenceContext {
	t.Helper()
	p, _, err := artifact.NewFileStore().LoadPreprocessor(context.Background(), "../../../models/preprocessor.json")
	require.NoError(t, err)
	return usecase.NewInferenceContext(p, nil, nil, os.ErrNotExist)
}

func TestPredict_HeuristicWorkedExample(t *testing.T) {
	h := start(t, readyContext(t), nil)

	resp, err := h.client.Predict(context.Background(), &grpcpresentation.PredictRequest{Record: testutil.HighRiskPatient()})
	require.NoError(t, err)
	assert.InDelta(t, 0.95, resp.Probability, 1e-9)
	assert.Equal(t, "95.00%", resp.Percentage)
	assert.Equal(t, "HIGH", resp.RiskTier)
	assert.Equal(t, "heuristic", resp.Method)
}

func TestPredict_StatusCodes(t *testing.T) {
	ready := start(t, readyContext(t), nil)
	notReady := start(t, usecase.NewInferenceContext(nil, nil,
		&service.TransformError{Err: os.ErrNotExist}, nil), nil)

	tests := []struct {
		name   string
		client *grpcpresentation.InferenceServiceClient
		record map[string]any
		want   codes.Code
	}{
		{"nil record", ready.client, nil, codes.InvalidArgument},
		{"missing field", ready.client, testutil.WithoutField(testutil.HighRiskPatient(), "smoking_status"), codes.InvalidArgument},
		{"transform unavailable", notReady.client, testutil.HighRiskPatient(), codes.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Predict(context.Background(), &grpcpresentation.PredictRequest{Record: tt.record})
			require.Error(t, err)
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}

func TestHealth(t *testing.T) {
	ready := start(t, readyContext(t), nil)
	notReady := start(t, usecase.NewInferenceContext(nil, nil, &service.TransformError{Err: os.ErrNotExist}, nil), nil)
	ctx := context.Background()

	report, err := ready.client.Health(ctx, &grpcpresentation.HealthRequest{})
	require.NoError(t, err)
	assert.True(t, report.TransformLoaded)
	assert.Equal(t, "heuristic", report.ScorerState)

	hc, err := ready.health.Check(ctx, &healthpb.HealthCheckRequest{Service: grpcpresentation.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.Status)

	hc, err = notReady.health.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, hc.Status)
}

func TestPredict_RequiresToken(t *testing.T) {
	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "grpc-test-secret", Issuer: "strokeguard"})
	require.NoError(t, err)
	h := start(t, readyContext(t), jwt)
	req := &grpcpresentation.PredictRequest{Record: testutil.HighRiskPatient()}

	_, err = h.client.Predict(context.Background(), req)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	viewer, err := jwt.GenerateToken("viewer", []string{"viewer"})
	require.NoError(t, err)
	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+viewer)
	_, err = h.client.Predict(ctx, req)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	token, err := jwt.GenerateToken("svc", []string{auth.RoleAPIClient})
	require.NoError(t, err)
	ctx = metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
	resp, err := h.client.Predict(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "HIGH", resp.RiskTier)

	// Health stays open.
	_, err = h.client.Health(context.Background(), &grpcpresentation.HealthRequest{})
	assert.NoError(t, err)
}

func TestNewServer_BadTLSFiles(t *testing.T) {
	_, err := grpcpresentation.NewServer(grpcpresentation.UnimplementedInferenceServiceServer{}, grpcpresentation.ServerConfig{
		TLSCertFile: "/nonexistent/cert.pem",
		TLSKeyFile:  "/nonexistent/key.pem",
	}, observability.NopLogger())
	assert.Error(t, err)
}

func TestJSONCodec_KeepsNumbers(t *testing.T) {
	codec := grpcpresentation.JSONCodec{}
	var req grpcpresentation.PredictRequest
	require.NoError(t, codec.Unmarshal([]byte(`{"record":{"age":67}}`), &req))
	assert.Equal(t, "67", req.Record["age"].(interface{ String() string }).String())
	assert.Equal(t, "json", codec.Name())
}
