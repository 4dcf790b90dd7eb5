package ml

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bibbank/fraudscore/pkg/grpcjson"
	"github.com/bibbank/fraudscore/pkg/tlsutil"
)

// InferenceMethod is the full gRPC method name of the remote classifier.
const InferenceMethod = "/fraudscore.inference.v1.Inference/Predict"

// InferenceRequest is the wire request of the remote classifier.
type InferenceRequest struct {
	Rows [][]float64 `json:"rows"`
}

// InferenceResponse carries one output per row.
type InferenceResponse struct {
	Outputs []any `json:"outputs"`
}

// RemoteClassifier calls a model served over gRPC. It only predicts, so the
// scorer treats it as opaque.
type RemoteClassifier struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	logger  *slog.Logger
}

// DialRemote connects to addr, with TLS when caFile is set.
func DialRemote(addr, caFile string, timeout time.Duration, logger *slog.Logger) (*RemoteClassifier, error) {
	var creds credentials.TransportCredentials = insecure.NewCredentials()
	if caFile != "" {
		tc, err := tlsutil.ClientCredentials(caFile)
		if err != nil {
			return nil, err
		}
		creds = tc
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpcjson.CallOption()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial inference service at %s: %w", addr, err)
	}
	logger.Info("connected to inference service", "addr", addr)
	return NewRemoteClassifier(conn, timeout, logger), nil
}

// NewRemoteClassifier wraps an existing connection.
func NewRemoteClassifier(conn *grpc.ClientConn, timeout time.Duration, logger *slog.Logger) *RemoteClassifier {
	return &RemoteClassifier{conn: conn, timeout: timeout, logger: logger}
}

func (c *RemoteClassifier) Predict(ctx context.Context, rows [][]float64) ([]any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var resp InferenceResponse
	if err := c.conn.Invoke(ctx, InferenceMethod, &InferenceRequest{Rows: rows}, &resp); err != nil {
		return nil, fmt.Errorf("remote inference: %w", err)
	}
	if len(resp.Outputs) != len(rows) {
		return nil, fmt.Errorf("remote inference returned %d outputs for %d rows", len(resp.Outputs), len(rows))
	}
	return resp.Outputs, nil
}

func (c *RemoteClassifier) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
