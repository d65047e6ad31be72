package ml

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/bibbank/creditrisk/internal/domain/model"
)

// PredictRequest is the body posted to a remote model's /predict endpoint.
type PredictRequest struct {
	Rows [][]float64 `json:"rows"`
}

// PredictResponse carries one positive-class probability per row.
type PredictResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

// HTTPOracle calls a remote model server. The call timeout is the only
// timeout in the scoring path.
type HTTPOracle struct {
	client   *http.Client
	endpoint string
}

// NewHTTPOracle targets baseURL + "/predict". A nil tlsCfg uses the default transport.
func NewHTTPOracle(baseURL string, timeout time.Duration, tlsCfg *tls.Config) *HTTPOracle {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}
	return &HTTPOracle{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		endpoint: strings.TrimRight(baseURL, "/") + "/predict",
	}
}

// PredictProba implements port.ProbabilityOracle. Every returned value is
// checked against [0, 1]; nothing is clamped.
func (o *HTTPOracle) PredictProba(ctx context.Context, rows [][]float64) ([]float64, error) {
	body, err := json.Marshal(PredictRequest{Rows: rows})
	if err != nil {
		return nil, &model.OracleError{Reason: "encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &model.OracleError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &model.OracleError{Reason: "call " + o.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &model.OracleError{
			Reason: fmt.Sprintf("model server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &model.OracleError{Reason: "decode response", Err: err}
	}
	if len(out.Probabilities) != len(rows) {
		return nil, &model.OracleError{
			Reason: fmt.Sprintf("expected %d probabilities, got %d", len(rows), len(out.Probabilities)),
		}
	}
	for i, p := range out.Probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, &model.OracleError{Reason: fmt.Sprintf("row %d probability %v outside [0, 1]", i, p)}
		}
	}
	return out.Probabilities, nil
}
