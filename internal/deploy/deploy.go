// Package deploy implements the Deploy Fan-out (C7): posts per-deployer
// requests in parallel and aggregates outcomes via the Pipeline Runtime's
// chord. Grounded on the teacher's internal/github.PRClient for the HTTP
// client shape (explicit Content-Type/Accept headers, context-first
// signatures) and internal/worker.Pool for the parallel-dispatch idiom.
package deploy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/choo-deploy/deployd/internal/apperrors"
	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/pipeline"
)

const createContentType = "application/vnd.deployer.app.version.create.v1+json"
const acceptType = "application/vnd.deployer.task.v1+json"

// Outcome is the terminal result of one deployer's create request.
type Outcome struct {
	Deployer   string
	StatusCode int
	Body       []byte
}

// Client posts a create request to one deployer.
type Client interface {
	CreateApp(ctx context.Context, d appconfig.DeployerConfig, body map[string]any) (*Outcome, error)
}

// HTTPClient is the real, network-calling Client implementation.
type HTTPClient struct {
	HTTP *http.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{HTTP: &http.Client{Timeout: 30 * time.Second}}
}

func (c *HTTPClient) CreateApp(ctx context.Context, d appconfig.DeployerConfig, body map[string]any) (*Outcome, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("deploy: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL+"/apps", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("deploy: build request: %w", err)
	}
	req.Header.Set("Content-Type", createContentType)
	req.Header.Set("Accept", acceptType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err // transport error: retryable by the caller
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deploy: read response: %w", err)
	}

	return &Outcome{Deployer: d.Name, StatusCode: resp.StatusCode, Body: respBody}, nil
}

// classify reports whether err/outcome should retry, is fatal, or
// succeeded, per §4.7: 2xx success; 502/503 retryable; any other >=400
// fatal; transport errors retry.
func classify(outcome *Outcome, err error) (retry bool, fatal bool) {
	if err != nil {
		return true, false
	}
	switch {
	case outcome.StatusCode >= 200 && outcome.StatusCode < 300:
		return false, false
	case outcome.StatusCode == 502 || outcome.StatusCode == 503:
		return true, false
	default:
		return false, true
	}
}

// requestBody builds the create-app body per §6.2: meta-info augmented
// with deployer name+url, plus proxy/templates/deployment/security/
// notifications lifted from the job's config snapshot.
func requestBody(metaInfo map[string]any, d appconfig.DeployerConfig, securityProfile string, notifications []appconfig.NotificationConfig) map[string]any {
	meta := make(map[string]any, len(metaInfo)+1)
	for k, v := range metaInfo {
		meta[k] = v
	}
	meta["deployer"] = map[string]any{"name": d.Name, "url": d.URL}

	return map[string]any{
		"meta-info":     meta,
		"proxy":         d.Proxy,
		"templates":     d.Templates,
		"deployment":    d.Deployment,
		"security":      map[string]any{"profile": securityProfile},
		"notifications": notifications,
	}
}

// FanOut posts to every enabled deployer in parallel, joining via a
// chord: a deployer returning success/failed is a terminal branch
// result, and join fires once every branch has one. Any fatal branch
// error short-circuits the join and is returned for the caller to route
// through the Error Router.
func FanOut(ctx context.Context, client Client, deployers []appconfig.DeployerConfig, metaInfo map[string]any, securityProfile string, notifications []appconfig.NotificationConfig) ([]Outcome, error) {
	tasks := make([]func(ctx context.Context) (Outcome, error), len(deployers))
	for i, d := range deployers {
		d := d
		tasks[i] = func(ctx context.Context) (Outcome, error) {
			body := requestBody(metaInfo, d, securityProfile, notifications)

			policy := pipeline.DeployPolicy
			policy.RetryOn = func(err error) bool {
				_, fatal := err.(stopRetrying)
				return !fatal
			}

			var final Outcome
			result := pipeline.Run(ctx, policy, func(ctx context.Context) error {
				outcome, err := client.CreateApp(ctx, d, body)
				retry, fatal := classify(outcome, err)
				if err != nil {
					if retry {
						return err
					}
					return stopRetrying{err}
				}
				final = *outcome
				if fatal {
					return stopRetrying{apperrors.DeployRequestFailedError(d.Name, outcome.StatusCode, nil)}
				}
				if retry {
					return fmt.Errorf("deploy: %s responded %d", d.Name, outcome.StatusCode)
				}
				return nil
			})

			if !result.Success {
				if se, ok := result.LastErr.(stopRetrying); ok {
					return Outcome{}, se.err
				}
				return Outcome{}, apperrors.DeployRequestFailedError(d.Name, final.StatusCode, result.LastErr)
			}
			return final, nil
		}
	}

	var outcomes []Outcome
	err := pipeline.Chord(ctx, tasks, func(_ context.Context, results []Outcome) error {
		outcomes = results
		return nil
	})
	return outcomes, err
}

// stopRetrying wraps a fatal error so pipeline.Run's RetryOn (nil, retry
// on any error) still needs help distinguishing "give up now" from
// "try again" — DeployPolicy has no RetryOn predicate since the fatal/
// retryable distinction depends on the HTTP outcome, not just the error
// type, so FanOut enforces it itself by returning immediately when fatal.
type stopRetrying struct{ err error }

func (s stopRetrying) Error() string { return s.err.Error() }
func (s stopRetrying) Unwrap() error { return s.err }
