// Package undeploy implements the Undeploy Fan-out (C8): parallel delete
// across deployers, transport errors retried, non-2xx responses recorded
// but not retried.
package undeploy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/choo-deploy/deployd/internal/appconfig"
	"github.com/choo-deploy/deployd/internal/pipeline"
)

// Outcome is the terminal result of one deployer's delete request.
type Outcome struct {
	Deployer   string
	StatusCode int
	Err        error
}

// Client deletes the app instance for one deployer.
type Client interface {
	DeleteApp(ctx context.Context, d appconfig.DeployerConfig, owner, repo, ref string) (int, error)
}

type HTTPClient struct {
	HTTP *http.Client
}

func NewHTTPClient() *HTTPClient {
	return &HTTPClient{HTTP: &http.Client{Timeout: 30 * time.Second}}
}

func (c *HTTPClient) DeleteApp(ctx context.Context, d appconfig.DeployerConfig, owner, repo, ref string) (int, error) {
	url := fmt.Sprintf("%s/apps/%s-%s-%s", d.URL, owner, repo, ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return 0, fmt.Errorf("undeploy: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// FanOut deletes the app instance from every enabled deployer in
// parallel, retrying transport errors up to DefaultPolicy's budget.
// Non-2xx responses are recorded in the outcome but not retried.
func FanOut(ctx context.Context, client Client, deployers []appconfig.DeployerConfig, owner, repo, ref string) []Outcome {
	tasks := make([]func(ctx context.Context) (Outcome, error), len(deployers))
	for i, d := range deployers {
		d := d
		tasks[i] = func(ctx context.Context) (Outcome, error) {
			var status int
			result := pipeline.Run(ctx, pipeline.DefaultPolicy, func(ctx context.Context) error {
				s, err := client.DeleteApp(ctx, d, owner, repo, ref)
				if err != nil {
					return err
				}
				status = s
				return nil
			})
			return Outcome{Deployer: d.Name, StatusCode: status, Err: result.LastErr}, nil
		}
	}

	var outcomes []Outcome
	pipeline.Chord(ctx, tasks, func(_ context.Context, results []Outcome) error {
		outcomes = results
		return nil
	})
	return outcomes
}
