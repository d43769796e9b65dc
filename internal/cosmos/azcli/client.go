// Package azcli implements cosmos.Client on top of the Azure CLI. Credentials
// are whatever `az login` established; this package never handles them.
package azcli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cosmosops/analyticalctl/internal/cosmos"
)

// Client issues one az invocation per remote operation.
type Client struct {
	runner Runner
	scope  cosmos.Scope
	logger *slog.Logger
}

var _ cosmos.Client = (*Client)(nil)

func NewClient(runner Runner, scope cosmos.Scope, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{runner: runner, scope: scope, logger: logger}
}

func (c *Client) ListDatabases(ctx context.Context) ([]cosmos.Resource, error) {
	var out []cosmos.Resource
	err := c.runJSON(ctx, c.args([]string{"cosmosdb", "sql", "database", "list"}), &out)
	return out, err
}

func (c *Client) ShowDatabase(ctx context.Context, database string) (cosmos.Resource, error) {
	var out cosmos.Resource
	err := c.runJSON(ctx, c.args([]string{"cosmosdb", "sql", "database", "show"}, "--name", database), &out)
	return out, err
}

func (c *Client) ListContainers(ctx context.Context, database string) ([]cosmos.Resource, error) {
	var out []cosmos.Resource
	err := c.runJSON(ctx,
		c.args([]string{"cosmosdb", "sql", "container", "list"}, "--database-name", database), &out)
	return out, err
}

func (c *Client) DisableAnalyticalStorage(ctx context.Context, database, container string) error {
	args := c.args([]string{"cosmosdb", "sql", "container", "update"},
		"--database-name", database,
		"--name", container,
		"--analytical-storage-ttl", "0")
	_, err := c.run(ctx, args)
	return err
}

func (c *Client) args(command []string, extra ...string) []string {
	args := make([]string, 0, len(command)+len(extra)+6)
	args = append(args, command...)
	args = append(args,
		"--resource-group", c.scope.ResourceGroup,
		"--account-name", c.scope.AccountName)
	args = append(args, extra...)
	return append(args, "--output", "json")
}

func (c *Client) run(ctx context.Context, args []string) (*RunResult, error) {
	c.logger.Debug("running az", slog.Any("args", args))
	res, err := c.runner.Run(ctx, args)
	if err != nil {
		c.logger.Debug("az failed", slog.Any("args", args), slog.Any("error", err))
		return nil, err
	}
	return res, nil
}

func (c *Client) runJSON(ctx context.Context, args []string, v any) error {
	res, err := c.run(ctx, args)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(res.Stdout))
	// numbers stay json.Number so retention values keep their exact text
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &ErrDecode{Args: args, Err: err}
	}
	return nil
}
