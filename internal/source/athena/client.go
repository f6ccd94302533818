// Package athena implements source.Source against AWS Athena, the managed
// query service the datasets live behind. Athena only takes query text, so
// pushdown filters go through internal/core/query and its escaping rules.
package athena

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/google/uuid"

	"github.com/bruktdata-lab/listing-portal/internal/core/listing"
	"github.com/bruktdata-lab/listing-portal/internal/core/query"
	"github.com/bruktdata-lab/listing-portal/internal/source"
)

const defaultPollInterval = 2 * time.Second

// Config carries the Athena-side names the client queries against.
type Config struct {
	Database       string
	Workgroup      string
	OutputLocation string // s3://bucket/athena-results/
	CarsTable      string
	HousesTable    string
	PollInterval   time.Duration
}

// Client runs one synchronous query per fetch: start, poll to completion,
// page the results. No retry — a failed fetch fails the request (the portal
// is request-scoped, nothing is partial).
type Client struct {
	api *athena.Client
	cfg Config
}

func New(api *athena.Client, cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	return &Client{api: api, cfg: cfg}
}

// FetchCars queries the car table with the pushdown filters applied in SQL.
func (c *Client) FetchCars(ctx context.Context, q source.CarQuery) ([]listing.CarObservation, error) {
	b := query.New(c.cfg.CarsTable).
		DateBetween("dato", q.StartDate, q.EndDate).
		Eq("produsent", q.Produsent).
		Eq("modell", q.Modell).
		ContainsFold("overskrift", q.ModellSok).
		ContainsFold("selger", q.SelgerSok)
	if err := b.IntMin("rekkevidde_str", q.RangeMin); err != nil {
		return nil, err
	}
	if err := b.IntMax("rekkevidde_str", q.RangeMax); err != nil {
		return nil, err
	}

	header, rows, err := c.runQuery(ctx, b.Build())
	if err != nil {
		return nil, err
	}
	return decodeCars(header, rows)
}

// FetchHouses queries the real-estate table.
func (c *Client) FetchHouses(ctx context.Context, q source.HouseQuery) ([]listing.HouseObservation, error) {
	b := query.New(c.cfg.HousesTable).
		DateBetween("publisert", q.PublishedFrom, q.PublishedTo).
		Eq("fylke", q.Fylke).
		Eq("boligtype", q.Boligtype).
		ContainsFold("megler", q.MeglerSok)

	header, rows, err := c.runQuery(ctx, b.Build())
	if err != nil {
		return nil, err
	}
	return decodeHouses(header, rows)
}

// Ping verifies the workgroup is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.ListWorkGroups(ctx, &athena.ListWorkGroupsInput{MaxResults: aws.Int32(1)})
	return err
}

// runQuery executes sql and returns the header row plus all data rows as
// plain strings. Missing cells come back empty.
func (c *Client) runQuery(ctx context.Context, sql string) ([]string, [][]string, error) {
	slog.Info("Running Athena query", "database", c.cfg.Database, "query", sql)

	start, err := c.api.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString:        aws.String(sql),
		ClientRequestToken: aws.String(uuid.NewString()),
		WorkGroup:          optional(c.cfg.Workgroup),
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: aws.String(c.cfg.Database),
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: aws.String(c.cfg.OutputLocation),
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("start query execution: %w", err)
	}
	execID := start.QueryExecutionId

	if err := c.waitForCompletion(ctx, execID); err != nil {
		return nil, nil, err
	}

	var header []string
	var rows [][]string
	paginator := athena.NewGetQueryResultsPaginator(c.api, &athena.GetQueryResultsInput{
		QueryExecutionId: execID,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("get query results: %w", err)
		}
		for _, row := range page.ResultSet.Rows {
			cells := make([]string, len(row.Data))
			for i, d := range row.Data {
				cells[i] = aws.ToString(d.VarCharValue)
			}
			// The first row of the first page is the column header.
			if header == nil {
				header = cells
				continue
			}
			rows = append(rows, cells)
		}
	}

	slog.Info("Athena query finished", "execution_id", aws.ToString(execID), "rows", len(rows))
	return header, rows, nil
}

func (c *Client) waitForCompletion(ctx context.Context, execID *string) error {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		out, err := c.api.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: execID,
		})
		if err != nil {
			return fmt.Errorf("get query execution: %w", err)
		}

		status := out.QueryExecution.Status
		switch status.State {
		case types.QueryExecutionStateSucceeded:
			return nil
		case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
			return fmt.Errorf("athena query %s: %s", status.State, aws.ToString(status.StateChangeReason))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
