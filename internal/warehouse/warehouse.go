// Package warehouse reads the gold statistic tables from BigQuery.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/pable/gleague-scout/internal/config"
	"github.com/pable/gleague-scout/internal/loader"
	"github.com/pable/gleague-scout/internal/logger"
	"github.com/pable/gleague-scout/internal/model"
)

// Client is a loader.Source backed by BigQuery.
type Client struct {
	bq      *bigquery.Client
	cfg     config.Warehouse
	columns map[model.Kind]loader.Columns
	log     logger.Logger
}

// New connects to BigQuery. Credentials come from the JSON key in the env
// var named by cfg.CredentialsEnv when it is set, otherwise from the
// ambient default credentials. Connection problems wrap loader.ErrUnavailable.
func New(ctx context.Context, cfg config.Warehouse) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("%w: warehouse project_id is not set", loader.ErrUnavailable)
	}
	log := logger.Named("warehouse")

	var opts []option.ClientOption
	if cfg.CredentialsEnv != "" {
		if key := strings.TrimSpace(os.Getenv(cfg.CredentialsEnv)); key != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(key)))
			log.Debug(ctx, "using service account key", logger.String("env", cfg.CredentialsEnv))
		}
	}
	bq, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: bigquery client: %v", loader.ErrUnavailable, err)
	}
	if cfg.Location != "" {
		bq.Location = cfg.Location
	}
	c := &Client{bq: bq, cfg: cfg, log: log, columns: make(map[model.Kind]loader.Columns)}
	for _, k := range []model.Kind{model.KindPlayers, model.KindTargets, model.KindTeams, model.KindGames} {
		c.columns[k] = loader.DefaultColumns(k)
	}
	return c, nil
}

// Close releases the BigQuery client.
func (c *Client) Close() error { return c.bq.Close() }

func (c *Client) Name() string { return "warehouse" }

// Ping runs a trivial query to check credentials and connectivity.
func (c *Client) Ping(ctx context.Context) error {
	it, err := c.bq.Query("SELECT 1 AS ok").Read(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", loader.ErrUnavailable, err)
	}
	var row []bigquery.Value
	if err := it.Next(&row); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("%w: %v", loader.ErrUnavailable, err)
	}
	return nil
}

// Table returns the fully qualified table name for kind.
func (c *Client) Table(kind model.Kind) (string, error) {
	name, dataset := "", c.cfg.Dataset
	switch kind {
	case model.KindPlayers:
		name = c.cfg.PlayersTable
	case model.KindTargets:
		name = c.cfg.TargetsTable
	case model.KindTeams:
		name = c.cfg.TeamsTable
	case model.KindGames:
		name = c.cfg.GamesTable
		if c.cfg.GamesDataset != "" {
			dataset = c.cfg.GamesDataset
		}
	}
	if name == "" {
		return "", fmt.Errorf("no warehouse table for %s", kind)
	}
	return fmt.Sprintf("`%s.%s.%s`", c.cfg.ProjectID, dataset, name), nil
}

// FetchPopulation reads the gold table behind scope.Kind. The competition
// filter runs in BigQuery; the season filter runs on the decoded rows
// because the tables store season in different types.
func (c *Client) FetchPopulation(ctx context.Context, scope model.Scope) (model.Population, error) {
	table, err := c.Table(scope.Kind)
	if err != nil {
		return model.Population{}, err
	}
	cols := c.columns[scope.Kind]

	sql := "SELECT * FROM " + table
	var params []bigquery.QueryParameter
	if scope.Competition != "" && cols.Competition != "" {
		sql += fmt.Sprintf(" WHERE %s = @competition", cols.Competition)
		params = append(params, bigquery.QueryParameter{Name: "competition", Value: scope.Competition})
	}
	q := c.bq.Query(sql)
	q.Parameters = params

	start := time.Now()
	it, err := q.Read(ctx)
	if err != nil {
		return model.Population{}, fmt.Errorf("%w: query %s: %v", loader.ErrUnavailable, table, err)
	}

	var (
		dec  *loader.Decoder
		rows []model.StatRow
	)
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return model.Population{}, fmt.Errorf("%w: read %s: %v", loader.ErrUnavailable, table, err)
		}
		if dec == nil {
			header := make([]string, len(it.Schema))
			for i, f := range it.Schema {
				header[i] = f.Name
			}
			if dec, err = loader.NewDecoder(header, cols); err != nil {
				return model.Population{}, fmt.Errorf("%s: %w", table, err)
			}
		}
		r, err := dec.Row(cells(values))
		if err != nil {
			return model.Population{}, fmt.Errorf("%s: %w", table, err)
		}
		if r.Subject == "" || (scope.Season != 0 && r.Season != scope.Season) {
			continue
		}
		rows = append(rows, r)
	}
	c.log.Info(ctx, "population fetched",
		logger.String("scope", scope.String()),
		logger.Int("rows", len(rows)),
		logger.Int("ms", int(time.Since(start).Milliseconds())))

	pop, err := model.NewPopulation(scope, rows)
	if err != nil {
		return model.Population{}, fmt.Errorf("%s: %w", table, err)
	}
	return pop, nil
}

// Seasons lists the distinct seasons of kind's table, newest first.
func (c *Client) Seasons(ctx context.Context, kind model.Kind) ([]int, error) {
	table, err := c.Table(kind)
	if err != nil {
		return nil, err
	}
	col := c.columns[kind].Season
	if col == "" {
		return nil, nil
	}
	it, err := c.bq.Query(fmt.Sprintf("SELECT DISTINCT %s FROM %s", col, table)).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", loader.ErrUnavailable, table, err)
	}
	set := make(map[int]struct{})
	for {
		var values []bigquery.Value
		err := it.Next(&values)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", loader.ErrUnavailable, table, err)
		}
		if len(values) == 0 {
			continue
		}
		s, err := loader.ParseSeason(cell(values[0]))
		if err != nil || s == 0 {
			continue
		}
		set[s] = struct{}{}
	}
	pop := model.Population{}
	for s := range set {
		pop.Rows = append(pop.Rows, model.StatRow{Season: s})
	}
	return pop.Seasons(), nil
}

func cells(values []bigquery.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = cell(v)
	}
	return out
}

// cell renders a BigQuery value the way a CSV export would.
func cell(v bigquery.Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case *big.Rat:
		if x == nil {
			return ""
		}
		f, _ := x.Float64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	case civil.Date:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
