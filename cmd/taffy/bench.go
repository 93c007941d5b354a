package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gfx.cafe/gfx/taffy/lib/dispatch"
	"gfx.cafe/gfx/taffy/lib/gsql"
	"gfx.cafe/gfx/taffy/lib/util/dur"
)

var benchFlags struct {
	driver           string
	dsn              string
	poolSize         int
	tasks            int
	iterations       int
	acquireTimeout   time.Duration
	acquireThreshold time.Duration
	metricsAddr      string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "run a concurrent transaction workload through the dispatcher",
	RunE:  bench,
}

func init() {
	f := benchCmd.Flags()
	f.StringVar(&benchFlags.driver, "driver", "sqlite3", "database/sql driver name")
	f.StringVar(&benchFlags.dsn, "dsn", "file::memory:?cache=shared", "data source name")
	f.IntVar(&benchFlags.poolSize, "pool-size", 10, "worker pool size")
	f.IntVar(&benchFlags.tasks, "tasks", 100, "concurrent tasks")
	f.IntVar(&benchFlags.iterations, "iterations", 10, "transactions per task")
	f.DurationVar(&benchFlags.acquireTimeout, "acquire-timeout", 30*time.Second, "worker acquire timeout")
	f.DurationVar(&benchFlags.acquireThreshold, "acquire-threshold", 0, "worker acquire warn threshold (0 disables)")
	f.StringVar(&benchFlags.metricsAddr, "metrics-addr", "", "listen address for prometheus metrics (empty disables)")

	rootCmd.AddCommand(benchCmd)
}

func bench(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if benchFlags.metricsAddr != "" {
		go func() {
			logger.Info("serving metrics", zap.String("addr", benchFlags.metricsAddr))
			if err := http.ListenAndServe(benchFlags.metricsAddr, promhttp.Handler()); err != nil {
				logger.Error("metrics listener failed", zap.Error(err))
			}
		}()
	}

	db, err := sql.Open(benchFlags.driver, benchFlags.dsn)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	db.SetMaxOpenConns(benchFlags.poolSize)

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS bench_users (
		id INTEGER PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL
	)`); err != nil {
		return err
	}

	client, err := gsql.NewClient(gsql.NewDBSource(db, logger), gsql.Config{
		Dispatcher: dispatch.Config{
			Name:             "bench",
			Size:             benchFlags.poolSize,
			AcquireTimeout:   dur.Duration(benchFlags.acquireTimeout),
			AcquireThreshold: dur.Duration(benchFlags.acquireThreshold),
			Logger:           logger,
		},
		Dialect: gsql.DialectSQLite,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	logger.Info("starting workload",
		zap.Int("tasks", benchFlags.tasks),
		zap.Int("iterations", benchFlags.iterations),
		zap.Int("pool_size", benchFlags.poolSize),
	)

	start := time.Now()
	errs := make(chan error, benchFlags.tasks)
	var wg sync.WaitGroup
	for task := 0; task < benchFlags.tasks; task++ {
		wg.Add(1)
		go func(task int) {
			defer wg.Done()
			for i := 0; i < benchFlags.iterations; i++ {
				if err := runOnce(ctx, client, task*benchFlags.iterations+i); err != nil {
					errs <- err
					return
				}
			}
		}(task)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		return err
	}

	total := benchFlags.tasks * benchFlags.iterations
	elapsed := time.Since(start)
	fmt.Printf("%d transactions in %s (%.0f tx/s)\n",
		total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	return nil
}

func runOnce(ctx context.Context, client *gsql.Client, id int) error {
	u := newBenchUser(int64(id), fmt.Sprintf("user%d", id), fmt.Sprintf("user%d@example.com", id))
	return client.Transaction(ctx, gsql.TxOptions{}, func(ctx context.Context, tx *gsql.Tx) error {
		if _, err := tx.Insert(ctx, u); err != nil {
			return err
		}
		exists, err := tx.Exists(ctx, u)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("user %d not visible inside its own transaction", id)
		}
		if _, err := tx.Delete(ctx, u); err != nil {
			return err
		}
		return nil
	})
}

// benchUser is a minimal Record implementation over bench_users.
type benchUser struct {
	values  [3]any
	changed [3]bool
}

var benchUserFields = []gsql.Field{
	{Name: "id", PrimaryKey: true},
	{Name: "username"},
	{Name: "email"},
}

func newBenchUser(id int64, username, email string) *benchUser {
	u := new(benchUser)
	u.Set(0, id)
	u.Set(1, username)
	u.Set(2, email)
	return u
}

func (T *benchUser) Table() string       { return "bench_users" }
func (T *benchUser) Fields() []gsql.Field { return benchUserFields }
func (T *benchUser) Get(i int) any       { return T.values[i] }

func (T *benchUser) Set(i int, v any) {
	T.values[i] = v
	T.changed[i] = true
}

func (T *benchUser) Changed(i int) bool { return T.changed[i] }

func (T *benchUser) SetChanged(i int, changed bool) { T.changed[i] = changed }

var _ gsql.Record = (*benchUser)(nil)
