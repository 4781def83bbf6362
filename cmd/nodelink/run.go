// cmd/nodelink/run.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/events"
	"github.com/tamzrod/nodelink/internal/journal"
	"github.com/tamzrod/nodelink/internal/metrics"
	"github.com/tamzrod/nodelink/internal/mirror"
	"github.com/tamzrod/nodelink/internal/node"
	"github.com/tamzrod/nodelink/internal/status"
)

var metricsListen string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the selected node and stream telemetry until interrupted",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Override metrics.listen (e.g. :9108)")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Metrics + events
	// --------------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	bus := events.NewBus(64)
	bus.OnDrop = m.DropEvent

	s, err := openSession(node.WithObserver(m), node.WithSink(bus))
	if err != nil {
		return err
	}
	defer s.Close()

	log := s.log
	cfg := s.cfg

	// --------------------
	// Journal + mirror (fallible setup first)
	// --------------------

	var jw *journal.Writer
	if cfg.Journal.Path != "" {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := journal.Migrate(db); err != nil {
			return err
		}
		jw = journal.NewWriter(db, cfg.Journal.Buffer, log)
	}

	sw, closeMirror, err := mirror.Build(cfg.Mirror)
	if err != nil {
		return err
	}
	defer closeMirror()

	// --------------------
	// Telemetry consumers
	// --------------------

	var wg sync.WaitGroup

	agg := status.NewAggregator(s.store.PollPeriod)
	s.client.RegisterCallback(agg.Collect)

	if jw != nil {
		s.client.RegisterCallback(jw.Telemetry)

		wg.Add(1)
		go func() {
			defer wg.Done()
			jw.Run(ctx)
		}()
	}

	// --------------------
	// Event consumer
	// --------------------

	evs, unsub := bus.Subscribe()
	defer unsub()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-evs:
				if !ok {
					return
				}
				log.Info("event", zap.String("name", string(e.Name)), zap.Any("value", e.Value))
				m.CountEvent(e)
				if jw != nil {
					jw.Event(e)
				}
			}
		}
	}()

	// --------------------
	// Status runner (link status metric + optional mirror)
	// --------------------

	runner := mirror.NewRunner(agg, s.client.Version, sw, log)
	runner.OnStatus = m.SetLinkStatus

	wg.Add(1)
	go func() {
		defer wg.Done()
		runner.Run(ctx, time.Second)
	}()

	// --------------------
	// HTTP: /metrics + /status
	// --------------------

	listen := cfg.Metrics.Listen
	if metricsListen != "" {
		listen = metricsListen
	}
	if listen != "" {
		srv := &http.Server{
			Addr:              listen,
			Handler:           newRouter(reg, agg, s.client),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http: listener failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Info("http: listening", zap.String("addr", listen))
	}

	// --------------------
	// Poll loop
	// --------------------

	target, _ := s.store.Target()
	log.Info("nodelink: starting", zap.String("target", target.String()), zap.Duration("poll", s.store.PollPeriod()))

	s.client.TryConnectStart(time.Duration(cfg.Link.RetryMs) * time.Millisecond)

	<-ctx.Done()
	log.Info("nodelink: shutting down")
	s.client.Stop()
	wg.Wait()

	if jw != nil {
		if n := jw.Dropped(); n > 0 {
			log.Warn("journal: entries dropped", zap.Uint64("count", n))
		}
	}
	return nil
}
