// ABOUTME: Aggregates vCore usage of running deployments per environment
// ABOUTME: Fetches allocations sequentially or through a bounded worker pool

package usage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Source provides deployments and their allocations. *client.Client satisfies it.
type Source interface {
	Deployments(ctx context.Context, orgID, envID string) ([]client.Deployment, error)
	ResourceAllocation(ctx context.Context, orgID, envID, deploymentID string) (*client.ResourceAllocation, error)
}

// ProgressFunc is called once the running deployments are known (done=0)
// and again after each allocation fetch
type ProgressFunc func(env string, done, total int)

// Aggregator computes vCore usage from a Source
type Aggregator struct {
	source   Source
	workers  int
	progress ProgressFunc
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithWorkers sets how many allocation fetches may run at once.
// Values below two keep the fetches strictly sequential.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		a.workers = n
	}
}

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(a *Aggregator) {
		a.progress = fn
	}
}

// NewAggregator creates an aggregator over source
func NewAggregator(source Source, opts ...Option) *Aggregator {
	a := &Aggregator{source: source, workers: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// EnvironmentUsage sums vCores x replicas over the RUNNING deployments of an
// environment. Entries follow the order the API listed the deployments.
// Any failed fetch aborts the environment.
func (a *Aggregator) EnvironmentUsage(ctx context.Context, orgID string, env client.NamedID) (*EnvironmentReport, error) {
	deployments, err := a.source.Deployments(ctx, orgID, env.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments in %s: %w", env.Name, err)
	}

	running := make([]client.Deployment, 0, len(deployments))
	for _, d := range deployments {
		if d.IsRunning() {
			running = append(running, d)
		}
	}
	slog.Debug("Deployments listed", "environment", env.Name, "total", len(deployments), "running", len(running))

	a.report(env.Name, 0, len(running))

	allocs, err := a.fetchAllocations(ctx, orgID, env, running)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(running))
	total := decimal.Zero
	for i, d := range running {
		alloc := allocs[i]
		entry := Entry{
			Application: d.Name,
			Replicas:    alloc.Replicas,
			VCores:      alloc.VCores,
		}
		entries = append(entries, entry)
		total = total.Add(entry.Usage())
	}

	return &EnvironmentReport{
		Environment: env.Name,
		Entries:     entries,
		Total:       round(total),
	}, nil
}

func (a *Aggregator) fetchAllocations(ctx context.Context, orgID string, env client.NamedID, running []client.Deployment) ([]*client.ResourceAllocation, error) {
	allocs := make([]*client.ResourceAllocation, len(running))

	if a.workers < 2 {
		for i, d := range running {
			alloc, err := a.source.ResourceAllocation(ctx, orgID, env.ID, d.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to get allocation for %s in %s: %w", d.Name, env.Name, err)
			}
			allocs[i] = alloc
			a.report(env.Name, i+1, len(running))
		}
		return allocs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	done := make(chan struct{}, len(running))

	for i, d := range running {
		g.Go(func() error {
			alloc, err := a.source.ResourceAllocation(gctx, orgID, env.ID, d.ID)
			if err != nil {
				return fmt.Errorf("failed to get allocation for %s in %s: %w", d.Name, env.Name, err)
			}
			allocs[i] = alloc
			done <- struct{}{}
			return nil
		})
	}

	// Progress is reported from this goroutine only, so callbacks never race
	waitErr := make(chan error, 1)
	go func() { waitErr <- g.Wait() }()

	completed := 0
	for {
		select {
		case <-done:
			completed++
			a.report(env.Name, completed, len(running))
		case err := <-waitErr:
			if err != nil {
				return nil, err
			}
			for ; completed < len(running); completed++ {
				<-done
				a.report(env.Name, completed+1, len(running))
			}
			return allocs, nil
		}
	}
}

// Build computes usage for each selected environment in order.
// The grand total is the sum of the already-rounded environment totals.
func (a *Aggregator) Build(ctx context.Context, org client.NamedID, envs []client.NamedID, detailed bool) (*Report, error) {
	report := &Report{
		Organization: org,
		Detailed:     detailed,
		Environments: make([]EnvironmentReport, 0, len(envs)),
	}

	grand := decimal.Zero
	for _, env := range envs {
		envReport, err := a.EnvironmentUsage(ctx, org.ID, env)
		if err != nil {
			return nil, err
		}
		report.Environments = append(report.Environments, *envReport)
		grand = grand.Add(decimal.NewFromFloat(envReport.Total))
		slog.Info("Environment usage computed", "environment", env.Name, "vcores", envReport.Total)
	}
	report.GrandTotal = round(grand)

	return report, nil
}

func (a *Aggregator) report(env string, done, total int) {
	if a.progress != nil {
		a.progress(env, done, total)
	}
}

// round keeps two decimals, half away from zero
func round(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
