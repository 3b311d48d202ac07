// ABOUTME: Tests for vCore aggregation over a mocked control plane
// ABOUTME: Covers running filter, rounding, ordering, fail-fast and the worker pool

package usage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Deployments(ctx context.Context, orgID, envID string) ([]client.Deployment, error) {
	args := m.Called(ctx, orgID, envID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Deployment), args.Error(1)
}

func (m *mockSource) ResourceAllocation(ctx context.Context, orgID, envID, deploymentID string) (*client.ResourceAllocation, error) {
	args := m.Called(ctx, orgID, envID, deploymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.ResourceAllocation), args.Error(1)
}

func running(id, name string) client.Deployment {
	return client.Deployment{ID: id, Name: name, Status: client.StatusRunning}
}

func alloc(id string, vcores float64, replicas int) *client.ResourceAllocation {
	return &client.ResourceAllocation{DeploymentID: id, VCores: vcores, Replicas: replicas}
}

var (
	prod = client.NamedID{Name: "Prod", ID: "env-prod"}
	dev  = client.NamedID{Name: "Dev", ID: "env-dev"}
	acme = client.NamedID{Name: "Acme", ID: "org-1"}
)

// prodSource is the two-application Prod environment: A 0.1 x 3, B 0.2 x 1
func prodSource() *mockSource {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return([]client.Deployment{
		running("a", "A"),
		running("b", "B"),
	}, nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "a").Return(alloc("a", 0.1, 3), nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "b").Return(alloc("b", 0.2, 1), nil)
	return src
}

func TestEnvironmentUsage_TwoRunning(t *testing.T) {
	src := prodSource()

	got, err := NewAggregator(src).EnvironmentUsage(context.Background(), "org-1", prod)
	require.NoError(t, err)

	assert.Equal(t, "Prod", got.Environment)
	assert.Equal(t, 0.5, got.Total)
	assert.Equal(t, []Entry{
		{Application: "A", Replicas: 3, VCores: 0.1},
		{Application: "B", Replicas: 1, VCores: 0.2},
	}, got.Entries)
	src.AssertExpectations(t)
}

func TestEnvironmentUsage_StoppedOnly(t *testing.T) {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-dev").Return([]client.Deployment{
		{ID: "s", Name: "S", Status: "STOPPED"},
	}, nil)

	got, err := NewAggregator(src).EnvironmentUsage(context.Background(), "org-1", dev)
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.Total)
	assert.NotNil(t, got.Entries)
	assert.Empty(t, got.Entries)
	src.AssertNotCalled(t, "ResourceAllocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnvironmentUsage_FiltersAndKeepsOrder(t *testing.T) {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return([]client.Deployment{
		running("z", "Zeta"),
		{ID: "x", Name: "Stopped", Status: "STOPPED"},
		{ID: "y", Name: "Applying", Status: "APPLYING"},
		running("a", "Alpha"),
	}, nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "z").Return(alloc("z", 1, 2), nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "a").Return(alloc("a", 0.5, 1), nil)

	got, err := NewAggregator(src).EnvironmentUsage(context.Background(), "org-1", prod)
	require.NoError(t, err)

	require.Len(t, got.Entries, 2)
	assert.Equal(t, "Zeta", got.Entries[0].Application)
	assert.Equal(t, "Alpha", got.Entries[1].Application)
	assert.Equal(t, 2.5, got.Total)
	src.AssertNumberOfCalls(t, "ResourceAllocation", 2)
}

func TestEnvironmentUsage_RoundsTotalOnly(t *testing.T) {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return([]client.Deployment{
		running("a", "A"),
		running("b", "B"),
	}, nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "a").Return(alloc("a", 0.0125, 1), nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "b").Return(alloc("b", 0.001, 1), nil)

	got, err := NewAggregator(src).EnvironmentUsage(context.Background(), "org-1", prod)
	require.NoError(t, err)

	// 0.0135 rounds to 0.01; entries keep the raw sizes
	assert.Equal(t, 0.01, got.Total)
	assert.Equal(t, 0.0125, got.Entries[0].VCores)
	assert.Equal(t, 0.001, got.Entries[1].VCores)
}

func TestEnvironmentUsage_ListFailure(t *testing.T) {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return(nil, &client.RemoteError{StatusCode: 500})

	_, err := NewAggregator(src).EnvironmentUsage(context.Background(), "org-1", prod)

	var remote *client.RemoteError
	require.ErrorAs(t, err, &remote)
	src.AssertNotCalled(t, "ResourceAllocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnvironmentUsage_AllocationFailureStopsChain(t *testing.T) {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return([]client.Deployment{
		running("a", "A"),
		running("b", "B"),
		running("c", "C"),
	}, nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "a").Return(alloc("a", 1, 1), nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "b").Return(nil, &client.RemoteError{StatusCode: 404})

	got, err := NewAggregator(src).EnvironmentUsage(context.Background(), "org-1", prod)

	assert.Nil(t, got)
	var remote *client.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 404, remote.StatusCode)
	src.AssertNotCalled(t, "ResourceAllocation", mock.Anything, "org-1", "env-prod", "c")
}

func TestEnvironmentUsage_ProgressSequential(t *testing.T) {
	var calls [][2]int
	agg := NewAggregator(prodSource(), WithProgress(func(env string, done, total int) {
		assert.Equal(t, "Prod", env)
		calls = append(calls, [2]int{done, total})
	}))

	_, err := agg.EnvironmentUsage(context.Background(), "org-1", prod)
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 2}, {1, 2}, {2, 2}}, calls)
}

func TestEnvironmentUsage_WorkerPoolPreservesOrder(t *testing.T) {
	src := &mockSource{}
	var deployments []client.Deployment
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i, n := range names {
		deployments = append(deployments, running(n, n))
		src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", n).Return(alloc(n, 0.1, i+1), nil)
	}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return(deployments, nil)

	var mu sync.Mutex
	last := 0
	agg := NewAggregator(src, WithWorkers(4), WithProgress(func(env string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.GreaterOrEqual(t, done, last)
		last = done
	}))

	got, err := agg.EnvironmentUsage(context.Background(), "org-1", prod)
	require.NoError(t, err)

	require.Len(t, got.Entries, len(names))
	for i, n := range names {
		assert.Equal(t, n, got.Entries[i].Application)
		assert.Equal(t, i+1, got.Entries[i].Replicas)
	}
	// 0.1 x (1+2+...+8) = 3.6
	assert.Equal(t, 3.6, got.Total)
	assert.Equal(t, len(names), last)
}

func TestEnvironmentUsage_WorkerPoolFailure(t *testing.T) {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return([]client.Deployment{
		running("a", "A"),
		running("b", "B"),
	}, nil)
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "a").Return(alloc("a", 1, 1), nil).Maybe()
	src.On("ResourceAllocation", mock.Anything, "org-1", "env-prod", "b").Return(nil, errors.New("boom"))

	_, err := NewAggregator(src, WithWorkers(2)).EnvironmentUsage(context.Background(), "org-1", prod)
	assert.ErrorContains(t, err, "boom")
}

func TestBuild_GrandTotalAcrossEnvironments(t *testing.T) {
	src := prodSource()
	src.On("Deployments", mock.Anything, "org-1", "env-dev").Return([]client.Deployment{
		{ID: "s", Name: "S", Status: "STOPPED"},
	}, nil)

	report, err := NewAggregator(src).Build(context.Background(), acme, []client.NamedID{prod, dev}, true)
	require.NoError(t, err)

	require.Len(t, report.Environments, 2)
	assert.Equal(t, "Prod", report.Environments[0].Environment)
	assert.Equal(t, "Dev", report.Environments[1].Environment)
	assert.Equal(t, 0.5, report.Environments[0].Total)
	assert.Equal(t, 0.0, report.Environments[1].Total)
	assert.Equal(t, 0.5, report.GrandTotal)
	assert.Equal(t, acme, report.Organization)
	assert.True(t, report.Detailed)
}

func TestBuild_GrandTotalSumsRoundedTotals(t *testing.T) {
	src := &mockSource{}
	for _, env := range []client.NamedID{prod, dev} {
		src.On("Deployments", mock.Anything, "org-1", env.ID).Return([]client.Deployment{running(env.ID+"-a", "A")}, nil)
		src.On("ResourceAllocation", mock.Anything, "org-1", env.ID, env.ID+"-a").Return(alloc("a", 0.005, 1), nil)
	}

	report, err := NewAggregator(src).Build(context.Background(), acme, []client.NamedID{prod, dev}, false)
	require.NoError(t, err)

	// Each 0.005 rounds up to 0.01, so the grand total is 0.02 rather than round(0.01)
	assert.Equal(t, 0.01, report.Environments[0].Total)
	assert.Equal(t, 0.02, report.GrandTotal)
}

func TestBuild_StopsAtFirstFailingEnvironment(t *testing.T) {
	src := &mockSource{}
	src.On("Deployments", mock.Anything, "org-1", "env-prod").Return(nil, &client.AuthError{Err: errors.New("expired")})

	report, err := NewAggregator(src).Build(context.Background(), acme, []client.NamedID{prod, dev}, false)

	assert.Nil(t, report)
	var authErr *client.AuthError
	require.ErrorAs(t, err, &authErr)
	src.AssertNotCalled(t, "Deployments", mock.Anything, "org-1", "env-dev")
}

func TestBuild_NoEnvironments(t *testing.T) {
	report, err := NewAggregator(&mockSource{}).Build(context.Background(), acme, nil, false)
	require.NoError(t, err)
	assert.Empty(t, report.Environments)
	assert.Equal(t, 0.0, report.GrandTotal)
}

func TestReportSummary_DropsEntries(t *testing.T) {
	r := &Report{
		Organization: acme,
		Environments: []EnvironmentReport{{Environment: "Prod", Total: 0.5, Entries: []Entry{{Application: "A"}}}},
		GrandTotal:   0.5,
	}

	s := r.Summary()
	require.Len(t, s.Environments, 1)
	assert.Equal(t, EnvironmentSummary{Environment: "Prod", Total: 0.5}, s.Environments[0])
	assert.Len(t, r.Environments[0].Entries, 1)
	assert.Equal(t, 0.5, s.GrandTotal)
	assert.Equal(t, acme, s.Organization)
}

func TestEntryUsage(t *testing.T) {
	assert.True(t, decimal.RequireFromString("0.3").Equal(Entry{VCores: 0.1, Replicas: 3}.Usage()))
	assert.True(t, Entry{VCores: 1, Replicas: 0}.Usage().IsZero())
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	tests := map[float64]float64{
		0.125: 0.13,
		0.135: 0.14,
		2.675: 2.68,
		0.005: 0.01,
		0.124: 0.12,
		1:     1,
	}
	for input, want := range tests {
		assert.Equal(t, want, round(decimal.NewFromFloat(input)), "%v", input)
	}
}
