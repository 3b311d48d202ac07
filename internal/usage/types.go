// ABOUTME: Report model produced by the vCore aggregation
// ABOUTME: Per-application entries, per-environment totals and the grand total

package usage

import (
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/shopspring/decimal"
)

// Entry is one running application's sizing
type Entry struct {
	Application string  `json:"application" yaml:"application"`
	Replicas    int     `json:"replicas" yaml:"replicas"`
	VCores      float64 `json:"vcore_per_replica" yaml:"vcore_per_replica"`
}

// Usage returns vCores multiplied by replicas, unrounded.
// The product is taken in decimal so 0.1 x 3 is exactly 0.3.
func (e Entry) Usage() decimal.Decimal {
	return decimal.NewFromFloat(e.VCores).Mul(decimal.NewFromInt(int64(e.Replicas)))
}

// EnvironmentReport is the usage of one environment.
// Total is rounded to two decimals; entries keep the raw values.
type EnvironmentReport struct {
	Environment string  `json:"environment" yaml:"environment"`
	Entries     []Entry `json:"entries" yaml:"entries"`
	Total       float64 `json:"total_vcore_usage" yaml:"total_vcore_usage"`
}

// Report is the full result for one organization and a set of environments
type Report struct {
	Region       client.Region       `json:"region,omitempty" yaml:"region,omitempty"`
	Organization client.NamedID      `json:"organization" yaml:"organization"`
	Detailed     bool                `json:"detailed" yaml:"detailed"`
	Environments []EnvironmentReport `json:"environments" yaml:"environments"`
	GrandTotal   float64             `json:"grand_total" yaml:"grand_total"`
}

// EnvironmentSummary is an environment total without its entries
type EnvironmentSummary struct {
	Environment string  `json:"environment" yaml:"environment"`
	Total       float64 `json:"total_vcore_usage" yaml:"total_vcore_usage"`
}

// SummaryReport is the summary-mode shape of a Report
type SummaryReport struct {
	Region       client.Region        `json:"region,omitempty" yaml:"region,omitempty"`
	Organization client.NamedID       `json:"organization" yaml:"organization"`
	Detailed     bool                 `json:"detailed" yaml:"detailed"`
	Environments []EnvironmentSummary `json:"environments" yaml:"environments"`
	GrandTotal   float64              `json:"grand_total" yaml:"grand_total"`
}

// Summary returns the report without per-application entries
func (r *Report) Summary() *SummaryReport {
	out := &SummaryReport{
		Region:       r.Region,
		Organization: r.Organization,
		Detailed:     r.Detailed,
		Environments: make([]EnvironmentSummary, len(r.Environments)),
		GrandTotal:   r.GrandTotal,
	}
	for i, env := range r.Environments {
		out.Environments[i] = EnvironmentSummary{Environment: env.Environment, Total: env.Total}
	}
	return out
}
