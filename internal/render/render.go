// ABOUTME: Renders a usage report as a table, JSON or YAML
// ABOUTME: Tables follow the detailed or summary layout with bold total rows

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/styles"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/usage"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Style selects how a table is decorated
type Style int

const (
	// StyleColor uses the shared palette and rounded borders
	StyleColor Style = iota
	// StylePlain uses ASCII borders and no colors, for logs and pipes
	StylePlain
)

// Write renders report in the named format
func Write(w io.Writer, report *usage.Report, format string, style Style) error {
	switch format {
	case FormatJSON:
		return JSON(w, report)
	case FormatYAML:
		return YAML(w, report)
	case FormatTable, "":
		return Table(w, report, style)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// JSON writes the report with two-space indentation.
// Summary reports carry no per-application entries.
func JSON(w io.Writer, report *usage.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(shape(report))
}

// YAML writes the report as a single YAML document
func YAML(w io.Writer, report *usage.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(shape(report)); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func shape(report *usage.Report) any {
	if report.Detailed {
		return report
	}
	return report.Summary()
}

// Table writes the detailed or summary table for report
func Table(w io.Writer, report *usage.Report, style Style) error {
	var headers []string
	var rows [][]string
	var numeric map[int]bool

	if report.Detailed {
		headers, rows, numeric = detailedRows(report)
	} else {
		headers, rows, numeric = summaryRows(report)
	}

	totals := totalRows(report)
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle(style, row, col, totals(row), numeric[col])
		})

	if style == StylePlain {
		t = t.Border(lipgloss.ASCIIBorder())
	} else {
		t = t.Border(lipgloss.RoundedBorder()).BorderStyle(styles.TableBorder)
	}

	if _, err := fmt.Fprintln(w, title(report, style)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func detailedRows(report *usage.Report) ([]string, [][]string, map[int]bool) {
	headers := []string{"Environment Name", "Application Name", "Replicas", "vCore per Replica"}
	var rows [][]string
	for _, env := range report.Environments {
		for _, e := range env.Entries {
			rows = append(rows, []string{env.Environment, e.Application, strconv.Itoa(e.Replicas), FormatVCores(e.VCores)})
		}
		rows = append(rows, []string{env.Environment + " Total", "", "", FormatTotal(env.Total)})
	}
	rows = append(rows, []string{"Total", "", "", FormatTotal(report.GrandTotal)})
	return headers, rows, map[int]bool{2: true, 3: true}
}

func summaryRows(report *usage.Report) ([]string, [][]string, map[int]bool) {
	headers := []string{"Environment Name", "vCore Usage"}
	rows := make([][]string, 0, len(report.Environments)+1)
	for _, env := range report.Environments {
		rows = append(rows, []string{env.Environment, FormatTotal(env.Total)})
	}
	rows = append(rows, []string{"Total", FormatTotal(report.GrandTotal)})
	return headers, rows, map[int]bool{1: true}
}

// totalRows returns a predicate for the row indexes holding totals
func totalRows(report *usage.Report) func(int) bool {
	marked := make(map[int]bool)
	row := 0
	for _, env := range report.Environments {
		if report.Detailed {
			row += len(env.Entries)
			marked[row] = true
		}
		row++
	}
	marked[row] = true
	return func(i int) bool { return marked[i] }
}

func cellStyle(style Style, row, col int, total, numeric bool) lipgloss.Style {
	var s lipgloss.Style
	switch {
	case style == StylePlain:
		s = lipgloss.NewStyle().Padding(0, 1)
	case row == table.HeaderRow:
		s = styles.TableHeader
	case total:
		s = styles.TableTotal
	default:
		s = styles.TableCell
	}
	if numeric && row != table.HeaderRow {
		s = s.Align(lipgloss.Right)
	}
	return s
}

func title(report *usage.Report, style Style) string {
	text := "vCore usage for " + report.Organization.Name
	if report.Region != "" {
		text += " (" + string(report.Region) + ")"
	}
	if style == StylePlain {
		return text
	}
	return styles.Title.Render(text)
}

// numbers groups thousands in table cells
var numbers = message.NewPrinter(language.English)

// FormatTotal prints a rounded total with two decimals, e.g. 1,234.50
func FormatTotal(v float64) string {
	return numbers.Sprintf("%.2f", v)
}

// FormatVCores prints a per-replica size in its shortest form, e.g. 0.1
func FormatVCores(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
