// ABOUTME: Renders name/id listings for organizations and environments
// ABOUTME: Shares the table styles and machine formats with the report renderer

package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// List writes name/id pairs under a heading such as "Environment"
func List(w io.Writer, heading string, items []client.NamedID, format string, style Style) error {
	if items == nil {
		items = []client.NamedID{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTable, "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.Name, item.ID})
	}

	t := table.New().
		Headers(heading+" Name", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle(style, row, col, false, false)
		})
	if style == StylePlain {
		t = t.Border(lipgloss.ASCIIBorder())
	} else {
		t = t.Border(lipgloss.RoundedBorder()).BorderStyle(styles.TableBorder)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
