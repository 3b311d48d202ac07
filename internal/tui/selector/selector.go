// ABOUTME: Interactive selection of region, credentials, organization and environments
// ABOUTME: Runs one themed huh form per question and returns plain values

package selector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/icons"
	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a prompt
var ErrAborted = errors.New("selection aborted")

// Selector answers the questions asked before a report is built
type Selector interface {
	Region(ctx context.Context) (client.Region, error)
	Credentials(ctx context.Context, partial client.Credentials) (client.Credentials, error)
	Organization(ctx context.Context, orgs *client.IDMap) (string, error)
	Environments(ctx context.Context, envs *client.IDMap) ([]string, error)
	Detailed(ctx context.Context) (bool, error)
}

// Form is a Selector backed by huh prompts
type Form struct {
	theme      *huh.Theme
	accessible bool
	input      io.Reader
	output     io.Writer
}

// Option configures a Form
type Option func(*Form)

// WithAccessible switches huh to its line based accessible mode
func WithAccessible(accessible bool) Option {
	return func(f *Form) {
		f.accessible = accessible
	}
}

// WithIO overrides the terminal the prompts read from and draw to
func WithIO(in io.Reader, out io.Writer) Option {
	return func(f *Form) {
		f.input = in
		f.output = out
	}
}

// New creates a Form drawing on stderr
func New(opts ...Option) *Form {
	f := &Form{
		theme:  createTheme(),
		input:  os.Stdin,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Region asks for the control plane, EU preselected
func (f *Form) Region(ctx context.Context) (client.Region, error) {
	region := client.RegionEU
	err := f.run(ctx, huh.NewGroup(
		huh.NewSelect[client.Region]().
			Title(icons.Cloud.String() + " Control plane").
			Description("Use ↑/↓ to select, Enter to confirm").
			Options(regionOptions()...).
			Value(&region),
	))
	return region, err
}

// Credentials prompts only for the halves missing from partial
func (f *Form) Credentials(ctx context.Context, partial client.Credentials) (client.Credentials, error) {
	creds := partial
	if creds.Complete() {
		return creds, nil
	}

	var fields []huh.Field
	if creds.ClientID == "" {
		fields = append(fields, huh.NewInput().
			Title("Client ID").
			Description("Connected app client id").
			Value(&creds.ClientID).
			Validate(validateRequired("client id")))
	}
	if creds.ClientSecret == "" {
		fields = append(fields, huh.NewInput().
			Title("Client Secret").
			EchoMode(huh.EchoModePassword).
			Value(&creds.ClientSecret).
			Validate(validateRequired("client secret")))
	}

	err := f.run(ctx, huh.NewGroup(fields...).Title(icons.Key.String() + " Credentials"))
	creds.ClientID = strings.TrimSpace(creds.ClientID)
	return creds, err
}

// Organization picks one business group from the hierarchy
func (f *Form) Organization(ctx context.Context, orgs *client.IDMap) (string, error) {
	if orgs.Len() == 0 {
		return "", errors.New("no organizations to choose from")
	}

	var name string
	err := f.run(ctx, huh.NewGroup(
		huh.NewSelect[string]().
			Title(icons.Org.String() + " Organization").
			Description("Use ↑/↓ to select, Enter to confirm").
			Options(nameOptions(orgs.Names())...).
			Value(&name),
	))
	return name, err
}

// Environments picks at least one environment
func (f *Form) Environments(ctx context.Context, envs *client.IDMap) ([]string, error) {
	if envs.Len() == 0 {
		return nil, errors.New("organization has no environments")
	}

	var names []string
	err := f.run(ctx, huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title(icons.Environment.String() + " Environments").
			Description("Space to toggle, Enter to confirm").
			Options(nameOptions(envs.Names())...).
			Value(&names).
			Validate(validateSelection),
	))
	return orderedSelection(envs.Names(), names), err
}

// Detailed asks whether to list applications or just totals
func (f *Form) Detailed(ctx context.Context) (bool, error) {
	detailed := false
	err := f.run(ctx, huh.NewGroup(
		huh.NewConfirm().
			Title(icons.App.String() + " Show per-application details?").
			Affirmative("Detailed").
			Negative("Summary").
			Value(&detailed),
	))
	return detailed, err
}

func (f *Form) run(ctx context.Context, group *huh.Group) error {
	form := huh.NewForm(group).
		WithTheme(f.theme).
		WithAccessible(f.accessible).
		WithInput(f.input).
		WithOutput(f.output).
		WithShowHelp(true)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

func regionOptions() []huh.Option[client.Region] {
	options := make([]huh.Option[client.Region], 0, len(client.Regions))
	for _, r := range client.Regions {
		label := fmt.Sprintf("%s (%s)", r, strings.TrimPrefix(r.BaseURL(), "https://"))
		options = append(options, huh.NewOption(label, r))
	}
	return options
}

func nameOptions(names []string) []huh.Option[string] {
	return huh.NewOptions(names...)
}

// orderedSelection returns the selected names in the order they were listed
func orderedSelection(all, selected []string) []string {
	chosen := make(map[string]bool, len(selected))
	for _, name := range selected {
		chosen[name] = true
	}
	result := make([]string, 0, len(selected))
	for _, name := range all {
		if chosen[name] {
			result = append(result, name)
		}
	}
	return result
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateSelection(selected []string) error {
	if len(selected) == 0 {
		return errors.New("select at least one environment")
	}
	return nil
}
