package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/tuannvm/fileaudit/internal/config"
)

const browseValue = "__browse__"

// DashboardResult contains the user's selections from the dashboard
type DashboardResult struct {
	InputPath  string
	Format     string
	OutputDir  string
	Execution  string
	BatchSize  string
	ResumeMode string // "normal", "resume", "force"
	Latency    bool
	Timeout    int
	ConfigPath string
	Verbosity  string // "normal", "verbose", "quiet"
	Cancelled  bool
}

// RunOptions maps the selections onto the shared run options
func (r *DashboardResult) RunOptions() config.RunOptions {
	opts := config.RunOptions{
		OutputDir:  r.OutputDir,
		Format:     r.Format,
		Execution:  r.Execution,
		ResumeMode: r.ResumeMode,
		NoLatency:  !r.Latency,
		Timeout:    r.Timeout,
		ConfigPath: r.ConfigPath,
		Verbosity:  r.Verbosity,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(r.BatchSize)); err == nil && n > 0 {
		opts.BatchSize = n
	}
	if r.InputPath != "" {
		if IsManifest(r.InputPath) && FileExists(r.InputPath) {
			opts.Manifest = r.InputPath
		} else {
			opts.Inputs = []string{r.InputPath}
		}
	}
	return opts
}

// DashboardOptions configures the dashboard
type DashboardOptions struct {
	PrefilledInput string
	Config         *config.Config
	Accessible     bool
}

// newDashboardResult seeds the form values from config
func newDashboardResult(opts DashboardOptions) *DashboardResult {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &DashboardResult{
		InputPath:  opts.PrefilledInput,
		Format:     cfg.Format,
		OutputDir:  cfg.OutputDir,
		Execution:  cfg.Execution,
		BatchSize:  strconv.Itoa(cfg.BatchSize),
		ResumeMode: config.ResumeModeNormal,
		Latency:    cfg.SimulateLatency,
		Timeout:    cfg.Timeout,
		Verbosity:  config.VerbosityNormal,
	}
}

// inputOptions lists folders, then manifests, then browse. A prefilled
// path not already present goes first.
func inputOptions(prefilled string, folders, manifests []string) []huh.Option[string] {
	var options []huh.Option[string]
	for _, f := range folders {
		options = append(options, huh.NewOption("📁 "+f+"/", f))
	}
	for _, f := range manifests {
		options = append(options, huh.NewOption("📄 "+f, f))
	}
	options = append(options, huh.NewOption("🔍 Browse...", browseValue))

	if prefilled == "" {
		return options
	}
	for _, opt := range options {
		if opt.Value == prefilled {
			return options
		}
	}
	return append([]huh.Option[string]{huh.NewOption(prefilled, prefilled)}, options...)
}

func toHuhOptions(opts []config.Option) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(opts))
	for _, o := range opts {
		label := o.Label
		if o.Description != "" {
			label += " - " + o.Description
		}
		out = append(out, huh.NewOption(label, o.Value))
	}
	return out
}

// RunDashboard displays the interactive single-screen form
func RunDashboard(opts DashboardOptions) (*DashboardResult, error) {
	// Auto-enable accessible mode for non-terminals
	accessible := opts.Accessible || !isTerminal()

	result := newDashboardResult(opts)
	options := inputOptions(result.InputPath, DiscoverInputFolders(), DiscoverManifests())

	action := "run"
	timeoutStr := strconv.Itoa(result.Timeout)

	for {
		action = "run"

		fmt.Print("\033[H\033[2J") // Clear screen
		fmt.Println(Banner())

		mainForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Input").
					Description("Folder, file or descriptor manifest").
					Options(options...).
					Height(8).
					Value(&result.InputPath),

				huh.NewSelect[string]().
					Title("Format").
					Options(toHuhOptions(config.FormatOptions)...).
					Value(&result.Format),

				huh.NewInput().
					Title("Output").
					Placeholder(config.DefaultOutputDir).
					Value(&result.OutputDir),

				huh.NewSelect[string]().
					Title("Action").
					Description("Shift+Tab go back").
					Options(
						huh.NewOption("▶ Run", "run"),
						huh.NewOption("⚙ Advanced...", "advanced"),
						huh.NewOption("✕ Cancel", "cancel"),
					).
					Value(&action),
			),
		).WithTheme(AuditTheme()).WithAccessible(accessible)

		if err := mainForm.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				result.Cancelled = true
				return result, nil
			}
			return nil, fmt.Errorf("form error: %w", err)
		}

		if result.InputPath == browseValue {
			result.InputPath = ""
			browseForm := huh.NewForm(
				huh.NewGroup(
					huh.NewFilePicker().
						Title("Browse").
						Description("Enter=open/select • .=hidden").
						Picking(true).
						DirAllowed(true).
						FileAllowed(true).
						CurrentDirectory(".").
						ShowHidden(false).
						ShowSize(true).
						ShowPermissions(false).
						Height(15).
						Value(&result.InputPath),
				).Title("File Audit"),
			).WithTheme(AuditTheme()).WithAccessible(accessible)

			if err := browseForm.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					continue
				}
				return nil, err
			}
			if result.InputPath != "" {
				options = inputOptions(result.InputPath, DiscoverInputFolders(), DiscoverManifests())
			}
			continue
		}

		if action == "cancel" {
			result.Cancelled = true
			return result, nil
		}

		if result.InputPath == "" {
			continue
		}

		if action == "run" {
			break
		}

		advancedForm := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Execution").
					Options(toHuhOptions(config.ExecutionOptions)...).
					Value(&result.Execution),

				huh.NewSelect[string]().
					Title("Batch size").
					Options(toHuhOptions(config.BatchSizeOptions)...).
					Value(&result.BatchSize),

				huh.NewSelect[string]().
					Title("Resume").
					Options(toHuhOptions(config.ResumeModeOptions)...).
					Value(&result.ResumeMode),

				huh.NewConfirm().
					Title("Simulate latency").
					Affirmative("Yes").
					Negative("No").
					Value(&result.Latency),

				huh.NewInput().
					Title("Timeout (sec)").
					Placeholder("0").
					Validate(validateTimeout).
					Value(&timeoutStr),

				huh.NewInput().
					Title("Config file").
					Placeholder(".fileaudit/config.yaml").
					Value(&result.ConfigPath),

				huh.NewSelect[string]().
					Title("Verbosity").
					Options(toHuhOptions(config.VerbosityOptions)...).
					Value(&result.Verbosity),
			).Title("Advanced").Description("Esc=back"),
		).WithTheme(AuditTheme()).WithAccessible(accessible)

		if err := advancedForm.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue // Back to main
			}
			return nil, fmt.Errorf("form error: %w", err)
		}
	}

	if t, err := strconv.Atoi(strings.TrimSpace(timeoutStr)); err == nil {
		result.Timeout = t
	}
	return result, nil
}

func validateTimeout(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errors.New("timeout must be a non-negative number of seconds")
	}
	return nil
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
