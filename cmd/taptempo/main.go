// Package main provides the CLI entrypoint for taptempo.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/taptempo/internal/config"
	"github.com/verte-zerg/taptempo/internal/generator"
	"github.com/verte-zerg/taptempo/internal/midiexport"
	"github.com/verte-zerg/taptempo/internal/model"
	"github.com/verte-zerg/taptempo/internal/stats"
	"github.com/verte-zerg/taptempo/internal/taplog"
	"github.com/verte-zerg/taptempo/internal/tempo"
	"github.com/verte-zerg/taptempo/internal/tui"
)

const (
	defaultDisplay       = "exact"
	defaultSimulateCount = 32
	defaultJitter        = 0.05
	defaultChartHeight   = 10
)

var (
	debugLogging bool

	tapWindow  int
	tapDisplay string

	exportPath         string
	exportPitch        int
	exportCountInPitch int
	exportVelocity     int
	exportChannel      int
	exportTrackName    string

	saveTapsPath string

	simulateBPM    float64
	simulateEndBPM float64
	simulateCount  int
	simulateJitter float64
	simulateSeed   int64

	chartWidth  int
	chartHeight int

	exportPrint bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := midiexport.DefaultOptions()
	rootCmd := &cobra.Command{
		Use:           "taptempo",
		Short:         "Tap along to music, measure its BPM and export a MIDI tempo map",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			initLogger(os.Stderr, debugLogging)
		},
		RunE: runTapCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&debugLogging, "debug", false, "enable debug logging")
	pf.IntVar(&tapWindow, "window", int(tempo.DefaultWindowSize), "smoothing window (1, 2, 4, 6, 8 or 10 taps)")
	pf.StringVar(&tapDisplay, "display", defaultDisplay, "displayed series (exact or average)")
	pf.StringVarP(&exportPath, "output", "o", config.DefaultExportPath(), "MIDI output file")
	pf.IntVar(&exportPitch, "pitch", int(defaults.Pitch), "MIDI note marking each tempo segment (0-127)")
	pf.IntVar(&exportCountInPitch, "count-in-pitch", int(defaults.CountInPitch), "MIDI note for count-in beats (0-127)")
	pf.IntVar(&exportVelocity, "velocity", int(defaults.Velocity), "note velocity (1-127)")
	pf.IntVar(&exportChannel, "channel", int(defaults.Channel), "MIDI channel (0-15)")
	pf.StringVar(&exportTrackName, "track-name", defaults.TrackName, "MIDI track name")

	rootCmd.Flags().StringVar(&saveTapsPath, "save-taps", "", "write the session tap log to this file on exit")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

func runTapCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// The alt screen owns the terminal, so logs go to a file or nowhere.
	if debugLogging {
		logPath := config.DefaultLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		logFile, err := tea.LogToFile(logPath, "taptempo")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer func() {
			if cerr := logFile.Close(); cerr != nil {
				logErrf("failed to close debug log: %v\n", cerr)
			}
		}()
		initLogger(logFile, true)
	} else {
		initLogger(io.Discard, false)
	}

	m := tui.NewModel(cfg, exportOptions(cfg))
	program := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := program.Run()
	initLogger(os.Stderr, debugLogging)
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}

	est := m.Estimator()
	if err := stats.RenderSummary(cmd.OutOrStdout(), stats.Summarize(est.Taps(), est.RawSeries())); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if saveTapsPath != "" && est.TapCount() > 0 {
		if err := writeTapLog(saveTapsPath, taplog.Rebase(est.Taps())); err != nil {
			return fmt.Errorf("failed to save taps: %w", err)
		}
		logErrf("Saved %d taps to %s\n", est.TapCount(), saveTapsPath)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [taps-file]",
		Short: "Print BPM statistics for a recorded tap log",
		Long:  "Reads one millisecond timestamp per line from a file or stdin, or simulates taps with --simulate-bpm.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runAnalyzeCmd,
	}
	addTapSourceFlags(cmd)
	cmd.Flags().IntVar(&chartWidth, "width", 0, "chart width in columns (default: terminal width)")
	cmd.Flags().IntVar(&chartHeight, "height", defaultChartHeight, "chart height in rows")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	taps, err := loadTaps(cmd, args)
	if err != nil {
		return err
	}
	est, err := replay(taps, cfg)
	if err != nil {
		return err
	}
	slog.Debug("taps analyzed", "taps", est.TapCount(), "window", cfg.Window)

	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, stats.Summarize(est.Taps(), est.RawSeries())); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	series := []stats.Series{{Name: "Raw", Values: est.RawSeries()}}
	if cfg.Display == model.DisplayAverage {
		series = append(series, stats.Series{Name: "Running avg", Values: est.RunningAverageSeries()})
	} else {
		series = append(series, stats.Series{
			Name:   fmt.Sprintf("Smoothed (window %d)", cfg.Window),
			Values: est.SmoothedSeries(cfg.Window),
		})
	}
	if err := stats.RenderBPMChart(out, "BPM", series, chartWidth, chartHeight, false); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := fmt.Fprintln(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSeriesTable(out, est.SeriesRows()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [taps-file]",
		Short: "Write a MIDI tempo map for a recorded tap log",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}
	addTapSourceFlags(cmd)
	cmd.Flags().BoolVar(&exportPrint, "print", false, "print the tempo map")
	return cmd
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	taps, err := loadTaps(cmd, args)
	if err != nil {
		return err
	}
	entries, err := tempo.BuildTempoMap(taps, cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to build tempo map: %w", err)
	}
	if err := midiexport.WriteFile(cfg.ExportPath, entries, exportOptions(cfg)); err != nil {
		return err
	}
	slog.Debug("tempo map exported", "path", cfg.ExportPath, "entries", len(entries), "ticks", tempo.TotalTicks(entries))
	logErrf("Wrote %d tempo events to %s\n", len(entries), cfg.ExportPath)
	if exportPrint {
		if err := stats.RenderTempoMap(cmd.OutOrStdout(), entries); err != nil {
			return fmt.Errorf("failed to write tempo map: %w", err)
		}
	}
	return nil
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.mid>",
		Short: "Print the tempo map stored in a MIDI file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspectCmd,
	}
}

func runInspectCmd(cmd *cobra.Command, args []string) error {
	entries, err := midiexport.ReadFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderTempoMap(out, entries); err != nil {
		return fmt.Errorf("failed to write tempo map: %w", err)
	}
	if _, err := fmt.Fprintf(out, "Total: %d ticks at %d ticks per quarter\n", tempo.TotalTicks(entries), tempo.TicksPerQuarter); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func addTapSourceFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&simulateBPM, "simulate-bpm", 0, "simulate taps at this tempo instead of reading a file")
	cmd.Flags().Float64Var(&simulateEndBPM, "simulate-end-bpm", 0, "ramp simulated taps to this tempo")
	cmd.Flags().IntVar(&simulateCount, "simulate-count", defaultSimulateCount, "number of simulated taps")
	cmd.Flags().Float64Var(&simulateJitter, "jitter", defaultJitter, "simulated timing jitter as a fraction of the beat")
	cmd.Flags().Int64Var(&simulateSeed, "seed", 1, "random seed for simulated taps")
}

func loadTaps(cmd *cobra.Command, args []string) ([]int64, error) {
	if simulateBPM > 0 {
		if simulateCount < 2 {
			return nil, fmt.Errorf("--simulate-count must be >= 2")
		}
		if simulateJitter < 0 {
			return nil, fmt.Errorf("--jitter must be >= 0")
		}
		end := simulateEndBPM
		if end <= 0 {
			end = simulateBPM
		}
		return generator.New(simulateSeed).Ramp(simulateBPM, end, simulateCount, simulateJitter, 0), nil
	}
	if len(args) == 1 && args[0] != "-" {
		taps, err := taplog.LoadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load taps: %w", err)
		}
		return taps, nil
	}
	taps, err := taplog.Load(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to load taps: %w", err)
	}
	return taps, nil
}

func replay(taps []int64, cfg model.Config) (*tempo.Estimator, error) {
	est := tempo.NewEstimator()
	est.SetWindowSize(tempo.WindowSize(cfg.Window))
	est.SetDisplayMode(cfg.Display)
	for i, ts := range taps {
		if err := est.RecordTap(ts); err != nil {
			return nil, fmt.Errorf("tap %d: %w", i+1, err)
		}
	}
	return est, nil
}

func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "window", &tapWindow, fileCfg.Tap.Window)
	applyStringConfig(cmd, "display", &tapDisplay, fileCfg.Tap.Display)
	applyStringConfig(cmd, "output", &exportPath, fileCfg.Export.Path)
	applyIntConfig(cmd, "pitch", &exportPitch, fileCfg.Export.Pitch)
	applyIntConfig(cmd, "count-in-pitch", &exportCountInPitch, fileCfg.Export.CountInPitch)
	applyIntConfig(cmd, "velocity", &exportVelocity, fileCfg.Export.Velocity)
	applyIntConfig(cmd, "channel", &exportChannel, fileCfg.Export.Channel)
	applyStringConfig(cmd, "track-name", &exportTrackName, fileCfg.Export.TrackName)

	display, err := model.ParseDisplayMode(tapDisplay)
	if err != nil {
		return model.Config{}, fmt.Errorf("--display: %w", err)
	}
	cfg := model.Config{
		Window:       tapWindow,
		Display:      display,
		ExportPath:   strings.TrimSpace(exportPath),
		Pitch:        exportPitch,
		CountInPitch: exportCountInPitch,
		Velocity:     exportVelocity,
		Channel:      exportChannel,
		TrackName:    exportTrackName,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	defaults := midiexport.DefaultOptions()
	return fmt.Sprintf(`# taptempo configuration
# Uncomment a value to enable it. CLI flags override config values.

[tap]
# window = %d             # Smoothing window: 1, 2, 4, 6, 8 or 10 taps
# display = %q       # Displayed series: exact or average

[export]
# path = %q         # MIDI output file
# pitch = %d              # Note marking each tempo segment (0-127)
# count-in-pitch = %d     # Note for the count-in beats (0-127)
# velocity = %d          # Note velocity (1-127)
# channel = %d             # MIDI channel (0-15)
# track-name = %q   # Track name stored in the file
`,
		int(tempo.DefaultWindowSize),
		defaultDisplay,
		config.DefaultExportPath(),
		defaults.Pitch,
		defaults.CountInPitch,
		defaults.Velocity,
		defaults.Channel,
		defaults.TrackName,
	)
}

func validateConfig(cfg model.Config) error {
	if _, err := tempo.ParseWindowSize(cfg.Window); err != nil {
		return fmt.Errorf("--window: %w", err)
	}
	if cfg.ExportPath == "" {
		return fmt.Errorf("--output must not be empty")
	}
	if cfg.Pitch < 0 || cfg.Pitch > 127 {
		return fmt.Errorf("--pitch must be between 0 and 127")
	}
	if cfg.CountInPitch < 0 || cfg.CountInPitch > 127 {
		return fmt.Errorf("--count-in-pitch must be between 0 and 127")
	}
	if cfg.Velocity < 1 || cfg.Velocity > 127 {
		return fmt.Errorf("--velocity must be between 1 and 127")
	}
	if cfg.Channel < 0 || cfg.Channel > 15 {
		return fmt.Errorf("--channel must be between 0 and 15")
	}
	return nil
}

func exportOptions(cfg model.Config) midiexport.Options {
	return midiexport.Options{
		Channel:      uint8(cfg.Channel),
		Pitch:        uint8(cfg.Pitch),
		CountInPitch: uint8(cfg.CountInPitch),
		Velocity:     uint8(cfg.Velocity),
		TrackName:    cfg.TrackName,
	}
}

func writeTapLog(path string, taps []int64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create tap log dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "taps-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp tap log: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := taplog.Write(tmpFile, taps); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close tap log: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write tap log: %w", err)
	}
	return nil
}

// initLogger installs the default slog logger writing to w.
func initLogger(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	slog.SetDefault(slog.New(h))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
