package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/dotdrop/internal/analysis"
	"github.com/san-kum/dotdrop/internal/archive"
	"github.com/san-kum/dotdrop/internal/automation"
	"github.com/san-kum/dotdrop/internal/config"
	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/export"
	"github.com/san-kum/dotdrop/internal/gui"
	"github.com/san-kum/dotdrop/internal/metrics"
	"github.com/san-kum/dotdrop/internal/optim"
	"github.com/san-kum/dotdrop/internal/session"
	"github.com/san-kum/dotdrop/internal/sim"
	"github.com/san-kum/dotdrop/internal/storage"
	"github.com/san-kum/dotdrop/internal/tui"
	"github.com/san-kum/dotdrop/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	watch      bool
	archiveOut string

	dt        float64
	duration  float64
	seed      int64
	numBodies int
	spawnGap  float64
	record    int
	validate  bool
	save      bool
	live      bool
	frameRate int
	ensemble  int

	theme    string
	month    string
	metric   string
	tuneArgs []string
	sweepMin float64
	sweepMax float64
	steps    int
	bodyID   string
	svgOut   string
	svgFrame int
	trails   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dotdrop",
		Short: "drop words as dots, hold one to drag it away",
		RunE:  runGUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dotdrop", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine events to stderr")

	addInteractiveFlags(rootCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the dots window",
		RunE:  runGUI,
	}
	addInteractiveFlags(guiCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "dots in the terminal (mouse required)",
		RunE:  runTUI,
	}
	addInteractiveFlags(tuiCmd)
	tuiCmd.Flags().StringVar(&theme, "theme", "ink", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "frame interval in seconds")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	runCmd.Flags().IntVar(&numBodies, "bodies", config.DefaultBodies, "number of dots")
	runCmd.Flags().Float64Var(&spawnGap, "spawn-every", 0.25, "seconds between dot creations")
	runCmd.Flags().IntVar(&record, "record-every", 1, "keep one frame in n")
	runCmd.Flags().BoolVar(&validate, "validate", true, "stop on NaN or Inf state")
	runCmd.Flags().BoolVar(&save, "save", true, "store the run under the data directory")
	runCmd.Flags().BoolVar(&live, "live", false, "draw frames in the terminal while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")
	runCmd.Flags().IntVar(&ensemble, "ensemble", 0, "run n seeds in parallel and summarize metrics")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot dot height and energy over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodyID, "body", "", "dot id to plot (default: first)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a recorded frame or the trajectories as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default: stdout)")
	svgCmd.Flags().IntVar(&svgFrame, "frame", -1, "frame index, negative counts from the end")
	svgCmd.Flags().BoolVar(&trails, "trails", false, "draw trajectories instead of one frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default config (or --preset) to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	archiveCmd := &cobra.Command{
		Use:   "archive [file]",
		Short: "print an archive saved with --archive-out",
		Args:  cobra.ExactArgs(1),
		RunE:  printArchive,
	}
	archiveCmd.Flags().StringVar(&month, "month", archive.AllMonths, "month filter (all, Jan ... Dec)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "bounce frequency and phase portrait of one dot",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&bodyID, "body", "", "dot id to analyze (default: first)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search tuning parameters that minimize a metric",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&tuneArgs, "param", nil, "name=min:max:n, repeatable ("+strings.Join(config.ParamNames(), ", ")+")")
	tuneCmd.Flags().StringVar(&metric, "metric", "rest_time", "metric to minimize")
	_ = tuneCmd.MarkFlagRequired("param")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run one simulation per value of a tuning parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(guiCmd, tuiCmd, runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, svgCmd,
		presetsCmd, initCmd, archiveCmd, analyzeCmd, tuneCmd, sweepCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addInteractiveFlags(c *cobra.Command) {
	c.Flags().BoolVar(&watch, "watch", false, "reload --config when the file changes")
	c.Flags().StringVar(&archiveOut, "archive-out", "", "write the archive to this yaml file on exit")
}

// loadConfig resolves defaults, then --preset, then --config. Run flags
// override the file when set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("bodies") {
		cfg.Run.Bodies = numBodies
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

func newLogger() *log.Logger {
	if verbose {
		return log.New(os.Stderr, "dotdrop: ", log.Ltime|log.Lmicroseconds)
	}
	return log.New(io.Discard, "", 0)
}

func newSession(cfg *config.Config, vp dots.Size) (*session.Session, error) {
	opts := []session.Option{session.WithLogger(newLogger())}
	if watch {
		if configFile == "" {
			return nil, fmt.Errorf("--watch needs --config")
		}
		w, err := config.Watch(configFile)
		if err != nil {
			return nil, fmt.Errorf("watch config: %w", err)
		}
		opts = append(opts, session.WithWatcher(w))
	}
	return session.New(cfg, vp, opts...), nil
}

func saveArchive(sess *session.Session) error {
	if archiveOut == "" {
		return nil
	}
	if err := sess.Archive.Save(archiveOut); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	return nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	vp := dots.Size{W: float64(cfg.Window.Width), H: float64(cfg.Window.Height)}
	sess, err := newSession(cfg, vp)
	if err != nil {
		return err
	}
	if err := gui.Run(sess, cfg); err != nil {
		return err
	}
	return saveArchive(sess)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sess, err := newSession(cfg, dots.Size{W: 800, H: 420})
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := tui.Run(sess, theme); err != nil {
		return err
	}
	return saveArchive(sess)
}

func simConfig(cfg *config.Config) sim.Config {
	sc := automation.SimConfig(cfg)
	sc.SpawnEvery = spawnGap
	sc.RecordEvery = record
	sc.ValidateState = validate
	return sc
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	t := cfg.Tuning()
	sc := simConfig(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if ensemble > 0 {
		return runEnsemble(ctx, t, sc)
	}

	s := sim.New(t)
	s.SetLogger(newLogger())
	for _, m := range automation.DefaultMetrics(sc.Viewport, t) {
		s.AddMetric(m)
	}
	if live {
		r := tui.NewLiveRenderer(sc.Viewport, t, frameRate)
		r.Start()
		defer r.Stop()
		s.AddObserver(sim.ObserverFunc(func(f sim.Frame) {
			r.OnFrame(f)
			time.Sleep(time.Duration(sc.Dt * float64(time.Second)))
		}))
	}

	name := preset
	if name == "" {
		name = "default"
	}
	fmt.Printf("running %s: %d dots for %.1fs...\n", name, sc.Bodies, sc.Duration)
	start := time.Now()

	result, err := s.Run(ctx, sc)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d, frames kept: %d\n", result.StepsTaken, len(result.Frames))
	fmt.Printf("contacts: %d, floor hits: %d, wall hits: %d\n",
		result.Totals.Contacts, result.Totals.FloorHits, result.Totals.WallHits)
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(name, sc, t, result)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runEnsemble(ctx context.Context, t dots.Tuning, sc sim.Config) error {
	ens := sim.NewEnsemble(t, ensemble, sc.Seed, func() []sim.Metric {
		return automation.DefaultMetrics(sc.Viewport, t)
	})
	fmt.Printf("running %d seeds from %d...\n", ensemble, sc.Seed)
	results, err := ens.Run(ctx, sc)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	names := make([]string, 0)
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "SEED\t"+strings.ToUpper(strings.Join(names, "\t")))
	for i, r := range results {
		row := []string{fmt.Sprint(sc.Seed + int64(i))}
		for _, n := range names {
			row = append(row, fmt.Sprintf("%.3f", r.Metrics[n]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tDOTS\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Bodies,
			run.Seed,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	id := dots.ID(bodyID)
	if id == "" {
		id = frames[len(frames)-1].Bodies[0].ID
	}

	heights := analysis.HeightSeries(frames, id, meta.FloorY)
	energy := make([]float64, len(frames))
	for i, f := range frames {
		energy[i] = metrics.Mechanical(f.Bodies, meta.FloorY, meta.Gravity)
	}
	if len(heights) == 0 {
		return fmt.Errorf("dot %s not found in run %s", id, meta.ID)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(frames))

	fmt.Println(asciigraph.Plot(heights,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s height above floor (px)", id)),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(energy,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total mechanical energy"),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(*meta, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var out string
	if trails {
		out = export.TrajectoriesToSVG(*meta, frames)
	} else {
		i := svgFrame
		if i < 0 {
			i += len(frames)
		}
		if i < 0 || i >= len(frames) {
			return fmt.Errorf("frame %d out of range (run has %d)", svgFrame, len(frames))
		}
		out = export.SceneToSVG(*meta, frames[i])
	}

	if svgOut == "" {
		fmt.Println(out)
		return nil
	}
	return os.WriteFile(svgOut, []byte(out), 0644)
}

func printArchive(cmd *cobra.Command, args []string) error {
	a := archive.New(nil)
	if err := a.Load(args[0]); err != nil {
		return err
	}
	groups := a.List(month)
	if len(groups) == 0 {
		fmt.Println("nothing dropped yet")
		return nil
	}
	for _, g := range groups {
		fmt.Println(g.Label)
		for _, e := range g.Entries {
			fmt.Printf("  %-20s %s | %d\n", e.Word, e.Date.Format(archive.DateLabel), e.Count)
			for _, l := range strings.Split(e.Line, "\n") {
				if l != "" {
					fmt.Printf("      %s\n", l)
				}
			}
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	id := dots.ID(bodyID)
	if id == "" {
		id = frames[len(frames)-1].Bodies[0].ID
	}
	heights := analysis.HeightSeries(frames, id, meta.FloorY)
	if len(heights) == 0 {
		return fmt.Errorf("dot %s not found in run %s", id, meta.ID)
	}
	dt := meta.Dt
	if len(frames) > 1 {
		dt = frames[1].Time - frames[0].Time
	}

	fmt.Printf("run: %s, dot: %s, samples: %d\n", meta.ID, id, len(heights))
	hz, err := analysis.DominantFrequency(heights, dt)
	switch {
	case errors.Is(err, analysis.ErrFlat):
		fmt.Println("bounce frequency: none (at rest)")
	case err != nil:
		return err
	default:
		fmt.Printf("bounce frequency: %.3f Hz (period %.3fs)\n", hz, 1/hz)
	}
	if v, ok := meta.Metrics["bounces"]; ok {
		fmt.Printf("bounces: %.0f\n", v)
	}

	fmt.Println("\nheight (x) against vertical speed (y):")
	fmt.Print(analysis.PhasePortraitToASCII(analysis.GeneratePhasePortrait(frames, id, meta.FloorY), 70, 18))
	return nil
}

// parseRange reads name=min:max:n.
func parseRange(s string) (string, []float64, error) {
	name, spec, ok := strings.Cut(s, "=")
	parts := strings.Split(spec, ":")
	if !ok || len(parts) != 3 {
		return "", nil, fmt.Errorf("bad --param %q, want name=min:max:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", nil, err
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(tuneArgs))
	ranges := make([][]float64, 0, len(tuneArgs))
	for _, a := range tuneArgs {
		name, values, err := parseRange(a)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()
	best, val, err := g.Search(ctx, cfg, func(ctx context.Context, c *config.Config) (float64, error) {
		result, err := automation.Run(ctx, c)
		if err != nil {
			return 0, err
		}
		v, ok := result.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("unknown metric %q", metric)
		}
		logger.Printf("tune: %s=%.4f", metric, v)
		return v, nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("best %s: %.4f\n", metric, val)
	for _, n := range names {
		fmt.Printf("  %s: %.4f\n", n, best[n])
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: args[0],
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  steps,
	}, os.Stderr)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(args[0])+"\tFLOOR HITS\t"+strings.ToUpper(strings.Join(names, "\t")))
	for _, r := range results {
		row := []string{fmt.Sprintf("%.4f", r.ParamValue), fmt.Sprint(r.Totals.FloorHits)}
		for _, n := range names {
			row = append(row, fmt.Sprintf("%.3f", r.Metrics[n]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if sc.Description != "" {
		fmt.Printf("%s: %s\n", sc.Name, sc.Description)
	}
	results, err := automation.RunScenario(ctx, sc, st, os.Stdout)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Printf("step %d: %d steps, floor hits %d, max impact %.1f\n",
			i+1, r.StepsTaken, r.Totals.FloorHits, r.Totals.MaxImpact)
	}
	return nil
}
