// Command optimize searches steering tunables with CMA-ES, scoring each
// candidate by headless runs over several seeds.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/orbitsteer/config"
	"github.com/pthm-cable/orbitsteer/telemetry"
)

type options struct {
	configPath string
	outputDir  string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&opts.outputDir, "output", "", "Output directory for results")
	flag.IntVar(&opts.maxTicks, "max-ticks", 6000, "Simulation duration per run in ticks")
	flag.IntVar(&opts.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&opts.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&opts.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(opts); err != nil {
		slog.Error("optimize failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if opts.outputDir == "" {
		return fmt.Errorf("--output is required")
	}
	if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()
	seeds := make([]int64, opts.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(opts.maxTicks), seeds, config.Cfg())

	evals, err := newEvalLog(filepath.Join(opts.outputDir, "optimize_log.csv"), params)
	if err != nil {
		return err
	}
	defer evals.close()

	// Candidates are searched in normalized [0,1] space
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			evals.record(fitness, raw)
			slog.Info("evaluation",
				"eval", evals.count,
				"fitness", fitness,
				"quality", evaluator.LastQuality(),
				"best", evals.bestFitness,
			)
			return fitness
		},
	}

	popSize := opts.population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	settings := &optimize.Settings{FuncEvaluations: opts.maxEvals}

	slog.Info("starting CMA-ES",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", opts.maxEvals,
		"seeds", opts.seeds,
		"ticks", opts.maxTicks,
	)
	start := time.Now()

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	best := evals.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return fmt.Errorf("no evaluation completed")
	}

	attrs := []any{"evals", evals.count, "elapsed", time.Since(start).Round(time.Second), "fitness", evals.bestFitness}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, best[i])
	}
	slog.Info("optimization complete", attrs...)

	return writeResults(opts, params, best, evaluator.BestWindows())
}

// writeResults saves the best config and the telemetry of its best run.
func writeResults(opts options, params *ParamVector, best []float64, windows []telemetry.WindowStats) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("reloading config: %w", err)
	}
	params.ApplyToConfig(cfg, best)

	cfgPath := filepath.Join(opts.outputDir, "best_config.yaml")
	if err := cfg.WriteYAML(cfgPath); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("saved best config", "path", cfgPath)

	if len(windows) == 0 {
		return nil
	}
	windowsPath := filepath.Join(opts.outputDir, "best_run_telemetry.csv")
	if err := writeWindows(windowsPath, windows); err != nil {
		return fmt.Errorf("writing best run telemetry: %w", err)
	}
	slog.Info("saved best run telemetry", "path", windowsPath, "windows", len(windows))
	return nil
}

func writeWindows(path string, windows []telemetry.WindowStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&windows, f)
}

// evalLog appends one row per evaluation and tracks the best candidate.
// Columns follow the parameter list, so the header is built at runtime.
type evalLog struct {
	f *os.File
	w *csv.Writer

	count       int
	best        []float64
	bestFitness float64
}

func newEvalLog(path string, params *ParamVector) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	header := []string{"eval", "fitness"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing eval log header: %w", err)
	}
	return &evalLog{f: f, w: w}, nil
}

func (l *evalLog) record(fitness float64, values []float64) {
	l.count++
	if l.best == nil || fitness < l.bestFitness {
		l.bestFitness = fitness
		l.best = append(l.best[:0], values...)
	}

	row := []string{strconv.Itoa(l.count), strconv.FormatFloat(fitness, 'f', 6, 64)}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		slog.Warn("eval log write failed", "error", err)
	}
	l.w.Flush()
}

func (l *evalLog) close() {
	l.w.Flush()
	l.f.Close()
}
