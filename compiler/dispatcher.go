// Package compiler is the compilation-dispatch core: it picks an execution
// environment for each request, drives the multi-pass compile/bibliography
// sequence and reconciles success from the artifact left on disk.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	cconfig "github.com/unilatex/latex_api_server/compiler/config"
	"github.com/unilatex/latex_api_server/compiler/service"
	"github.com/unilatex/latex_api_server/workspace"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedEngine = errors.New("unsupported engine")
)

var (
	compileInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "latex_api",
		Subsystem: "compiler",
		Name:      "dispatch_in_flight",
		Help:      "Current number of in-flight compile dispatches.",
	})

	compilePassTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "latex_api",
		Subsystem: "compiler",
		Name:      "pass_total",
		Help:      "Total number of toolchain passes.",
	}, []string{"pass", "result"})

	compileDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "latex_api",
		Subsystem: "compiler",
		Name:      "dispatch_duration_seconds",
		Help:      "Duration of compile dispatches in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
	}, []string{"engine", "result"})
)

func init() {
	prometheus.MustRegister(
		compileInFlight,
		compilePassTotal,
		compileDurationSeconds,
	)
}

// Request is a validated compile request with workspace-relative file path.
type Request struct {
	FilePath        string
	Engine          cconfig.Engine
	UseBibliography bool
	Quick           bool
}

// Outcome reconciles exit codes, aggregated output and the artifact probe.
// Once the sequence completes, Succeeded reflects only the artifact's
// presence, never the last exit code: LaTeX engines exit non-zero on
// warning-only runs that still emit a usable PDF, and the reverse happens on
// partial runs. A first-pass abort is always a failure; ArtifactPath may
// still point at a PDF left by an earlier run.
type Outcome struct {
	Succeeded     bool
	ExitCode      int
	Stdout        string
	Stderr        string
	ArtifactPath  string // workspace 相対, 存在しない場合は空
	LogPath       string
	LogErrorLines []string
	Environment   service.Environment
	Passes        int
}

type Dispatcher struct {
	log         loggerv2.Logger
	ws          *workspace.Workspace
	detector    *service.Detector
	executors   map[service.Environment]service.Executor
	passTimeout time.Duration
}

func NewDispatcher(log loggerv2.Logger, ws *workspace.Workspace, detector *service.Detector, executors []service.Executor, passTimeout time.Duration) *Dispatcher {
	if passTimeout <= 0 {
		passTimeout = 180 * time.Second
	}
	byEnv := make(map[service.Environment]service.Executor, len(executors))
	for _, ex := range executors {
		byEnv[ex.Environment()] = ex
	}
	return &Dispatcher{
		log:         log,
		ws:          ws,
		detector:    detector,
		executors:   byEnv,
		passTimeout: passTimeout,
	}
}

// Dispatch runs the full sequence for one request. Returned errors are
// request-shaping failures (missing file, unknown engine); everything that
// happens after a pass starts is reported through the Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Outcome, error) {
	if req.Engine == "" {
		req.Engine = cconfig.DefaultEngine
	}
	if _, ok := cconfig.EngineConfigs[req.Engine]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, req.Engine)
	}

	texPath, err := d.ws.Resolve(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, req.FilePath)
	}
	if fi, err := os.Stat(texPath); err != nil || fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, req.FilePath)
	}

	workDir := filepath.Dir(texPath)
	outputDir := filepath.Join(workDir, "output")
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath))
	job := &service.CompileJob{
		TexPath:   texPath,
		WorkDir:   workDir,
		OutputDir: outputDir,
		BaseName:  base,
		Engine:    req.Engine,
		Timeout:   d.passTimeout,
	}

	env := d.detector.Detect(ctx)
	executor, ok := d.executors[env]
	if !ok {
		return nil, fmt.Errorf("no executor for environment %s", env)
	}

	startAt := time.Now()
	compileInFlight.Inc()
	defer compileInFlight.Dec()

	outcome := d.runSequence(ctx, executor, job, req)
	outcome.Environment = env

	result := "failure"
	if outcome.Succeeded {
		result = "success"
	}
	compileDurationSeconds.WithLabelValues(string(req.Engine), result).Observe(time.Since(startAt).Seconds())
	d.log.InfoContext(ctx, "compile dispatched",
		logger.String("file", req.FilePath),
		logger.String("engine", string(req.Engine)),
		logger.String("environment", env.String()),
		logger.String("result", result),
		logger.String("passes", fmt.Sprintf("%d", outcome.Passes)),
	)
	return outcome, nil
}

func (d *Dispatcher) runSequence(ctx context.Context, executor service.Executor, job *service.CompileJob, req *Request) *Outcome {
	var stdoutParts, stderrParts []string
	outcome := &Outcome{}

	appendPass := func(res *service.PassResult, prefix string) {
		if prefix != "" && res.Stdout != "" {
			stdoutParts = append(stdoutParts, prefix+res.Stdout)
		} else if res.Stdout != "" {
			stdoutParts = append(stdoutParts, res.Stdout)
		}
		if res.Stderr != "" {
			stderrParts = append(stderrParts, res.Stderr)
		}
	}

	compilePass := func(kind string) *service.PassResult {
		res, err := executor.CompilePass(ctx, job)
		if err != nil {
			res = &service.PassResult{Succeeded: false, ExitCode: -1, Stderr: err.Error()}
		}
		outcome.Passes++
		compilePassTotal.WithLabelValues(kind, passLabel(res)).Inc()
		appendPass(res, "")
		return res
	}

	stdoutParts = append(stdoutParts, fmt.Sprintf("🔄 Compilation via %s", executor.Environment()))

	// 初回コンパイル. 失敗したら以降のパスは実行しない
	first := compilePass("compile")
	if first.ExitCode != 0 {
		outcome.ExitCode = first.ExitCode
		outcome.Stdout = strings.Join(stdoutParts, "\n")
		outcome.Stderr = strings.Join(stderrParts, "\n")
		// 以前の実行が残した PDF は成果物として報告はするが成功にはしない
		pdfPath := filepath.Join(job.OutputDir, job.BaseName+".pdf")
		if _, err := os.Stat(pdfPath); err == nil {
			outcome.ArtifactPath = d.ws.Rel(pdfPath)
		}
		logPath := filepath.Join(job.OutputDir, job.BaseName+".log")
		if _, err := os.Stat(logPath); err == nil {
			outcome.LogPath = d.ws.Rel(logPath)
		}
		outcome.LogErrorLines = ScrapeLogErrors(logPath)
		return outcome
	}

	// 書誌パス. aux が無ければ引用は存在しないので丸ごとスキップ
	if req.UseBibliography {
		auxPath := filepath.Join(job.OutputDir, job.BaseName+".aux")
		if _, err := os.Stat(auxPath); err == nil {
			bibRes, err := executor.BibliographyPass(ctx, job)
			if err != nil {
				bibRes = &service.PassResult{Succeeded: false, ExitCode: -1, Stderr: err.Error()}
			}
			compilePassTotal.WithLabelValues("bibliography", passLabel(bibRes)).Inc()
			appendPass(bibRes, "BibTeX: ")
			// 解決済み引用を取り込むため, quick でも必ずもう1パス
			compilePass("compile")
		}
	}

	// 相互参照と目次を安定させる追加パス. 書誌パスの後でも省略しない
	if !req.Quick {
		compilePass("compile")
	}

	d.enrichFromDisk(outcome, job)
	stdoutParts = append(stdoutParts, fmt.Sprintf("✅ Compilation completed, PDF exists: %v", outcome.Succeeded))
	if outcome.Succeeded {
		outcome.ExitCode = 0
	} else {
		outcome.ExitCode = 1
	}
	outcome.Stdout = strings.Join(stdoutParts, "\n")
	outcome.Stderr = strings.Join(stderrParts, "\n")
	return outcome
}

// enrichFromDisk settles success from the artifact probe and scrapes the
// engine log for error lines when the run did not produce a PDF.
func (d *Dispatcher) enrichFromDisk(outcome *Outcome, job *service.CompileJob) {
	pdfPath := filepath.Join(job.OutputDir, job.BaseName+".pdf")
	if _, err := os.Stat(pdfPath); err == nil {
		outcome.Succeeded = true
		outcome.ArtifactPath = d.ws.Rel(pdfPath)
	}
	logPath := filepath.Join(job.OutputDir, job.BaseName+".log")
	if _, err := os.Stat(logPath); err == nil {
		outcome.LogPath = d.ws.Rel(logPath)
	}
	if !outcome.Succeeded {
		outcome.LogErrorLines = ScrapeLogErrors(logPath)
	}
}

func passLabel(res *service.PassResult) string {
	if res.Succeeded {
		return "success"
	}
	return "failure"
}
