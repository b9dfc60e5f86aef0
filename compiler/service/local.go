package service

import (
	"context"
	"fmt"
	"path/filepath"

	cconfig "github.com/unilatex/latex_api_server/compiler/config"
	"github.com/unilatex/latex_api_server/runner"
)

// LocalExecutor invokes the engine binary directly. This path is taken when
// the API server itself runs inside the managed toolchain container.
type LocalExecutor struct {
	runner *runner.Runner
}

var _ Executor = (*LocalExecutor)(nil)

func NewLocalExecutor(r *runner.Runner) *LocalExecutor {
	return &LocalExecutor{runner: r}
}

func (e *LocalExecutor) Environment() Environment {
	return EnvironmentLocal
}

func (e *LocalExecutor) CompilePass(ctx context.Context, job *CompileJob) (*PassResult, error) {
	cfg, ok := cconfig.EngineConfigs[job.Engine]
	if !ok {
		return nil, fmt.Errorf("unsupported engine: %s", job.Engine)
	}

	args := append([]string{}, cfg.BaseArgs...)
	args = append(args, "-output-directory=output", filepath.Base(job.TexPath))
	res := e.runner.Run(ctx, runner.Command{
		Bin:     cfg.Binary,
		Args:    args,
		Dir:     job.WorkDir,
		Timeout: job.Timeout,
	})
	return fromRunnerResult(res), nil
}

func (e *LocalExecutor) BibliographyPass(ctx context.Context, job *CompileJob) (*PassResult, error) {
	res := e.runner.Run(ctx, runner.Command{
		Bin:     cconfig.BibliographyTool,
		Args:    []string{job.BaseName},
		Dir:     job.OutputDir,
		Timeout: job.Timeout,
	})
	return fromRunnerResult(res), nil
}

func fromRunnerResult(res runner.Result) *PassResult {
	return &PassResult{
		Succeeded: res.Succeeded,
		ExitCode:  res.ExitCode,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
	}
}
