package service

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	cconfig "github.com/unilatex/latex_api_server/compiler/config"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

// OrchestratorExecutor runs each pass as a one-shot compose service from the
// host, mapping the project directory into the service's /workspace mount.
type OrchestratorExecutor struct {
	runner        *runner.Runner
	ws            *workspace.Workspace
	serviceName   string // 既定 latex
	workspacePath string
}

var _ Executor = (*OrchestratorExecutor)(nil)

func NewOrchestratorExecutor(r *runner.Runner, ws *workspace.Workspace, serviceName, workspacePath string) *OrchestratorExecutor {
	if serviceName == "" {
		serviceName = "latex"
	}
	if workspacePath == "" {
		workspacePath = "/workspace"
	}
	return &OrchestratorExecutor{
		runner:        r,
		ws:            ws,
		serviceName:   serviceName,
		workspacePath: workspacePath,
	}
}

func (e *OrchestratorExecutor) Environment() Environment {
	return EnvironmentComposeService
}

func (e *OrchestratorExecutor) serviceDir(hostAbs string) string {
	return path.Join(e.workspacePath, e.ws.Rel(hostAbs))
}

func (e *OrchestratorExecutor) CompilePass(ctx context.Context, job *CompileJob) (*PassResult, error) {
	cfg, ok := cconfig.EngineConfigs[job.Engine]
	if !ok {
		return nil, fmt.Errorf("unsupported engine: %s", job.Engine)
	}

	args := []string{
		"compose", "run", "--rm",
		"-w", e.serviceDir(job.WorkDir),
		e.serviceName,
		cfg.Binary,
	}
	args = append(args, cfg.BaseArgs...)
	args = append(args, "-output-directory=output", filepath.Base(job.TexPath))
	res := e.runner.Run(ctx, runner.Command{
		Bin:     "docker",
		Args:    args,
		Dir:     e.ws.Root,
		Timeout: job.Timeout,
	})
	return fromRunnerResult(res), nil
}

func (e *OrchestratorExecutor) BibliographyPass(ctx context.Context, job *CompileJob) (*PassResult, error) {
	args := []string{
		"compose", "run", "--rm",
		"-w", e.serviceDir(job.OutputDir),
		e.serviceName,
		cconfig.BibliographyTool, job.BaseName,
	}
	res := e.runner.Run(ctx, runner.Command{
		Bin:     "docker",
		Args:    args,
		Dir:     e.ws.Root,
		Timeout: job.Timeout,
	})
	return fromRunnerResult(res), nil
}
