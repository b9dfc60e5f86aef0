package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/client"
	cconfig "github.com/unilatex/latex_api_server/compiler/config"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

// ContainerBridgeExecutor runs passes inside a sibling engine container via
// the Docker exec API. Host paths are translated into the container's
// /workspace mount before invocation.
type ContainerBridgeExecutor struct {
	client        *client.Client
	ws            *workspace.Workspace
	containerName string
	workspacePath string // コンテナ側マウント先
}

var _ Executor = (*ContainerBridgeExecutor)(nil)

func NewContainerBridgeExecutor(c *client.Client, ws *workspace.Workspace, containerName, workspacePath string) *ContainerBridgeExecutor {
	if workspacePath == "" {
		workspacePath = "/workspace"
	}
	return &ContainerBridgeExecutor{
		client:        c,
		ws:            ws,
		containerName: containerName,
		workspacePath: workspacePath,
	}
}

func (e *ContainerBridgeExecutor) Environment() Environment {
	return EnvironmentSiblingContainer
}

// containerPath maps a host-absolute path under the workspace root to the
// container's mount namespace.
func (e *ContainerBridgeExecutor) containerPath(hostAbs string) string {
	return path.Join(e.workspacePath, e.ws.Rel(hostAbs))
}

func (e *ContainerBridgeExecutor) CompilePass(ctx context.Context, job *CompileJob) (*PassResult, error) {
	cfg, ok := cconfig.EngineConfigs[job.Engine]
	if !ok {
		return nil, fmt.Errorf("unsupported engine: %s", job.Engine)
	}

	cmd := append([]string{cfg.Binary}, cfg.BaseArgs...)
	cmd = append(cmd,
		fmt.Sprintf("-output-directory=%s", e.containerPath(job.OutputDir)),
		e.containerPath(job.TexPath),
	)
	return e.execWithAttach(ctx, cmd, e.containerPath(job.WorkDir), job.Timeout)
}

func (e *ContainerBridgeExecutor) BibliographyPass(ctx context.Context, job *CompileJob) (*PassResult, error) {
	cmd := []string{cconfig.BibliographyTool, job.BaseName}
	return e.execWithAttach(ctx, cmd, e.containerPath(job.OutputDir), job.Timeout)
}

func (e *ContainerBridgeExecutor) execWithAttach(ctx context.Context, cmd []string, workDir string, timeout time.Duration) (*PassResult, error) {
	if timeout <= 0 {
		timeout = runner.DefaultPassTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	created, err := e.client.ExecCreate(execCtx, e.containerName, client.ExecCreateOptions{
		Cmd:          cmd,
		WorkingDir:   workDir,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, fmt.Errorf("exec create failed: %w", err)
	}
	attach, err := e.client.ExecAttach(execCtx, created.ID, client.ExecAttachOptions{})
	if err != nil {
		return nil, fmt.Errorf("exec attach failed: %w", err)
	}
	defer attach.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	done := make(chan error, 1)
	go func() {
		_, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, attach.Reader)
		done <- err
	}()

	select {
	case err = <-done:
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("exec stream failed: %w", err)
		}
	case <-execCtx.Done():
		return &PassResult{
			Succeeded: false,
			ExitCode:  -1,
			Stdout:    stdoutBuf.String(),
			Stderr:    "timed out",
		}, nil
	}

	inspect, err := e.client.ExecInspect(ctx, created.ID, client.ExecInspectOptions{})
	if err != nil {
		return nil, fmt.Errorf("exec inspect failed: %w", err)
	}
	return &PassResult{
		Succeeded: inspect.ExitCode == 0,
		ExitCode:  inspect.ExitCode,
		Stdout:    stdoutBuf.String(),
		Stderr:    stderrBuf.String(),
	}, nil
}
