package ioc

import (
	"log"
	"time"

	"github.com/moby/moby/client"
	"github.com/spf13/viper"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"github.com/unilatex/latex_api_server/compiler"
	"github.com/unilatex/latex_api_server/compiler/service"
	"github.com/unilatex/latex_api_server/config"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

func InitRunner() *runner.Runner {
	return runner.New()
}

func InitDispatcher(l loggerv2.Logger, ws *workspace.Workspace, c *client.Client, r *runner.Runner) *compiler.Dispatcher {
	var cfg config.CompileConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal compile config fail, err: %v", err)
	}
	if cfg.SiblingContainerName == "" {
		cfg.SiblingContainerName = "api-latex-engine-1"
	}

	detector := service.NewDetector(l, c, ws.Root, cfg.ManagedMountPath, cfg.SiblingContainerName)
	executors := []service.Executor{
		service.NewLocalExecutor(r),
		service.NewContainerBridgeExecutor(c, ws, cfg.SiblingContainerName, cfg.ContainerWorkspacePath),
		service.NewOrchestratorExecutor(r, ws, cfg.ComposeServiceName, cfg.ContainerWorkspacePath),
	}
	return compiler.NewDispatcher(l, ws, detector, executors, time.Duration(cfg.PassTimeoutSeconds)*time.Second)
}
