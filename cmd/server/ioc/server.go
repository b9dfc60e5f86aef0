package ioc

import (
	"log"
	"time"

	"github.com/spf13/viper"
	"github.com/to404hanga/pkg404/cachex/lru"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	serverconfig "github.com/unilatex/latex_api_server/cmd/server/config"
	"github.com/unilatex/latex_api_server/compiler"
	"github.com/unilatex/latex_api_server/config"
	"github.com/unilatex/latex_api_server/project"
	"github.com/unilatex/latex_api_server/quality"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/web"
	"github.com/unilatex/latex_api_server/workspace"
)

func commandTimeout() time.Duration {
	var cfg config.CompileConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal compile config fail, err: %v", err)
	}
	if cfg.CommandTimeoutSeconds <= 0 {
		return runner.DefaultCommandTimeout
	}
	return time.Duration(cfg.CommandTimeoutSeconds) * time.Second
}

func InitChecker(l loggerv2.Logger, r *runner.Runner, ws *workspace.Workspace) *quality.Checker {
	return quality.NewChecker(l, r, ws, commandTimeout())
}

func InitProjectService(l loggerv2.Logger, ws *workspace.Workspace, r *runner.Runner, cache *lru.Cache) *project.Service {
	return project.NewService(l, ws, r, cache, commandTimeout())
}

func InitWebServer(l loggerv2.Logger, ws *workspace.Workspace, d *compiler.Dispatcher, checker *quality.Checker, projects *project.Service) *web.Server {
	var cfg serverconfig.ServerConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal server config fail, err: %v", err)
	}
	maxUpload := int64(cfg.MaxUploadMB) * 1024 * 1024
	return web.NewServer(l, ws, d, checker, projects, maxUpload)
}
