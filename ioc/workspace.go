package ioc

import (
	"log"

	"github.com/spf13/viper"
	"github.com/unilatex/latex_api_server/config"
	"github.com/unilatex/latex_api_server/workspace"
)

func InitWorkspace() *workspace.Workspace {
	var cfg config.WorkspaceConfig
	err := viper.UnmarshalKey(cfg.Key(), &cfg)
	if err != nil {
		log.Panicf("unmarshal workspace config fail, err: %v", err)
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}

	ws, err := workspace.New(cfg.Root, cfg.CoursesDir, cfg.TemplatesDir, cfg.ScriptsDir)
	if err != nil {
		log.Panicf("init workspace fail, err: %v", err)
	}
	return ws
}
