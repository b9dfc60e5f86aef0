//go:build wireinject

package main

import (
	"github.com/google/wire"
	iocself "github.com/unilatex/latex_api_server/cmd/server/ioc"
	"github.com/unilatex/latex_api_server/ioc"
	"github.com/unilatex/latex_api_server/web"
)

func BuildDependency() *web.Server {
	wire.Build(
		ioc.InitLogger,
		ioc.InitWorkspace,
		ioc.InitDockerClient,
		ioc.InitLRUCache,
		iocself.InitRunner,
		iocself.InitDispatcher,
		iocself.InitChecker,
		iocself.InitProjectService,
		iocself.InitWebServer,
	)
	return nil
}
