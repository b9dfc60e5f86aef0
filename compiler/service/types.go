package service

import (
	"context"
	"time"

	cconfig "github.com/unilatex/latex_api_server/compiler/config"
)

// CompileJob carries the fully resolved paths for one document. All paths are
// absolute on the host; executors that run inside a container translate them
// into the container mount namespace themselves.
type CompileJob struct {
	TexPath   string // 対象 .tex の絶対パス
	WorkDir   string // プロジェクトディレクトリ
	OutputDir string // WorkDir/output
	BaseName  string // 拡張子を除いたファイル名
	Engine    cconfig.Engine
	Timeout   time.Duration // 1パス分のタイムアウト
}

// PassResult is the outcome of a single toolchain invocation. Exit code -1
// marks a timeout or a launch failure.
type PassResult struct {
	Succeeded bool
	ExitCode  int
	Stdout    string
	Stderr    string
}

// Executor runs individual toolchain passes in one execution environment.
type Executor interface {
	CompilePass(ctx context.Context, job *CompileJob) (*PassResult, error)
	BibliographyPass(ctx context.Context, job *CompileJob) (*PassResult, error)
	Environment() Environment
}
