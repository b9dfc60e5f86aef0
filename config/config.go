package config

import (
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

type LoggerConfig struct {
	Development    bool                `yaml:"development"`    // 開発モードかどうか
	Type           loggerv2.OutputType `yaml:"type"`           // ログ出力タイプ
	LogFilePath    string              `yaml:"logFilePath"`    // ログファイルパス
	AutoCreateFile bool                `yaml:"autoCreateFile"` // ファイルとディレクトリを自動作成するか
}

func (LoggerConfig) Key() string {
	return "log"
}

type WorkspaceConfig struct {
	Root         string `yaml:"root"`         // 管理対象プロジェクトツリーのルート
	CoursesDir   string `yaml:"coursesDir"`   // root からの相対パス
	TemplatesDir string `yaml:"templatesDir"` // テンプレート置き場
	ScriptsDir   string `yaml:"scriptsDir"`   // 補助スクリプト置き場
}

func (WorkspaceConfig) Key() string {
	return "workspace"
}

type CompileConfig struct {
	PassTimeoutSeconds     int    `yaml:"passTimeoutSeconds"`     // コンパイル1パスのタイムアウト, 既定 180
	CommandTimeoutSeconds  int    `yaml:"commandTimeoutSeconds"`  // 汎用コマンドのタイムアウト, 既定 300
	ManagedMountPath       string `yaml:"managedMountPath"`       // 存在すればコンテナ内実行と判定, 既定 /app
	ContainerWorkspacePath string `yaml:"containerWorkspacePath"` // コンテナ側マウント先, 既定 /workspace
	SiblingContainerName   string `yaml:"siblingContainerName"`   // 既定 api-latex-engine-1
	ComposeServiceName     string `yaml:"composeServiceName"`     // 既定 latex
}

func (CompileConfig) Key() string {
	return "compile"
}

type LRUConfig struct {
	Size int `yaml:"size"` // キャッシュ可能な項目数
}

func (LRUConfig) Key() string {
	return "lru"
}
