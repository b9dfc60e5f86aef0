package config

// Engine identifies a LaTeX engine supported by the toolchain.
type Engine string

const (
	EngineLuaLaTeX Engine = "lualatex"
	EnginePDFLaTeX Engine = "pdflatex"
	EngineXeLaTeX  Engine = "xelatex"
	EnginePLaTeX   Engine = "platex"

	DefaultEngine = EngineLuaLaTeX

	// BibliographyTool resolves citations from the aux file of a prior pass.
	BibliographyTool = "bibtex"
)

// EngineConfig defines the invocation shape for one engine.
type EngineConfig struct {
	Binary string
	// BaseArgs precede the -output-directory flag and the target file.
	BaseArgs []string
}

var EngineConfigs = map[Engine]EngineConfig{
	EngineLuaLaTeX: {
		Binary:   "lualatex",
		BaseArgs: []string{"-interaction=nonstopmode", "-halt-on-error"},
	},
	EnginePDFLaTeX: {
		Binary:   "pdflatex",
		BaseArgs: []string{"-interaction=nonstopmode", "-halt-on-error"},
	},
	EngineXeLaTeX: {
		Binary:   "xelatex",
		BaseArgs: []string{"-interaction=nonstopmode", "-halt-on-error"},
	},
	EnginePLaTeX: {
		Binary:   "platex",
		BaseArgs: []string{"-interaction=nonstopmode", "-halt-on-error"},
	},
}

// Supported lists the engines in a stable order for API responses.
func Supported() []string {
	return []string{
		string(EngineLuaLaTeX),
		string(EnginePDFLaTeX),
		string(EngineXeLaTeX),
		string(EnginePLaTeX),
	}
}
