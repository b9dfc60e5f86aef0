// Package quality bridges the check-quality script and parses its free-text
// output into a structured score.
package quality

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"github.com/unilatex/latex_api_server/compiler"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

const checkScriptName = "check-quality.sh"

// Report is the structured result of one quality check.
type Report struct {
	FilePath        string   `json:"file_path"`
	QualityScore    int      `json:"quality_score"`
	QualityLevel    string   `json:"quality_level"`
	Errors          int      `json:"errors"`
	Warnings        int      `json:"warnings"`
	Suggestions     []string `json:"suggestions"`
	FullOutput      string   `json:"full_output"`
	CheckSuccessful bool     `json:"check_successful"`
}

type Checker struct {
	log            loggerv2.Logger
	runner         *runner.Runner
	ws             *workspace.Workspace
	commandTimeout time.Duration
}

func NewChecker(log loggerv2.Logger, r *runner.Runner, ws *workspace.Workspace, commandTimeout time.Duration) *Checker {
	if commandTimeout <= 0 {
		commandTimeout = runner.DefaultCommandTimeout
	}
	return &Checker{
		log:            log,
		runner:         r,
		ws:             ws,
		commandTimeout: commandTimeout,
	}
}

// Check runs the quality script against a workspace-relative file. The file
// must exist; everything after that is best effort and the parse never fails
// the request.
func (c *Checker) Check(ctx context.Context, filePath string) (*Report, error) {
	abs, err := c.ws.Resolve(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", compiler.ErrFileNotFound, filePath)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %s", compiler.ErrFileNotFound, filePath)
	}

	res := c.runner.Run(ctx, runner.Command{
		Bin:     filepath.Join(c.ws.ScriptsDir, checkScriptName),
		Args:    []string{filePath},
		Dir:     c.ws.Root,
		Timeout: c.commandTimeout,
	})
	if !res.Succeeded {
		c.log.WarnContext(ctx, "quality script reported failure",
			logger.String("file", filePath),
			logger.String("stderr", res.Stderr),
		)
	}

	report := Parse(res.Stdout)
	report.FilePath = filePath
	report.FullOutput = res.Stdout
	report.CheckSuccessful = res.Succeeded
	return report, nil
}
