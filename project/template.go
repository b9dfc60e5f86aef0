package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

const manageScriptName = "manage-templates.sh"

type TemplateInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UseCase     string `json:"use_case"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Modified    string `json:"modified"`
}

type templateMeta struct {
	name        string
	description string
	useCase     string
}

// Catalog descriptions for the well-known templates. Unknown files fall back
// to a generic entry so custom templates still list.
var templateCatalog = map[string]templateMeta{
	"report-basic.tex": {
		name:        "基本レポート",
		description: "一般的な学術レポート用テンプレート",
		useCase:     "授業レポート、課題提出用",
	},
	"report-experiment.tex": {
		name:        "実験レポート",
		description: "実験・データ分析用テンプレート",
		useCase:     "実験結果報告、データ分析レポート",
	},
	"report-programming.tex": {
		name:        "プログラミングレポート",
		description: "コード・アルゴリズム用テンプレート",
		useCase:     "プログラミング課題、アルゴリズム解析",
	},
	"thesis.tex": {
		name:        "論文テンプレート",
		description: "学位論文用テンプレート",
		useCase:     "卒業論文、修士論文、博士論文",
	},
	"presentation-beamer.tex": {
		name:        "プレゼンテーション",
		description: "Beamer発表スライド用テンプレート",
		useCase:     "学会発表、授業発表、研究発表",
	},
}

// ListTemplates enumerates *.tex files in the templates directory.
func (s *Service) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	matches, err := filepath.Glob(filepath.Join(s.ws.TemplatesDir, "*.tex"))
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}
	templates := []TemplateInfo{}
	for _, match := range matches {
		fi, err := os.Stat(match)
		if err != nil {
			continue
		}
		filename := filepath.Base(match)
		meta, ok := templateCatalog[filename]
		if !ok {
			meta = templateMeta{
				name:        strings.TrimSuffix(filename, ".tex"),
				description: "カスタムテンプレート",
				useCase:     "特定用途",
			}
		}
		templates = append(templates, TemplateInfo{
			Name:        meta.name,
			Description: meta.description,
			UseCase:     meta.useCase,
			Filename:    filename,
			Path:        s.ws.Rel(match),
			Size:        fi.Size(),
			Modified:    fi.ModTime().Format(time.RFC3339),
		})
	}
	return templates, nil
}

type TemplateContent struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Size     int    `json:"size"`
	Lines    int    `json:"lines"`
}

// TemplateContent fetches one template's content, served from the LRU cache
// when the file has not changed since it was cached.
func (s *Service) TemplateContent(ctx context.Context, name string) (*TemplateContent, error) {
	safe := workspace.SanitizeFilename(name)
	path := filepath.Join(s.ws.TemplatesDir, safe)
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: template does not exist: %s", ErrNotFound, name)
	}

	cacheKey := fmt.Sprintf("template:%s:%d", safe, fi.ModTime().UnixNano())
	if cached, ok := s.templateCache.Get(cacheKey); ok {
		return cached.(*TemplateContent), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	content := &TemplateContent{
		Filename: safe,
		Content:  string(data),
		Size:     len(data),
		Lines:    len(strings.Split(strings.TrimRight(string(data), "\n"), "\n")),
	}
	s.templateCache.Add(cacheKey, content)
	return content, nil
}

type ManageResult struct {
	Action  string `json:"action"`
	Command string `json:"command"`
	Output  string `json:"output"`
	Stderr  string `json:"stderr,omitempty"`
	Success bool   `json:"-"`
}

// ManageTemplates bridges to the template-management script. Actions carry
// one positional argument depending on kind.
func (s *Service) ManageTemplates(ctx context.Context, action, templateID, templateFile, category string) (*ManageResult, error) {
	args := []string{action}
	switch {
	case (action == "enable" || action == "disable" || action == "info") && templateID != "":
		args = append(args, templateID)
	case action == "add" && templateFile != "":
		args = append(args, templateFile)
	case action == "list" && category != "":
		args = append(args, "--category", category)
	}

	script := filepath.Join(s.ws.ScriptsDir, manageScriptName)
	res := s.runner.Run(ctx, runner.Command{
		Bin:     script,
		Args:    args,
		Dir:     s.ws.Root,
		Timeout: s.commandTimeout,
	})
	return &ManageResult{
		Action:  action,
		Command: script + " " + strings.Join(args, " "),
		Output:  res.Stdout,
		Stderr:  res.Stderr,
		Success: res.Succeeded,
	}, nil
}
