// Package project implements the filesystem CRUD around the managed project
// tree: scaffolding, listing, deletion, uploads and the template catalog.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/to404hanga/pkg404/cachex/lru"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
	"github.com/unilatex/latex_api_server/runner"
	"github.com/unilatex/latex_api_server/workspace"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

const mainDocument = "main.tex"

type Service struct {
	log            loggerv2.Logger
	ws             *workspace.Workspace
	runner         *runner.Runner
	templateCache  *lru.Cache
	commandTimeout time.Duration
}

func NewService(log loggerv2.Logger, ws *workspace.Workspace, r *runner.Runner, templateCache *lru.Cache, commandTimeout time.Duration) *Service {
	if commandTimeout <= 0 {
		commandTimeout = runner.DefaultCommandTimeout
	}
	return &Service{
		log:            log,
		ws:             ws,
		runner:         r,
		templateCache:  templateCache,
		commandTimeout: commandTimeout,
	}
}

type CreateRequest struct {
	Semester   string
	Course     string
	ReportName string
	Template   string // 任意
}

type CreateResult struct {
	ProjectPath  string   `json:"project_path"`
	AbsolutePath string   `json:"absolute_path"`
	TemplateUsed string   `json:"template_used"`
	CreatedFiles []string `json:"created_files"`
}

// Create scaffolds a new project directory with seed files. Existing
// directories are reused; seed files are overwritten.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	projectPath := filepath.Join(s.ws.CoursesDir, req.Semester, req.Course, req.ReportName)
	if err := os.MkdirAll(projectPath, 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	for _, subdir := range []string{"figures", "output", "sections"} {
		if err := os.MkdirAll(filepath.Join(projectPath, subdir), 0755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", subdir, err)
		}
	}
	for _, subdir := range []string{"output", "figures"} {
		keep := filepath.Join(projectPath, subdir, ".gitkeep")
		if err := os.WriteFile(keep, nil, 0644); err != nil {
			return nil, fmt.Errorf("create .gitkeep: %w", err)
		}
	}

	mainTexPath := filepath.Join(projectPath, mainDocument)
	templateUsed := "base template"
	if req.Template != "" {
		src := filepath.Join(s.ws.TemplatesDir, workspace.SanitizeFilename(req.Template))
		if data, err := os.ReadFile(src); err == nil {
			if err := os.WriteFile(mainTexPath, data, 0644); err != nil {
				return nil, fmt.Errorf("copy template: %w", err)
			}
			templateUsed = req.Template
		}
	}
	if templateUsed == "base template" {
		if err := os.WriteFile(mainTexPath, []byte(baseTemplate), 0644); err != nil {
			return nil, fmt.Errorf("write base template: %w", err)
		}
	}

	readme := renderReadme(req.Semester, req.Course, req.ReportName)
	if err := os.WriteFile(filepath.Join(projectPath, "README.md"), []byte(readme), 0644); err != nil {
		return nil, fmt.Errorf("write README: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectPath, ".gitignore"), []byte(gitignoreTemplate), 0644); err != nil {
		return nil, fmt.Errorf("write .gitignore: %w", err)
	}

	s.log.InfoContext(ctx, "project created",
		logger.String("semester", req.Semester),
		logger.String("course", req.Course),
		logger.String("report", req.ReportName),
		logger.String("template", templateUsed),
	)
	return &CreateResult{
		ProjectPath:  s.ws.Rel(projectPath),
		AbsolutePath: projectPath,
		TemplateUsed: templateUsed,
		CreatedFiles: []string{
			mainDocument,
			"README.md",
			".gitignore",
			"output/.gitkeep",
			"figures/.gitkeep",
		},
	}, nil
}

type PDFInfo struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Created string `json:"created"`
}

type Info struct {
	Semester    string   `json:"semester"`
	Course      string   `json:"course"`
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	MainTexPath string   `json:"main_tex_path"`
	HasPDF      bool     `json:"has_pdf"`
	Modified    string   `json:"modified"`
	Size        int64    `json:"size"`
	PDFInfo     *PDFInfo `json:"pdf_info,omitempty"`
}

// List scans semester/course/report three levels deep. Only directories that
// contain the main document count as projects.
func (s *Service) List(ctx context.Context) ([]Info, error) {
	projects := []Info{}
	semesters, err := os.ReadDir(s.ws.CoursesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return projects, nil
		}
		return nil, fmt.Errorf("read courses dir: %w", err)
	}
	for _, semester := range semesters {
		if !semester.IsDir() {
			continue
		}
		semesterPath := filepath.Join(s.ws.CoursesDir, semester.Name())
		courses, err := os.ReadDir(semesterPath)
		if err != nil {
			continue
		}
		for _, course := range courses {
			if !course.IsDir() {
				continue
			}
			coursePath := filepath.Join(semesterPath, course.Name())
			reports, err := os.ReadDir(coursePath)
			if err != nil {
				continue
			}
			for _, report := range reports {
				if !report.IsDir() {
					continue
				}
				projectPath := filepath.Join(coursePath, report.Name())
				mainTex := filepath.Join(projectPath, mainDocument)
				fi, err := os.Stat(mainTex)
				if err != nil {
					continue
				}
				info := Info{
					Semester:    semester.Name(),
					Course:      course.Name(),
					Name:        report.Name(),
					Path:        s.ws.Rel(projectPath),
					MainTexPath: s.ws.Rel(mainTex),
					Modified:    fi.ModTime().Format(time.RFC3339),
					Size:        fi.Size(),
				}
				pdfPath := filepath.Join(projectPath, "output", "main.pdf")
				if pdfFi, err := os.Stat(pdfPath); err == nil {
					info.HasPDF = true
					info.PDFInfo = &PDFInfo{
						Path:    s.ws.Rel(pdfPath),
						Size:    pdfFi.Size(),
						Created: pdfFi.ModTime().Format(time.RFC3339),
					}
				}
				projects = append(projects, info)
			}
		}
	}
	return projects, nil
}

// Delete removes a project directory. The directory must exist and contain
// the main document; nothing is touched otherwise.
func (s *Service) Delete(ctx context.Context, projectPath string) (string, error) {
	abs, err := s.ws.Resolve(projectPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrValidation, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: project does not exist: %s", ErrNotFound, projectPath)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: path is not a project directory: %s", ErrValidation, projectPath)
	}
	if _, err := os.Stat(filepath.Join(abs, mainDocument)); err != nil {
		return "", fmt.Errorf("%w: directory does not contain %s: %s", ErrValidation, mainDocument, projectPath)
	}
	if err := os.RemoveAll(abs); err != nil {
		return "", fmt.Errorf("delete project: %w", err)
	}
	s.log.InfoContext(ctx, "project deleted", logger.String("path", projectPath))
	return abs, nil
}
