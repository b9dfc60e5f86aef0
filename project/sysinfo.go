package project

import (
	"context"
	"io/fs"
	"math"
	"os/exec"
	"path/filepath"

	cconfig "github.com/unilatex/latex_api_server/compiler/config"
)

const apiVersion = "1.0.0"

type SystemInfo struct {
	ProjectRoot            string   `json:"project_root"`
	CoursesDirectory       string   `json:"courses_directory"`
	TemplatesDirectory     string   `json:"templates_directory"`
	ScriptsDirectory       string   `json:"scripts_directory"`
	DockerAvailable        bool     `json:"docker_available"`
	DockerComposeAvailable bool     `json:"docker_compose_available"`
	SupportedCompilers     []string `json:"supported_compilers"`
	TotalProjectSizeMB     float64  `json:"total_project_size_mb"`
	APIVersion             string   `json:"api_version"`
}

// SystemInfo reports toolchain availability and workspace layout.
func (s *Service) SystemInfo(ctx context.Context) *SystemInfo {
	_, dockerErr := exec.LookPath("docker")
	_, composeErr := exec.LookPath("docker-compose")

	var total int64
	_ = filepath.WalkDir(s.ws.CoursesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if fi, err := d.Info(); err == nil {
				total += fi.Size()
			}
		}
		return nil
	})

	return &SystemInfo{
		ProjectRoot:            s.ws.Root,
		CoursesDirectory:       s.ws.CoursesDir,
		TemplatesDirectory:     s.ws.TemplatesDir,
		ScriptsDirectory:       s.ws.ScriptsDir,
		DockerAvailable:        dockerErr == nil,
		DockerComposeAvailable: composeErr == nil || dockerErr == nil,
		SupportedCompilers:     cconfig.Supported(),
		TotalProjectSizeMB:     math.Round(float64(total)/(1024*1024)*100) / 100,
		APIVersion:             apiVersion,
	}
}
