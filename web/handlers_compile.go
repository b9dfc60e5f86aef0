package web

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/unilatex/latex_api_server/compiler"
	cconfig "github.com/unilatex/latex_api_server/compiler/config"
)

type compileRequest struct {
	FilePath string `json:"file_path"`
	Compiler string `json:"compiler"`
	UseBib   bool   `json:"use_bibtex"`
	Quick    bool   `json:"quick"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		writeFail(w, http.StatusBadRequest, "file_path is required", "No file_path provided in request")
		return
	}

	outcome, err := s.dispatcher.Dispatch(r.Context(), &compiler.Request{
		FilePath:        req.FilePath,
		Engine:          cconfig.Engine(req.Compiler),
		UseBibliography: req.UseBib,
		Quick:           req.Quick,
	})
	if err != nil {
		s.respondError(w, r, "Compilation request failed", err)
		return
	}

	data := map[string]any{
		"returncode":  outcome.ExitCode,
		"compiler":    req.Compiler,
		"used_bibtex": req.UseBib,
		"quick_mode":  req.Quick,
		"environment": outcome.Environment.String(),
		"passes":      outcome.Passes,
		"stdout":      outcome.Stdout,
		"stderr":      outcome.Stderr,
	}
	if req.Compiler == "" {
		data["compiler"] = string(cconfig.DefaultEngine)
	}
	if outcome.ArtifactPath != "" {
		if abs, err := s.ws.Resolve(outcome.ArtifactPath); err == nil {
			if fi, err := os.Stat(abs); err == nil {
				data["pdf_info"] = map[string]any{
					"path":    outcome.ArtifactPath,
					"size":    fi.Size(),
					"size_mb": float64(fi.Size()) / (1024 * 1024),
					"created": fi.ModTime().Format(time.RFC3339),
				}
			}
		}
	}
	if outcome.LogPath != "" && !outcome.Succeeded {
		data["log_info"] = map[string]any{
			"path":        outcome.LogPath,
			"error_lines": outcome.LogErrorLines,
		}
	}

	resp := Response{
		Success: outcome.Succeeded,
		Message: "Compilation completed",
		Data:    data,
	}
	if !outcome.Succeeded {
		resp.Message = "Compilation failed"
		var errs []string
		if outcome.Stderr != "" {
			errs = append(errs, "STDERR: "+outcome.Stderr)
		}
		for i, line := range outcome.LogErrorLines {
			if i == 3 {
				break
			}
			errs = append(errs, "LOG: "+line)
		}
		if len(errs) == 0 {
			errs = append(errs, "Compilation failed with unknown error")
		}
		resp.Errors = errs
	}
	writeJSON(w, http.StatusOK, resp)
}

type qualityCheckRequest struct {
	FilePath string `json:"file_path"`
}

func (s *Server) handleQualityCheck(w http.ResponseWriter, r *http.Request) {
	var req qualityCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		writeFail(w, http.StatusBadRequest, "file_path is required", "No file_path provided in request")
		return
	}

	report, err := s.checker.Check(r.Context(), req.FilePath)
	if err != nil {
		s.respondError(w, r, "Quality check failed", err)
		return
	}
	writeOK(w, "Quality check completed", map[string]any{
		"file_path":        report.FilePath,
		"quality_score":    report.QualityScore,
		"quality_level":    report.QualityLevel,
		"errors":           report.Errors,
		"warnings":         report.Warnings,
		"suggestions":      report.Suggestions,
		"full_output":      report.FullOutput,
		"check_successful": report.CheckSuccessful,
	})
}
