package web

import (
	"encoding/json"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"github.com/unilatex/latex_api_server/project"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "API server is running", map[string]any{
		"version":      "1.0.0",
		"timestamp":    time.Now().Format(time.RFC3339),
		"project_root": s.ws.Root,
	})
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "System information retrieved", map[string]any{
		"system": s.projects.SystemInfo(r.Context()),
	})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.projects.ListTemplates(r.Context())
	if err != nil {
		s.respondError(w, r, "Failed to retrieve templates", err)
		return
	}
	writeOK(w, "Templates retrieved successfully", map[string]any{
		"templates": templates,
	})
}

func (s *Server) handleTemplateContent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	content, err := s.projects.TemplateContent(r.Context(), name)
	if err != nil {
		s.respondError(w, r, "Failed to retrieve template content", err)
		return
	}
	writeOK(w, "Template content retrieved successfully", map[string]any{
		"filename": content.Filename,
		"content":  content.Content,
		"size":     content.Size,
		"lines":    content.Lines,
	})
}

type manageTemplatesRequest struct {
	Action       string `json:"action"`
	TemplateID   string `json:"template_id"`
	TemplateFile string `json:"template_file"`
	Category     string `json:"category"`
}

func (s *Server) handleManageTemplates(w http.ResponseWriter, r *http.Request) {
	var req manageTemplatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, "Invalid request body", err)
		return
	}
	if req.Action == "" {
		writeFail(w, http.StatusBadRequest, "action is required",
			"Action must be specified: list, enable, disable, add, info, validate")
		return
	}
	res, err := s.projects.ManageTemplates(r.Context(), req.Action, req.TemplateID, req.TemplateFile, req.Category)
	if err != nil {
		s.respondError(w, r, "Template management failed", err)
		return
	}
	resp := Response{
		Success: res.Success,
		Message: "Template management action '" + res.Action + "' completed",
		Data: map[string]any{
			"action":  res.Action,
			"command": res.Command,
			"output":  res.Output,
		},
	}
	if res.Stderr != "" {
		resp.Data["stderr"] = res.Stderr
		if !res.Success {
			resp.Errors = []string{res.Stderr}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type createProjectRequest struct {
	Semester   string `json:"semester"`
	Course     string `json:"course"`
	ReportName string `json:"report_name"`
	Template   string `json:"template"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, "Request data is required", err)
		return
	}
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"semester", req.Semester},
		{"course", req.Course},
		{"report_name", req.ReportName},
	} {
		if f.value == "" {
			missing = append(missing, "Missing field: "+f.name)
		}
	}
	if len(missing) > 0 {
		writeFail(w, http.StatusBadRequest, "Missing required fields", missing...)
		return
	}

	result, err := s.projects.Create(r.Context(), &project.CreateRequest{
		Semester:   req.Semester,
		Course:     req.Course,
		ReportName: req.ReportName,
		Template:   req.Template,
	})
	if err != nil {
		s.respondError(w, r, "Failed to create project", err)
		return
	}
	writeOK(w, "Project created successfully", map[string]any{
		"project_path":  result.ProjectPath,
		"absolute_path": result.AbsolutePath,
		"template_used": result.TemplateUsed,
		"created_files": result.CreatedFiles,
	})
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.List(r.Context())
	if err != nil {
		s.respondError(w, r, "Failed to list projects", err)
		return
	}
	writeOK(w, "Projects retrieved successfully", map[string]any{
		"projects":    projects,
		"total_count": len(projects),
	})
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	abs, err := s.projects.Delete(r.Context(), path)
	if err != nil {
		s.respondError(w, r, "Failed to delete project", err)
		return
	}
	writeOK(w, "Project deleted successfully", map[string]any{
		"deleted_path":  path,
		"absolute_path": abs,
	})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	abs, err := s.ws.Resolve(rel)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid file path", err.Error())
		return
	}
	fi, err := os.Stat(abs)
	if err != nil {
		writeFail(w, http.StatusNotFound, "File not found", "File does not exist: "+rel)
		return
	}
	if fi.IsDir() {
		writeFail(w, http.StatusBadRequest, "Path is a directory", "Path is a directory, not a file: "+rel)
		return
	}

	// PDF はバイナリのまま返す
	if len(rel) > 4 && rel[len(rel)-4:] == ".pdf" {
		w.Header().Set("Content-Type", "application/pdf")
		http.ServeFile(w, r, abs)
		return
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		s.respondError(w, r, "Failed to retrieve file", err)
		return
	}
	if !utf8.Valid(data) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", "attachment")
		http.ServeFile(w, r, abs)
		return
	}
	writeOK(w, "File content retrieved", map[string]any{
		"path":     rel,
		"content":  string(data),
		"size":     fi.Size(),
		"lines":    countLines(string(data)),
		"modified": fi.ModTime().Format(time.RFC3339),
		"encoding": "utf-8",
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.respondError(w, r, "File upload failed", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "No file provided", "No file part in the request")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeFail(w, http.StatusBadRequest, "No file selected", "No file selected for upload")
		return
	}
	projectPath := r.FormValue("project_path")
	if projectPath == "" {
		writeFail(w, http.StatusBadRequest, "project_path is required", "Project path must be specified")
		return
	}

	result, err := s.projects.SaveUpload(r.Context(), projectPath, r.FormValue("subdirectory"), header.Filename, file)
	if err != nil {
		s.respondError(w, r, "File upload failed", err)
		return
	}
	writeOK(w, "File uploaded successfully", map[string]any{
		"filename":      result.Filename,
		"path":          result.Path,
		"absolute_path": result.AbsolutePath,
		"size":          result.Size,
		"size_mb":       result.SizeMB,
		"uploaded_at":   result.UploadedAt,
	})
}

type watchRequest struct {
	FilePath string `json:"file_path"`
}

// handleWatch is a stub: live monitoring needs a streaming transport this API
// does not provide, so only static readiness metadata is returned.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	var req watchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FilePath == "" {
		writeFail(w, http.StatusBadRequest, "file_path is required", "No file_path provided in request")
		return
	}
	abs, err := s.ws.Resolve(req.FilePath)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid file path", err.Error())
		return
	}
	fi, err := os.Stat(abs)
	if err != nil {
		writeFail(w, http.StatusNotFound, "File not found", "File does not exist: "+req.FilePath)
		return
	}
	writeOK(w, "Watch mode information retrieved", map[string]any{
		"file_path":     req.FilePath,
		"absolute_path": abs,
		"status":        "watch_ready",
		"message":       "File watching requires WebSocket or SSE implementation",
		"last_modified": fi.ModTime().Format(time.RFC3339),
	})
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := 1
	for _, r := range content {
		if r == '\n' {
			n++
		}
	}
	if content[len(content)-1] == '\n' {
		n--
	}
	return n
}
