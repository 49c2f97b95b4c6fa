package devserver

import (
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/tai-edu/tai/internal/domain"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	courseID := r.FormValue("course_id")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	size, err := io.Copy(io.Discard, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}

	chunks := int((size + chunkSize - 1) / chunkSize)
	if chunks < 1 {
		chunks = 1
	}
	id := s.newID()
	filename := path.Base(header.Filename)
	s.files[courseID] = append(s.files[courseID], domain.CourseFile{
		ID:          id,
		CourseID:    courseID,
		Filename:    filename,
		StoragePath: path.Join("courses", courseID, id, filename),
		CreatedAt:   s.now(),
	})
	s.chunks[id] = chunks

	s.logger.Info("file uploaded", "course_id", courseID, "filename", filename, "chunks", chunks)
	writeJSON(w, http.StatusOK, domain.UploadResult{Success: true, ChunksCreated: chunks})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		writeError(w, http.StatusNotFound, "course not found")
		return
	}
	files := append([]domain.CourseFile{}, s.files[courseID]...)
	writeJSON(w, http.StatusOK, files)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	fileID := chi.URLParam(r, "fileID")

	s.mu.Lock()
	defer s.mu.Unlock()

	files := s.files[courseID]
	for i, f := range files {
		if f.ID == fileID {
			s.files[courseID] = append(files[:i:i], files[i+1:]...)
			delete(s.chunks, fileID)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeError(w, http.StatusNotFound, "file not found")
}
