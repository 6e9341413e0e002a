// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "bursary-portal/internal/common/errors"
	"bursary-portal/internal/models"
)

// ==========================
// Fields and Navigation
// ==========================

func (s *Server) handleChange(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decode(r, &req); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	if req.Value == nil {
		s.errors.HandleHTTPError(w, r, apperrors.NewInvalidInputError("value is required"))
		return
	}

	wiz := wizardFrom(r)
	if err := wiz.Change(r.Context(), models.Field(chi.URLParam(r, "field")), *req.Value); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wiz.View())
}

func (s *Server) handleBlur(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	msg, err := wizardFrom(r).Blur(r.Context(), models.Field(field))
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blurResponse{Field: field, Error: msg})
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, wizardFrom(r).Next(r.Context()))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	wiz := wizardFrom(r)
	wiz.Back(r.Context())
	writeJSON(w, http.StatusOK, wiz.View())
}

func (s *Server) handleGoTo(w http.ResponseWriter, r *http.Request) {
	step, err := indexParam(r, "step")
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	s.respond(w, r, wizardFrom(r).GoTo(r.Context(), models.Step(step)))
}

// ==========================
// Subjects and Previous Education
// ==========================

func (s *Server) handleAddSubject(w http.ResponseWriter, r *http.Request) {
	var subject models.Subject
	if err := decode(r, &subject); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	s.respond(w, r, wizardFrom(r).AddSubject(r.Context(), subject))
}

func (s *Server) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	var subject models.Subject
	if err := decode(r, &subject); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	s.respond(w, r, wizardFrom(r).UpdateSubject(r.Context(), index, subject))
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	s.respond(w, r, wizardFrom(r).DeleteSubject(r.Context(), index))
}

func (s *Server) handleAddPreviousEducation(w http.ResponseWriter, r *http.Request) {
	index := wizardFrom(r).AddPreviousEducation(r.Context())
	writeJSON(w, http.StatusCreated, indexResponse{Index: index})
}

func (s *Server) handleUpdatePreviousEducation(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	var entry models.PreviousEducation
	if err := decode(r, &entry); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	s.respond(w, r, wizardFrom(r).UpdatePreviousEducation(r.Context(), index, entry))
}

func (s *Server) handleRemovePreviousEducation(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	s.respond(w, r, wizardFrom(r).RemovePreviousEducation(r.Context(), index))
}

// ==========================
// Documents
// ==========================

func (s *Server) handleAttachDocument(w http.ResponseWriter, r *http.Request) {
	file, err := s.readUpload(w, r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	docType := models.DocumentType(chi.URLParam(r, "type"))
	s.respond(w, r, wizardFrom(r).AttachDocument(r.Context(), docType, file))
}

func (s *Server) handleDetachDocument(w http.ResponseWriter, r *http.Request) {
	docType := models.DocumentType(chi.URLParam(r, "type"))
	s.respond(w, r, wizardFrom(r).DetachDocument(r.Context(), docType))
}

func (s *Server) handleAddAdditionalDocument(w http.ResponseWriter, r *http.Request) {
	file, err := s.readUpload(w, r)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	index, err := wizardFrom(r).AddAdditionalDocument(r.Context(), file)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, indexResponse{Index: index})
}

func (s *Server) handleRemoveAdditionalDocument(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r, "index")
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	s.respond(w, r, wizardFrom(r).RemoveAdditionalDocument(r.Context(), index))
}

// readUpload reads the "file" part. The body limit is the whole request; the
// per-document limit is enforced by the wizard.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*models.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("read upload: %v", err))
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		return nil, apperrors.NewInvalidInputError("multipart field \"file\" is required")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("read upload: %v", err))
	}
	return &models.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}

// ==========================
// Submit, Clear and Backend
// ==========================

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	// lift the server write deadline so a slow backend still gets its answer delivered
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.logger.Warn("could not clear write deadline", map[string]interface{}{"error": err})
	}

	result, err := wizardFrom(r).Submit(r.Context())
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	msg := result.Message
	if msg == "" {
		msg = submitSuccessMessage
	}
	writeJSON(w, http.StatusCreated, submitResponse{ID: result.ID, Message: msg})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	s.respond(w, r, wizardFrom(r).Clear(r.Context(), confirmed))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	resp, err := s.dashboard.Login(r.Context(), req)
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	if err := wizardFrom(r).Draft().SetToken(r.Context(), resp.Token); err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: resp.User})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	wiz := wizardFrom(r)
	ov, err := s.dashboard.Overview(r.Context(), wiz.Draft().Token(r.Context()))
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{Overview: ov, HasApplication: ov.Application != nil})
}

// ==========================
// Helpers
// ==========================

// respond writes the wizard view on success.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		s.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wizardFrom(r).View())
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func indexParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, apperrors.NewInvalidInputError(fmt.Sprintf("%s must be an integer", name))
	}
	return n, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
