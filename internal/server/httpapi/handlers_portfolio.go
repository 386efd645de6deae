package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/staffolio/staffolio/internal/common"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/staffolio/staffolio/internal/server/services"
)

// maxPortfolioFormSize bounds the multipart form, picture included.
const maxPortfolioFormSize = 10 << 20

// formValue returns the first value for name and whether the field was
// present at all. Presence matters for partial updates: an absent field is
// left alone, an empty one is a validation error downstream.
func formValue(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// decodeListField unmarshals a JSON-encoded array form field, e.g.
// education=[{"school":"MIT","degree":"BS","year":2020}].
func decodeListField[T any](raw, name string) ([]T, error) {
	var list []T
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%w: malformed %s", common.ErrorValidation, name)
	}
	return list, nil
}

// formPicture extracts the optional picture file part.
func formPicture(r *http.Request) (*services.PictureUpload, error) {
	file, header, err := r.FormFile("picture")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, common.ErrorValidation
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &services.PictureUpload{
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxPortfolioFormSize); err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	in := services.CreatePortfolioInput{}
	in.EmployeeID, _ = formValue(r, "employeeId")
	in.Name, _ = formValue(r, "name")
	in.Position, _ = formValue(r, "position")
	in.Bio, _ = formValue(r, "bio")

	var err error
	if raw, ok := formValue(r, "education"); ok {
		if in.Education, err = decodeListField[models.EducationEntry](raw, "education"); err != nil {
			writeError(w, err)
			return
		}
	}
	if raw, ok := formValue(r, "experience"); ok {
		if in.Experience, err = decodeListField[models.ExperienceEntry](raw, "experience"); err != nil {
			writeError(w, err)
			return
		}
	}
	if raw, ok := formValue(r, "projects"); ok {
		if in.Projects, err = decodeListField[models.ProjectEntry](raw, "projects"); err != nil {
			writeError(w, err)
			return
		}
	}
	if raw, ok := formValue(r, "skills"); ok {
		if in.Skills, err = decodeListField[string](raw, "skills"); err != nil {
			writeError(w, err)
			return
		}
	}

	if in.Picture, err = formPicture(r); err != nil {
		writeError(w, err)
		return
	}

	p, err := s.portfolios.Create(r.Context(), caller, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"portfolio": p})
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxPortfolioFormSize); err != nil {
		writeError(w, common.ErrorValidation)
		return
	}

	in := services.UpdatePortfolioInput{}
	if v, ok := formValue(r, "name"); ok {
		in.Name = &v
	}
	if v, ok := formValue(r, "position"); ok {
		in.Position = &v
	}
	if v, ok := formValue(r, "bio"); ok {
		in.Bio = &v
	}

	if raw, ok := formValue(r, "education"); ok {
		list, err := decodeListField[models.EducationEntry](raw, "education")
		if err != nil {
			writeError(w, err)
			return
		}
		in.Education = &list
	}
	if raw, ok := formValue(r, "experience"); ok {
		list, err := decodeListField[models.ExperienceEntry](raw, "experience")
		if err != nil {
			writeError(w, err)
			return
		}
		in.Experience = &list
	}
	if raw, ok := formValue(r, "projects"); ok {
		list, err := decodeListField[models.ProjectEntry](raw, "projects")
		if err != nil {
			writeError(w, err)
			return
		}
		in.Projects = &list
	}
	if raw, ok := formValue(r, "skills"); ok {
		list, err := decodeListField[string](raw, "skills")
		if err != nil {
			writeError(w, err)
			return
		}
		in.Skills = &list
	}

	picture, err := formPicture(r)
	if err != nil {
		writeError(w, err)
		return
	}
	in.Picture = picture

	p, err := s.portfolios.Update(r.Context(), caller, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"portfolio": p})
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	if err := s.portfolios.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	p, err := s.portfolios.GetByEmployeeID(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"portfolio": p})
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	list, err := s.portfolios.ListAll(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"portfolios": list})
}
