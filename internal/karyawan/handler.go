package karyawan

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/frahmantamala/karyawan-management/internal"
	"github.com/frahmantamala/karyawan-management/internal/core/common/validation"
	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	"github.com/frahmantamala/karyawan-management/internal/crud"
	"github.com/frahmantamala/karyawan-management/internal/transport"
	"github.com/go-chi/chi"
)

const (
	photoField = "foto"
	// multipartSlack covers the non-file form fields and part headers.
	multipartSlack  = 1 << 20
	multipartMemory = 8 << 20
)

type Handler struct {
	*crud.Handler[karyawanDatamodel.Karyawan, Payload]
	Service      *Service
	maxPhotoSize int64
}

func NewHandler(baseHandler *transport.BaseHandler, svc *Service, maxPhotoSize int64) *Handler {
	return &Handler{
		Handler:      crud.NewHandler(baseHandler, svc.Service),
		Service:      svc,
		maxPhotoSize: maxPhotoSize,
	}
}

// Mount registers the karyawan routes on r, the /api/karyawans prefix.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/with-kantor", h.ListWithKantor)
	r.Post("/with-photo", h.CreateWithPhoto)
	r.Get("/{id}/with-kantor", h.GetWithKantor)
	r.Put("/{id}/photo", h.ReplacePhoto)
	r.Delete("/{id}/photo", h.RemovePhoto)
	h.Handler.Mount(r)
}

func (h *Handler) ListWithKantor(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListWithKantor(r.Context())
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, "List of karyawans with kantor retrieved successfully", rows)
}

func (h *Handler) GetWithKantor(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	d, err := h.Service.GetWithKantor(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("Karyawan with ID %d retrieved successfully", id), d)
}

func (h *Handler) CreateWithPhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.parseMultipart(w, r); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	payload := &Payload{
		Nama:      r.FormValue("nama"),
		Gaji:      validation.NumericString(r.FormValue("gaji")),
		KantorID:  validation.NumericString(r.FormValue("kantor_id")),
		JabatanID: validation.NumericString(r.FormValue("jabatan_id")),
	}
	if raw := strings.TrimSpace(r.FormValue("user_id")); raw != "" {
		id, appErr := validation.ParsePositiveID("user_id", raw)
		if appErr != nil {
			h.HandleServiceError(w, r, appErr)
			return
		}
		payload.UserID = &id
	}

	k, err := h.Service.CreateWithPhoto(r.Context(), payload, formFile(r.MultipartForm))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, "Karyawan created successfully", FromDataModel(k))
}

func (h *Handler) ReplacePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	if err := h.parseMultipart(w, r); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fh := formFile(r.MultipartForm)
	if fh == nil {
		h.HandleServiceError(w, r, internal.NewValidationFieldError(photoField, "File foto wajib diunggah", internal.ErrCodeInvalidPhoto))
		return
	}

	k, err := h.Service.ReplacePhoto(r.Context(), id, fh)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("Photo for karyawan with ID %d updated successfully", id), FromDataModel(k))
}

func (h *Handler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := h.PathID(r)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	k, err := h.Service.RemovePhoto(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, fmt.Sprintf("Photo for karyawan with ID %d deleted successfully", id), FromDataModel(k))
}

// parseMultipart caps the body just above the photo limit so an oversized
// upload fails while parsing, before any file reaches the photo directory.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxPhotoSize+multipartSlack)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return internal.NewValidationFieldError(photoField,
				fmt.Sprintf("File too large. Maximum size is %dMB", h.maxPhotoSize/(1024*1024)),
				internal.ErrCodeInvalidPhoto).WithCause(err)
		}
		return internal.NewValidationError("Invalid multipart form", internal.ErrCodeInvalidBody).
			WithReasons("Request harus berupa multipart/form-data yang valid").
			WithCause(err)
	}
	return nil
}

func formFile(form *multipart.Form) *multipart.FileHeader {
	if form == nil || len(form.File[photoField]) == 0 {
		return nil
	}
	return form.File[photoField][0]
}
