package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/serenify-care/internal/apperrors"
	"github.com/AnshRaj112/serenify-care/internal/services"
)

const defaultUploadFolder = "serenify"

// UploadFile handles POST /api/upload (multipart field "file"). Returns the secure URL.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{"success": false, "message": "File uploads are not configured"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, apperrors.BadRequest("File exceeds the 10MB limit"))
			return
		}
		h.respondError(w, r, apperrors.Wrap(apperrors.KindBadRequest, "Failed to parse form", err))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, apperrors.Wrap(apperrors.KindBadRequest, "No file provided", err))
		return
	}
	defer file.Close()

	if err := services.ValidateUpload(fileHeader); err != nil {
		h.respondError(w, r, apperrors.Wrap(apperrors.KindBadRequest, err.Error(), err))
		return
	}

	folder := strings.TrimSpace(r.URL.Query().Get("folder"))
	switch folder {
	case "":
		folder = defaultUploadFolder
	case "certificates":
		folder = services.CertificateFolder
	}

	url, err := h.uploader.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		h.respondError(w, r, apperrors.Internal("Failed to upload file", err))
		return
	}
	respond(w, http.StatusOK, "File uploaded successfully", envelope{"url": url})
}
