package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pkarip/imagewall/internal/domain"
	"github.com/pkarip/imagewall/internal/service"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing.
const maxUploadMemory = 32 << 20

// GalleryHandler handles image collection HTTP requests.
type GalleryHandler struct {
	gallery *service.GalleryService
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// HandleUpload processes a multipart batch upload.
// POST /images/upload
// Form: images[] (files) + titles[] (values, paired by index)
func (h *GalleryHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}

	fileHeaders := r.MultipartForm.File["images"]
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded.")
		return
	}
	titles := r.MultipartForm.Value["titles"]

	files := make([]service.UploadFile, 0, len(fileHeaders))
	for i, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unreadable file in upload.")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("read upload", "error", err)
			writeError(w, http.StatusInternalServerError, "Server error during upload.")
			return
		}

		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		files = append(files, service.UploadFile{
			Data: data,
			// Sniff the type from the bytes, the multipart header is
			// client-controlled.
			ContentType: http.DetectContentType(data),
			Title:       title,
		})
	}

	records, err := h.gallery.Upload(r.Context(), user.ID, files)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("upload images", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error during upload.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Files uploaded successfully.",
		"images":  toImageDTOs(records),
	})
}

// HandleList returns the caller's gallery in order.
// GET /images
func (h *GalleryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	images, err := h.gallery.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("list images", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error fetching images.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"images": toImageDTOs(images)})
}

// HandleEditTitle updates the title of one image.
// PUT /images/{id}/title
// Request: {"title":"..."}
func (h *GalleryHandler) HandleEditTitle(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image id.")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	record, err := h.gallery.EditTitle(r.Context(), user.ID, id, req.Title)
	if err != nil {
		h.writeGalleryError(w, err, "edit title")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Title updated successfully.",
		"image":   toImageDTO(record),
	})
}

// HandleReplace swaps an image's asset and title in place.
// PUT /images/{id}
// Form: image (file) + title (value)
func (h *GalleryHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image id.")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form.")
		return
	}

	title := r.FormValue("title")

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No image file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error("read upload", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error during upload.")
		return
	}

	result, err := h.gallery.Replace(r.Context(), user.ID, id, title, data, http.DetectContentType(data))
	if err != nil {
		h.writeGalleryError(w, err, "replace image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Image updated successfully.",
		"image":   toImageDTO(result.Record),
	})
}

// HandleDelete removes one image and compacts the remaining order.
// DELETE /images/{id}
func (h *GalleryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid image id.")
		return
	}

	if _, err := h.gallery.Delete(r.Context(), user.ID, id); err != nil {
		h.writeGalleryError(w, err, "delete image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image deleted and order updated."})
}

// HandleReorder applies a bulk order update.
// POST /images/reorder
// Request: {"updates":[{"id":1,"order":2}, ...]}
func (h *GalleryHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req struct {
		Updates []struct {
			ID    int64 `json:"id"`
			Order int   `json:"order"`
		} `json:"updates"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid updates payload.")
		return
	}

	updates := make([]domain.OrderUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = domain.OrderUpdate{ID: u.ID, SortOrder: u.Order}
	}

	if err := h.gallery.Reorder(r.Context(), user.ID, updates); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			writeError(w, http.StatusForbidden, "Batch references images you do not own.")
			return
		}
		h.writeGalleryError(w, err, "reorder images")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Image order updated successfully."})
}

func (h *GalleryHandler) writeGalleryError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Image not found.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
