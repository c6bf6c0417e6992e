package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/asset"
)

// FileResponse is the JSON form of a file entity
type FileResponse struct {
	ID        string         `json:"id"`
	Parent    string         `json:"parent"`
	Filename  string         `json:"filename"`
	Template  string         `json:"template,omitempty"`
	Content   map[string]any `json:"content"`
	Sort      int            `json:"sort"`
	Type      string         `json:"type"`
	Exists    bool           `json:"exists"`
	URL       string         `json:"url,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CallRequest carries the arguments of a proxied operation
type CallRequest struct {
	Args []any `json:"args"`
}

// CallResponse is the result of a proxied operation
type CallResponse struct {
	Operation string `json:"operation"`
	Result    any    `json:"result"`
}

func fileResponse(f *simplecms.File) FileResponse {
	rec := f.Record()
	return FileResponse{
		ID:        rec.ID.String(),
		Parent:    rec.Parent,
		Filename:  rec.Filename,
		Template:  rec.Template,
		Content:   rec.Content,
		Sort:      rec.Sort,
		Type:      f.Type(),
		Exists:    f.Exists(),
		URL:       f.URL(),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func fileID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.Join(simplecms.ErrInvalidFile, err)
	}
	return id, nil
}

// ListFiles lists the files of the page given by the parent query parameter
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	parent := r.URL.Query().Get("parent")
	if parent == "" {
		http.Error(w, "Missing required 'parent' parameter", http.StatusBadRequest)
		return
	}

	files, err := h.app.Files(r.Context(), parent)
	if err != nil {
		h.fail(w, r, "Failed to list files", err)
		return
	}

	resp := make([]FileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, fileResponse(f))
	}
	render.JSON(w, r, resp)
}

// CreateFile creates a file record
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	var req simplecms.CreateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.app.CreateFile(r.Context(), req)
	if err != nil {
		h.fail(w, r, "Failed to create file", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, fileResponse(f))
}

// GetFile returns a file
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	f, err := h.app.File(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get file", err)
		return
	}
	render.JSON(w, r, fileResponse(f))
}

// UpdateFile merges the JSON object in the body into the file's content.
// A null value removes the field.
func (h *Handler) UpdateFile(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := h.app.UpdateFileContent(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, "Failed to update file", err)
		return
	}
	render.JSON(w, r, fileResponse(f))
}

// DeleteFile deletes a file record
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	if err := h.app.DeleteFile(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CallFile runs an operation on a file through its proxy fallback
func (h *Handler) CallFile(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	f, err := h.app.File(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get file", err)
		return
	}
	h.call(w, r, f.Call)
}

// DownloadFile streams the file from the content root
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := fileID(r)
	if err != nil {
		http.Error(w, "Invalid file ID", http.StatusBadRequest)
		return
	}

	f, err := h.app.File(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to get file", err)
		return
	}
	if !f.Exists() {
		http.Error(w, "File has no local content", http.StatusNotFound)
		return
	}

	file, err := h.app.Fs().Open(f.Root())
	if err != nil {
		h.fail(w, r, "Failed to open file", err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		h.fail(w, r, "Failed to stat file", err)
		return
	}
	http.ServeContent(w, r, path.Base(f.Root()), info.ModTime(), file)
}

func (h *Handler) call(w http.ResponseWriter, r *http.Request, call func(string, ...any) (any, error)) {
	operation := chi.URLParam(r, "operation")

	var args []any
	if r.Method == http.MethodPost {
		var req CallRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		args = req.Args
	} else {
		for _, v := range r.URL.Query()["arg"] {
			args = append(args, v)
		}
	}

	result, err := call(operation, args...)
	if err != nil {
		h.fail(w, r, "Operation failed", err)
		return
	}
	render.JSON(w, r, CallResponse{Operation: operation, Result: Encodable(result)})
}

// Encodable turns operation results such as handles and dimensions into
// values that encode to JSON.
func Encodable(v any) any {
	switch v := v.(type) {
	case asset.Handle:
		if op, ok := v.Lookup("toArray"); ok {
			if arr, err := op(); err == nil {
				return arr
			}
		}
		return v.String()
	case asset.Dimensions:
		return v.ToArray()
	}
	return v
}
