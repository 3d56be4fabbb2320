package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/inamate/sketchpad/internal/document"
	"github.com/inamate/sketchpad/internal/raster"
	"github.com/inamate/sketchpad/internal/typeid"
)

const maxUploadSize = 64 << 20 // 64MB, snapshots may inline layer images

// Request is the flatten request. Snapshot is the re-editable JSON
// snapshot; Width and Height default to the configured canvas size.
type Request struct {
	Snapshot json.RawMessage `json:"snapshot"`
	Caption  string          `json:"caption"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
}

// Response is returned for ?format=json.
type Response struct {
	ID       string          `json:"id"`
	Image    string          `json:"image"`
	Caption  string          `json:"caption"`
	Snapshot json.RawMessage `json:"snapshot"`
}

type Handler struct {
	source        raster.Source
	width, height int
}

func NewHandler(source raster.Source, width, height int) *Handler {
	return &Handler{source: source, width: width, height: height}
}

// Flatten handles POST /export. The body is either JSON or a multipart form
// with snapshot, caption, width and height fields.
func (h *Handler) Flatten(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	req, err := h.parseRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		req.Width, req.Height = h.width, h.height
	}

	png, err := Flatten(h.source, req.Snapshot, req.Width, req.Height)
	if err != nil {
		handleFlattenError(w, err)
		return
	}

	id := typeid.NewExportID()
	slog.Info("export complete", "export", id, "w", req.Width, "h", req.Height, "size", len(png))

	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, Response{
			ID:       id,
			Image:    raster.PNGDataURL(png),
			Caption:  req.Caption,
			Snapshot: req.Snapshot,
		})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, id))
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	if req.Caption != "" {
		w.Header().Set("X-Caption", encodeCaption(req.Caption))
	}
	w.Write(png)
}

func (h *Handler) parseRequest(r *http.Request) (Request, error) {
	var req Request
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return req, errors.New("request too large")
		}
		defer r.MultipartForm.RemoveAll()

		req.Snapshot = json.RawMessage(r.FormValue("snapshot"))
		req.Caption = r.FormValue("caption")
		req.Width, _ = strconv.Atoi(r.FormValue("width"))
		req.Height, _ = strconv.Atoi(r.FormValue("height"))
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.New("invalid request body")
	}

	if len(req.Snapshot) == 0 {
		return req, errors.New("snapshot is required")
	}
	return req, nil
}

func handleFlattenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, document.ErrInvalidSnapshot), errors.Is(err, ErrSize):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrMissingRaster):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		slog.Error("export failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
	}
}

// encodeCaption percent-encodes the caption as UTF-8 so it survives as a
// header value; clients decode it with decodeURIComponent.
func encodeCaption(s string) string {
	return url.PathEscape(s)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
