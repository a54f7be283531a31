package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"neighborly/internal/logging"
	"neighborly/internal/media"
	"neighborly/internal/metrics"

	"github.com/google/uuid"
)

const (
	avatarSize    = 512
	thumbnailSize = 160

	// multipartMemory bounds the in-memory portion of form parsing.
	multipartMemory = 8 << 20
)

// UploadAvatar accepts a multipart image upload with crop geometry, runs
// the normalization pipeline, and stores the avatar plus its thumbnail
// variant in the blob store.
//
// Form fields: image (file), userId, cropX, cropY, cropWidth, cropHeight,
// naturalWidth, naturalHeight, displayWidth, displayHeight; optional
// format (jpeg|png|webp, default jpeg), quality (0..1, default 0.85),
// background (hex color, default #fff).
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeJSONError(w, "Upload is too large or malformed", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSONError(w, "An image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := media.CheckUploadType(header.Header.Get("Content-Type"), header.Filename); err != nil {
		var typeErr *media.UnsupportedTypeError
		if errors.As(err, &typeErr) {
			writeJSONError(w, typeErr.Message, http.StatusBadRequest)
			return
		}
		writeJSONError(w, "Unsupported image type", http.StatusBadRequest)
		return
	}

	userID := strings.TrimSpace(r.FormValue("userId"))
	if userID == "" || strings.Contains(userID, "/") {
		writeJSONError(w, "A valid userId is required", http.StatusBadRequest)
		return
	}

	geom, err := parseCropGeometry(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := media.FormatJPEG
	if f := r.FormValue("format"); f != "" {
		format, err = media.ParseFormat(f)
		if err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	quality := 0.85
	if q := r.FormValue("quality"); q != "" {
		quality, err = strconv.ParseFloat(q, 64)
		if err != nil || quality < 0 || quality > 1 {
			writeJSONError(w, "quality must be a number between 0 and 1", http.StatusBadRequest)
			return
		}
	}

	background := "#fff"
	if bg := r.FormValue("background"); bg != "" {
		background = bg
	}
	bgColor, err := media.ParseHexColor(background)
	if err != nil {
		writeJSONError(w, "background must be a hex color like #fff", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	specs := []media.OutputSpec{
		{Width: avatarSize, Height: avatarSize, Format: format, Quality: quality, Background: bgColor},
		{Width: thumbnailSize, Height: thumbnailSize, Format: format, Quality: quality, Background: bgColor},
	}

	assets, err := h.pipeline.Render(r.Context(), data, geom, specs)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	filename := fmt.Sprintf("%s.%s", uuid.NewString(), format)
	key := fmt.Sprintf("avatars/%s/%s", userID, filename)
	thumbKey, ok := media.ThumbnailKey(key)
	if !ok {
		logging.Error("failed to derive thumbnail key from %q", key)
		writeJSONError(w, "Failed to store avatar", http.StatusInternalServerError)
		return
	}

	if err := h.blobs.Put(r.Context(), key, assets[0].Data, assets[0].MIME()); err != nil {
		logging.Error("failed to store avatar %s: %v", key, err)
		writeJSONError(w, "Failed to store avatar", http.StatusInternalServerError)
		return
	}
	if err := h.blobs.Put(r.Context(), thumbKey, assets[1].Data, assets[1].MIME()); err != nil {
		logging.Error("failed to store thumbnail %s: %v", thumbKey, err)
		writeJSONError(w, "Failed to store avatar", http.StatusInternalServerError)
		return
	}

	metrics.AvatarsProcessed.Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{
		"key":          key,
		"thumbnailKey": thumbKey,
		"contentType":  assets[0].MIME(),
	})
}

// writePipelineError maps pipeline failures onto responses: geometry
// problems are user-fixable and surfaced verbatim, everything else is
// logged in full and answered generically.
func (h *Handlers) writePipelineError(w http.ResponseWriter, err error) {
	var geomErr *media.GeometryError
	if errors.As(err, &geomErr) {
		writeJSONError(w, geomErr.Error(), http.StatusBadRequest)
		return
	}

	var decodeErr *media.DecodeError
	if errors.As(err, &decodeErr) {
		logging.Error("avatar decode failed: %v", decodeErr)
		writeJSONError(w, "The uploaded image could not be read", http.StatusBadRequest)
		return
	}

	var canvasErr *media.CanvasError
	if errors.As(err, &canvasErr) {
		logging.Error("avatar render failed: %v", canvasErr)
		writeJSONError(w, "Failed to process image", http.StatusInternalServerError)
		return
	}

	logging.Error("avatar pipeline failed: %v", err)
	writeJSONError(w, "Failed to process image", http.StatusInternalServerError)
}

func parseCropGeometry(r *http.Request) (media.CropGeometry, error) {
	intField := func(name string) (int, error) {
		v := r.FormValue(name)
		if v == "" {
			return 0, fmt.Errorf("%s is required", name)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return n, nil
	}

	var geom media.CropGeometry
	var err error
	fields := []struct {
		name string
		dst  *int
	}{
		{"cropX", &geom.Crop.X},
		{"cropY", &geom.Crop.Y},
		{"cropWidth", &geom.Crop.Width},
		{"cropHeight", &geom.Crop.Height},
		{"naturalWidth", &geom.NaturalWidth},
		{"naturalHeight", &geom.NaturalHeight},
		{"displayWidth", &geom.DisplayWidth},
		{"displayHeight", &geom.DisplayHeight},
	}
	for _, f := range fields {
		if *f.dst, err = intField(f.name); err != nil {
			return media.CropGeometry{}, err
		}
	}
	return geom, nil
}
