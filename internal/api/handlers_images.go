// Imagegate - Resilient Image Loading for Infrastructure Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/imagegate

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/imagegate/internal/loader"
	"github.com/tomtom215/imagegate/internal/logging"
	"github.com/tomtom215/imagegate/internal/models"
)

// MountImage handles POST /api/v1/images.
func (h *Handler) MountImage(w http.ResponseWriter, r *http.Request) {
	var req models.MountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	if h.mounts.full() {
		h.respondMountLimit(w)
		return
	}

	id := uuid.NewString()
	img, err := h.loader.Mount(r.Context(), req.Src, h.mountOptions(r.Context(), id, req)...)
	if err != nil {
		h.respondMountError(w, err)
		return
	}
	if err := h.mounts.put(id, img); err != nil {
		// Lost a race for the last slot.
		img.Unmount()
		h.respondMountLimit(w)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("image_id", id).
		Str("src", sanitizeLogValue(req.Src)).
		Msg("Image mounted")

	respondData(w, http.StatusCreated, models.MountResponse{ID: id, State: img.State()})
}

// mountOptions converts request overrides into loader options.
func (h *Handler) mountOptions(ctx context.Context, id string, req models.MountRequest) []loader.MountOption {
	requestID := logging.RequestIDFromContext(ctx)
	opts := []loader.MountOption{
		loader.OnFinalError(func(st models.LoadState) {
			logging.Warn().
				Str("image_id", id).
				Str("request_id", requestID).
				Str("src", sanitizeLogValue(st.Src)).
				Int("attempt", st.Attempt).
				Msg("Image failed after all retries")
		}),
	}
	if req.MaxRetries != nil {
		opts = append(opts, loader.WithMaxRetries(*req.MaxRetries))
	}
	if req.BaseDelayMS != nil {
		opts = append(opts, loader.WithBaseDelay(time.Duration(*req.BaseDelayMS)*time.Millisecond))
	}
	if req.CacheTTLSeconds != nil {
		opts = append(opts, loader.WithCacheTTL(time.Duration(*req.CacheTTLSeconds)*time.Second))
	}
	return opts
}

func (h *Handler) respondMountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loader.ErrClosed):
		respondError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "Loader is shutting down", nil)
	case errors.Is(err, loader.ErrEmptySource):
		respondError(w, http.StatusBadRequest, CodeValidation, "src is required", nil)
	default:
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	}
}

func (h *Handler) respondMountLimit(w http.ResponseWriter) {
	respondErrorDetails(w, http.StatusServiceUnavailable, CodeMountLimit,
		"Too many mounted images; delete unused ones first",
		map[string]interface{}{"max_mounts": h.config.MaxMounts}, nil)
}

// lookupImage resolves the {id} URL parameter, writing a 404 when unknown.
func (h *Handler) lookupImage(w http.ResponseWriter, r *http.Request) (*loader.Image, bool) {
	id := chi.URLParam(r, "id")
	img, err := h.mounts.get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "Image not found", nil)
		return nil, false
	}
	return img, true
}

// GetImage handles GET /api/v1/images/{id}.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	img, ok := h.lookupImage(w, r)
	if !ok {
		return
	}
	respondData(w, http.StatusOK, img.State())
}

// GetImageContent handles GET /api/v1/images/{id}/content.
func (h *Handler) GetImageContent(w http.ResponseWriter, r *http.Request) {
	img, ok := h.lookupImage(w, r)
	if !ok {
		return
	}

	blob, err := img.Content()
	if err != nil {
		st := img.State()
		if st.Status == models.StatusFailed {
			respondErrorDetails(w, http.StatusConflict, CodeImageFailed, "Image failed to load", stateDetails(st), nil)
			return
		}
		respondErrorDetails(w, http.StatusConflict, CodeImageNotReady, "Image is still loading", stateDetails(st), nil)
		return
	}
	writeBlob(w, blob, img.State())
}

// RetryImage handles POST /api/v1/images/{id}/retry.
func (h *Handler) RetryImage(w http.ResponseWriter, r *http.Request) {
	img, ok := h.lookupImage(w, r)
	if !ok {
		return
	}

	if err := img.Retry(); err != nil {
		switch {
		case errors.Is(err, loader.ErrNotFailed):
			respondErrorDetails(w, http.StatusConflict, CodeImageNotFailed,
				"Manual retry is only available after the image failed", stateDetails(img.State()), nil)
			return
		case errors.Is(err, loader.ErrClosed):
			respondError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "Loader is shutting down", nil)
			return
		}
		respondError(w, http.StatusGone, CodeNotFound, "Image is unmounted", err)
		return
	}
	respondData(w, http.StatusAccepted, img.State())
}

// ChangeSource handles PUT /api/v1/images/{id}/source.
func (h *Handler) ChangeSource(w http.ResponseWriter, r *http.Request) {
	img, ok := h.lookupImage(w, r)
	if !ok {
		return
	}

	var req models.SourceChangeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	if err := img.SetSource(r.Context(), req.Src); err != nil {
		switch {
		case errors.Is(err, loader.ErrUnmounted):
			respondError(w, http.StatusGone, CodeNotFound, "Image is unmounted", nil)
			return
		case errors.Is(err, loader.ErrClosed):
			respondError(w, http.StatusServiceUnavailable, CodeServiceUnavailable, "Loader is shutting down", nil)
			return
		}
		respondError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	respondData(w, http.StatusOK, img.State())
}

// DeleteImage handles DELETE /api/v1/images/{id}.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.mounts.remove(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "Image not found", nil)
		return
	}
	img.Unmount()
	w.WriteHeader(http.StatusNoContent)
}

// ProxyImage handles GET /api/v1/images/proxy?src=. It mounts src, waits for
// a terminal state, streams the bytes and unmounts.
func (h *Handler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	req := models.SourceChangeRequest{Src: r.URL.Query().Get("src")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	img, err := h.loader.Mount(r.Context(), req.Src)
	if err != nil {
		h.respondMountError(w, err)
		return
	}
	defer img.Unmount()

	ctx, cancel := context.WithTimeout(r.Context(), h.config.ProxyWaitTimeout)
	defer cancel()

	st, err := img.Wait(ctx)
	if errors.Is(err, loader.ErrClosed) {
		respondErrorDetails(w, http.StatusServiceUnavailable, CodeServiceUnavailable,
			"Loader is shutting down", stateDetails(st), nil)
		return
	}
	if err != nil {
		respondErrorDetails(w, http.StatusGatewayTimeout, CodeImageNotReady,
			"Image did not settle in time", stateDetails(st), nil)
		return
	}
	if st.Status == models.StatusFailed {
		respondErrorDetails(w, http.StatusBadGateway, CodeImageFailed,
			"Image failed to load", stateDetails(st), nil)
		return
	}

	blob, err := img.Content()
	if err != nil {
		respondError(w, http.StatusBadGateway, CodeImageFailed, "Image content unavailable", err)
		return
	}
	writeBlob(w, blob, st)
}
