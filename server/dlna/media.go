package dlna

import (
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/udlna/udlna/httprange"
	"github.com/udlna/udlna/log"
	"github.com/udlna/udlna/media"
	"github.com/udlna/udlna/soap"
)

func setDLNAHeaders(w http.ResponseWriter, mimeType string) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("transferMode.dlna.org", "Streaming")
	w.Header().Set("contentFeatures.dlna.org", soap.ContentFeatures)
}

// lookupMedia parses id and looks it up in the library, copying the
// item out before the read lock inside Find is released — no
// suspension happens while holding it.
func (r *Router) lookupMedia(idStr string) (media.Item, bool) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return media.Item{}, false
	}
	return r.library.Find(id)
}

// handleMediaHead answers with the would-be response headers but
// never opens the file — the library lookup alone is sufficient.
func (r *Router) handleMediaHead(w http.ResponseWriter, req *http.Request) {
	item, ok := r.lookupMedia(chi.URLParam(req, "id"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	setDLNAHeaders(w, item.MIME)
	w.Header().Set("Content-Length", strconv.FormatUint(item.FileSize, 10))
	w.WriteHeader(http.StatusOK)
}

// handleMediaGet streams a full file or a single resolved byte range.
func (r *Router) handleMediaGet(w http.ResponseWriter, req *http.Request) {
	item, ok := r.lookupMedia(chi.URLParam(req, "id"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f, err := os.Open(item.Path)
	if err != nil {
		log.Error(req.Context(), "cannot open media file", "path", item.Path, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer f.Close()

	size := int64(item.FileSize)
	setDLNAHeaders(w, item.MIME)

	header := req.Header.Get("Range")
	if header == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		n, err := io.CopyN(w, f, size)
		mediaBytesStreamed.Add(float64(n))
		if err != nil && err != io.EOF {
			log.Debug(req.Context(), "client disconnected during stream", "path", item.Path)
		}
		return
	}

	rng, err := httprange.Parse(header, size)
	if err != nil {
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		return
	}

	if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
		log.Error(req.Context(), "seek failed", "path", item.Path, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(rng.Start, 10)+"-"+strconv.FormatInt(rng.End, 10)+"/"+strconv.FormatInt(size, 10))
	w.Header().Set("Content-Length", strconv.FormatInt(rng.Length(), 10))
	w.WriteHeader(http.StatusPartialContent)

	n, err := io.CopyN(w, f, rng.Length())
	mediaBytesStreamed.Add(float64(n))
	if err != nil && err != io.EOF {
		log.Debug(req.Context(), "client disconnected during range stream", "path", item.Path)
	}
}
