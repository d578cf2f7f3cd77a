package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/album-catalog/internal/album"
)

// parseID reads the {id} path parameter. It writes a 400 and returns false
// when the value is not a positive integer.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// handleListAlbums returns every album.
func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.albums.List(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, "list albums", err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// handleGetAlbum returns one album by ID.
func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	a, err := s.albums.Get(r.Context(), callerFrom(r.Context()), id)
	if err != nil {
		s.writeServiceError(w, r, "get album", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleCreateAlbum creates an album owned by the caller. A USER caller is
// promoted to EDITOR by the service; the response carries the album only.
func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	var in album.Input
	if !decodeJSON(w, r, &in) {
		return
	}

	a, err := s.albums.Create(r.Context(), callerFrom(r.Context()), in)
	if err != nil {
		s.writeServiceError(w, r, "create album", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleUpdateAlbum replaces the writable fields of an album.
func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in album.Input
	if !decodeJSON(w, r, &in) {
		return
	}

	a, err := s.albums.Update(r.Context(), callerFrom(r.Context()), id, in)
	if err != nil {
		s.writeServiceError(w, r, "update album", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleDeleteAlbum removes an album.
func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.albums.Delete(r.Context(), callerFrom(r.Context()), id); err != nil {
		s.writeServiceError(w, r, "delete album", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
