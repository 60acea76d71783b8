package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docsect/internal/doctree"
	"github.com/dgallion1/docsect/internal/pagenum"
	"github.com/dgallion1/docsect/internal/sections"
	"github.com/dgallion1/docsect/internal/toc"
)

type sectionsRequest struct {
	Document *doctree.Node `json:"document"`
	Anchors  bool          `json:"anchors"`
}

type sectionsResponse struct {
	Sections []*doctree.Node `json:"sections"`
	TOC      []toc.Entry     `json:"toc"`
}

// handleSections splits the body of a JSON document tree into sections.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	var req sectionsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Document == nil {
		jsonError(w, "document is required", http.StatusBadRequest)
		return
	}
	secs := sections.Build(req.Document)
	if req.Anchors {
		toc.AssignAnchors(secs)
	}
	resp := sectionsResponse{Sections: secs, TOC: toc.Build(secs)}
	if resp.Sections == nil {
		resp.Sections = []*doctree.Node{}
	}
	if resp.TOC == nil {
		resp.TOC = []toc.Entry{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type pageNumbersRequest struct {
	Pages []*doctree.Node `json:"pages"`
	// Strip removes the found numbers and returns the modified pages.
	Strip bool `json:"strip"`
}

type pageNumbersResponse struct {
	pagenum.Result
	Pages []*doctree.Node `json:"pages,omitempty"`
}

// handlePageNumbers infers the running page numbers of a batch of pages.
func (s *Server) handlePageNumbers(w http.ResponseWriter, r *http.Request) {
	var req pageNumbersRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !req.Strip {
		writeJSON(w, http.StatusOK, pageNumbersResponse{Result: pagenum.Result{Sequence: pagenum.Infer(req.Pages)}})
		return
	}
	res := pagenum.Run(req.Pages)
	writeJSON(w, http.StatusOK, pageNumbersResponse{Result: res, Pages: req.Pages})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
