package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dgallion1/docsect/internal/pathstore"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists published documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ps := s.orchestrator.PathstoreClient()
	if ps == nil {
		jsonError(w, "publishing is disabled", http.StatusServiceUnavailable)
		return
	}

	children, err := ps.ListChildren(r.Context(), pathstore.Root, 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}

	// Only meta nodes describe a document.
	docs := []map[string]any{}
	for _, child := range children {
		if !strings.HasSuffix(child.Key, "/meta") {
			continue
		}
		docs = append(docs, map[string]any{
			"doc_id": pathstore.DocIDFromKey(child.Key),
			"meta":   json.RawMessage(child.Value),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleDeleteDocument deletes a document with its sections.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ps := s.orchestrator.PathstoreClient()
	if ps == nil {
		jsonError(w, "publishing is disabled", http.StatusServiceUnavailable)
		return
	}
	docID := chi.URLParam(r, "docID")
	ctx := r.Context()

	meta, err := ps.GetNode(ctx, pathstore.MetaKey(docID))
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if meta == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err := ps.DeleteNode(ctx, pathstore.DocumentKey(docID), true); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("document deleted", "doc_id", docID)

	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}
