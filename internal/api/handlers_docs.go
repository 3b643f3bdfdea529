package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docfreeze/internal/pipeline"
)

// handleListEmbeds lists the embeds written in a document and where each
// one resolves, without freezing anything.
func (s *Server) handleListEmbeds(w http.ResponseWriter, r *http.Request) {
	docPath, err := cleanDocPath(r.URL.Query().Get("path"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	embeds, err := s.orchestrator.Freezer().Embeds(r.Context(), docPath)
	if err != nil {
		s.freezeError(w, docPath, err)
		return
	}
	if embeds == nil {
		embeds = []pipeline.EmbedInfo{}
	}

	unresolved := 0
	for _, e := range embeds {
		if !e.Found && !e.Asset {
			unresolved++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"path":       docPath,
		"embeds":     embeds,
		"unresolved": unresolved,
	})
}
