package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/patchbay/patchbay/internal/core/snapshot"
	"github.com/patchbay/patchbay/pkg/patchbay"
)

type addNodeRequest struct {
	Type string  `json:"type" validate:"required"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type controlRequest struct {
	Value any `json:"value"`
}

type inspectRequest struct {
	Inspect bool `json:"inspect"`
}

type connectRequest struct {
	Src patchbay.PortID `json:"src" validate:"min=0"`
	Dst patchbay.PortID `json:"dst" validate:"min=0"`
}

type evaluateRequest struct {
	Node *patchbay.NodeID `json:"node"`
}

type dragBeginRequest struct {
	Port patchbay.PortID `json:"port" validate:"min=0"`
}

type dragDropRequest struct {
	Port patchbay.PortID `json:"port" validate:"min=0"`
}

type dragCanvasRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type dragChooseRequest struct {
	Type string `json:"type" validate:"required"`
}

type saveSnapshotRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type typesResponse struct {
	Types      []*patchbay.NodeType `json:"types"`
	Categories map[string][]string  `json:"categories"`
}

type healthResponse struct {
	Status string `json:"status"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

type dragStateResponse struct {
	State patchbay.DragState `json:"state"`
}

type dragDropResponse struct {
	Edge  patchbay.EdgeID    `json:"edge"`
	State patchbay.DragState `json:"state"`
}

type dragCanvasResponse struct {
	Suggestions []string           `json:"suggestions"`
	State       patchbay.DragState `json:"state"`
}

type dragChooseResponse struct {
	Node  patchbay.NodeInfo  `json:"node"`
	State patchbay.DragState `json:"state"`
}

type snapshotMeta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Version   string    `json:"version,omitempty"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
}

func metaOf(doc *patchbay.Document) snapshotMeta {
	return snapshotMeta{
		ID:        doc.ID,
		Name:      doc.Name,
		CreatedAt: doc.CreatedAt,
		Version:   doc.Version,
		Nodes:     len(doc.Nodes),
		Edges:     len(doc.Edges),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	nodes, edges := s.patch.Stats()
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Nodes: nodes, Edges: edges})
}

func (s *Server) handleTypes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, typesResponse{
		Types:      s.patch.Types(),
		Categories: s.patch.Categories(),
	})
}

func (s *Server) handleListNodes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.patch.Nodes())
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.patch.AddNode(req.Type, req.X, req.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.patch.Describe(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	info, err := s.patch.Describe(patchbay.NodeID(id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.patch.RemoveNode(patchbay.NodeID(id)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetControl(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req controlRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.patch.SetControl(patchbay.NodeID(id), req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.patch.Describe(patchbay.NodeID(id))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var req inspectRequest
	if !s.decode(w, r, &req) {
		return
	}

	// Flagging a missing node is harmless, but report it so clients notice
	// stale handles.
	if _, err := s.patch.Describe(patchbay.NodeID(id)); err != nil {
		s.writeError(w, err)
		return
	}
	s.patch.Inspect(patchbay.NodeID(id), req.Inspect)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListEdges(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.patch.Edges())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.patch.Connect(req.Src, req.Dst)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, patchbay.EdgeInfo{ID: id, Src: req.Src, Dst: req.Dst})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := s.patch.Disconnect(patchbay.EdgeID(id)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvaluate evaluates one node when the body names one, otherwise
// refreshes the whole patch from its source nodes.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Node != nil {
		if err := s.patch.Evaluate(*req.Node); err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		s.patch.EvaluateAll()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDragState(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, dragStateResponse{State: s.patch.DragState()})
}

func (s *Server) handleDragBegin(w http.ResponseWriter, r *http.Request) {
	var req dragBeginRequest
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.patch.BeginDrag(req.Port); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dragStateResponse{State: s.patch.DragState()})
}

func (s *Server) handleDragDrop(w http.ResponseWriter, r *http.Request) {
	var req dragDropRequest
	if !s.decode(w, r, &req) {
		return
	}

	edge, err := s.patch.DropOnPort(req.Port)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, dragDropResponse{Edge: edge, State: s.patch.DragState()})
}

func (s *Server) handleDragCanvas(w http.ResponseWriter, r *http.Request) {
	var req dragCanvasRequest
	if !s.decode(w, r, &req) {
		return
	}

	names, err := s.patch.DropOnCanvas(req.X, req.Y)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dragCanvasResponse{Suggestions: names, State: s.patch.DragState()})
}

func (s *Server) handleDragChoose(w http.ResponseWriter, r *http.Request) {
	var req dragChooseRequest
	if !s.decode(w, r, &req) {
		return
	}

	id, err := s.patch.ChooseType(req.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.patch.Describe(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, dragChooseResponse{Node: info, State: s.patch.DragState()})
}

func (s *Server) handleDragCancel(w http.ResponseWriter, _ *http.Request) {
	s.patch.CancelDrag()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var req saveSnapshotRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc, err := s.patch.Save(r.Context(), s.store, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, metaOf(doc))
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	docs, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	metas := make([]snapshotMeta, 0, len(docs))
	for _, doc := range docs {
		metas = append(metas, metaOf(doc))
	}
	s.writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.patch.Load(r.Context(), s.store, id); err != nil {
		s.writeError(w, err)
		return
	}

	// Every handle the client held is stale now.
	s.hub.Broadcast(Event{Name: "reload", Data: fmt.Sprintf(`{"snapshot":%q}`, id)})

	nodes, edges := s.patch.Stats()
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Nodes: nodes, Edges: edges})
}

// listFilter builds a snapshot filter from query parameters. Time bounds
// are RFC 3339.
func listFilter(r *http.Request) (snapshot.Filter, error) {
	q := r.URL.Query()
	f := snapshot.Filter{Name: q.Get("name")}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("invalid offset %q", v)
		}
		f.Offset = n
	}
	if v := q.Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid since %q", v)
		}
		f.Since = &ts
	}
	if v := q.Get("before"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid before %q", v)
		}
		f.Before = &ts
	}
	return f, nil
}
