package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"proofcanvas/geometry"
	"proofcanvas/graph"
)

// FileStore is a MemStore persisted to a JSON file. Every committed
// mutation is written through, and external writes to the file (another
// process, a sync client) are picked up via fsnotify and surfaced through
// OnReload.
type FileStore struct {
	*MemStore
	path string
	log  *slog.Logger

	// OnReload, when set, receives the fresh graph after an external
	// change to the backing file. This is the engine's authoritative
	// refresh channel.
	OnReload func(*graph.Graph)

	watcher *fsnotify.Watcher
	done    chan struct{}

	// lastWrite holds the bytes most recently written or reloaded, so the
	// watcher can tell our own write-through (fsnotify delivers several
	// events per save) from a real external change.
	wmu       sync.Mutex
	lastWrite []byte
}

// OpenFileStore loads (or creates) the graph file at path.
func OpenFileStore(path string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}
	var g graph.Graph
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := graph.Validate(&g); err != nil {
			return nil, fmt.Errorf("validate %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fresh file, empty graph.
	default:
		return nil, err
	}

	return &FileStore{
		MemStore:  NewMemStore(&g),
		path:      path,
		log:       log,
		lastWrite: data,
	}, nil
}

// Watch starts following external changes to the backing file. Stop with
// Close.
func (s *FileStore) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	// Watch the directory: editors and sync clients replace files rather
	// than writing in place.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	s.watcher = w
	s.done = make(chan struct{})

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				s.reload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.log.Warn("file watch error", slog.String("error", err.Error()))
			case <-s.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (s *FileStore) Close() error {
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

func (s *FileStore) reload() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Warn("reload failed", slog.String("path", s.path), slog.String("error", err.Error()))
		return
	}
	s.wmu.Lock()
	seen := bytes.Equal(data, s.lastWrite)
	if !seen {
		s.lastWrite = data
	}
	s.wmu.Unlock()
	if seen {
		// Our own write-through, or a duplicate event for a change we
		// already applied.
		return
	}
	var g graph.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		s.log.Warn("reload parse failed", slog.String("path", s.path), slog.String("error", err.Error()))
		return
	}
	s.mu.Lock()
	s.g = *g.Clone()
	s.mu.Unlock()
	s.log.Info("graph reloaded from external change", slog.String("path", s.path))
	if s.OnReload != nil {
		s.OnReload(&g)
	}
}

// save writes the current graph to disk, recording the bytes so the
// watcher does not loop the write back as an external change.
func (s *FileStore) save() error {
	snapshot := s.Snapshot()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	s.wmu.Lock()
	s.lastWrite = data
	s.wmu.Unlock()
	return os.WriteFile(s.path, data, 0644)
}

func (s *FileStore) persist(op string, err error) error {
	if err != nil {
		return err
	}
	if werr := s.save(); werr != nil {
		s.log.Warn("persist failed", slog.String("op", op), slog.String("error", werr.Error()))
	}
	return nil
}

func (s *FileStore) CreateNode(ctx context.Context, n graph.Node) (string, error) {
	id, err := s.MemStore.CreateNode(ctx, n)
	return id, s.persistID("create node", err)
}

func (s *FileStore) UpdateNode(ctx context.Context, id string, update graph.NodeUpdate) error {
	return s.persist("update node", s.MemStore.UpdateNode(ctx, id, update))
}

func (s *FileStore) DeleteNode(ctx context.Context, id string) error {
	return s.persist("delete node", s.MemStore.DeleteNode(ctx, id))
}

func (s *FileStore) BulkMoveNodes(ctx context.Context, moves map[string]geometry.Point) error {
	return s.persist("bulk move", s.MemStore.BulkMoveNodes(ctx, moves))
}

func (s *FileStore) CreateEdge(ctx context.Context, from, to string, t graph.EdgeType) (string, error) {
	id, err := s.MemStore.CreateEdge(ctx, from, to, t)
	return id, s.persistID("create edge", err)
}

func (s *FileStore) DeleteEdge(ctx context.Context, id string) error {
	return s.persist("delete edge", s.MemStore.DeleteEdge(ctx, id))
}

func (s *FileStore) CreateBlock(ctx context.Context, name string, nodeIDs []string) (string, error) {
	id, err := s.MemStore.CreateBlock(ctx, name, nodeIDs)
	return id, s.persistID("create block", err)
}

func (s *FileStore) DeleteBlock(ctx context.Context, id string) error {
	return s.persist("delete block", s.MemStore.DeleteBlock(ctx, id))
}

// persistID mirrors persist for operations returning an id.
func (s *FileStore) persistID(op string, err error) error {
	return s.persist(op, err)
}

var _ graph.Store = (*FileStore)(nil)
