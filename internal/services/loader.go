package services

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/singleflight"

	"github.com/bookwise/backend/internal/logger"
	"github.com/bookwise/backend/internal/stamp"
)

// LoaderService loads a checkpoint into a model shaped for the current
// catalog and publishes it together with freshly rebuilt index mappings.
// Concurrent load requests collapse into one; a reload never overlaps
// another reload.
type LoaderService interface {
	Load(ctx context.Context) error
	LoadPath(ctx context.Context, path string) error
}

type loaderService struct {
	log      *logger.Logger
	paths    []string
	embedDim int
	initSeed int64
	indexSvc IndexMapService
	registry *ModelRegistry
	group    singleflight.Group
}

func NewLoaderService(
	baseLog *logger.Logger,
	paths []string,
	embedDim int,
	initSeed int64,
	indexSvc IndexMapService,
	registry *ModelRegistry,
) LoaderService {
	return &loaderService{
		log:      baseLog.With("service", "LoaderService"),
		paths:    paths,
		embedDim: embedDim,
		initSeed: initSeed,
		indexSvc: indexSvc,
		registry: registry,
	}
}

func (s *loaderService) Load(ctx context.Context) error {
	_, err, _ := s.group.Do("load", func() (interface{}, error) {
		return nil, s.load(ctx, "")
	})
	return err
}

func (s *loaderService) LoadPath(ctx context.Context, path string) error {
	_, err, _ := s.group.Do("load", func() (interface{}, error) {
		return nil, s.load(ctx, path)
	})
	return err
}

func (s *loaderService) load(ctx context.Context, path string) error {
	// Mappings are rebuilt first so the model is shaped for the catalog
	// as it is now, not as it was at training time.
	mapping, err := s.indexSvc.Rebuild(ctx)
	if err != nil {
		return fmt.Errorf("rebuild index mappings: %w", err)
	}
	if mapping.NumItems() == 0 {
		return ErrCatalogEmpty
	}

	if path == "" {
		path = s.firstExistingPath()
		if path == "" {
			s.log.Error("No checkpoint found", "candidates", s.paths)
			return ErrCheckpointNotFound
		}
	}

	params, err := stamp.ReadCheckpoint(path)
	if err != nil {
		return fmt.Errorf("read checkpoint %s: %w", path, err)
	}

	// Row 0 is the padding sentinel, so the table has one extra row.
	numRows := mapping.NumItems() + 1
	model := stamp.New(numRows, s.embedDim, s.initSeed)
	for _, note := range model.LoadState(params) {
		switch {
		case note.Err != nil:
			s.log.Warn("Tensor load failed", "tensor", note.Name, "error", note.Err)
		case note.Action == stamp.LoadResized:
			s.log.Warn("Resized tensor to current catalog size", "tensor", note.Name)
		case note.Action == stamp.LoadSkipped:
			s.log.Warn("Checkpoint tensor has no counterpart in model, skipped", "tensor", note.Name)
		}
	}

	s.registry.Publish(&ScoringSnapshot{Model: model, Mapping: mapping})
	s.log.Info("Model loaded", "path", path, "num_items", mapping.NumItems(), "embed_dim", s.embedDim)
	return nil
}

func (s *loaderService) firstExistingPath() string {
	for _, p := range s.paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
