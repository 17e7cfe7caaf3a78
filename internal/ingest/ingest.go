// Package ingest seeds a game from lore documents: scenes with their
// connections, and participants with their starting traits and
// relationships.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"rolecraft/internal/config"
	"rolecraft/internal/parser"
	"rolecraft/internal/scene"
	"rolecraft/internal/store"
)

type Store interface {
	EnsureGame(ctx context.Context, gameID, name string) error
	GetScene(ctx context.Context, sceneID string) (*store.Scene, error)
	AddTrait(ctx context.Context, trait store.Trait) error
	UpsertRelationship(ctx context.Context, rel store.Relationship) (*store.Relationship, error)
}

// Scenes is the part of the scene manager ingestion drives, so scene
// creation goes through the same lifecycle rules and notifications as play.
type Scenes interface {
	CreateScene(ctx context.Context, in scene.CreateInput) (*store.Scene, error)
	ConnectScenes(ctx context.Context, conn store.SceneConnection) error
}

type Result struct {
	ScenesCreated         int
	ScenesSkipped         int
	ConnectionsUpserted   int
	TraitsAdded           int
	RelationshipsUpserted int
	FilesSkipped          int
	Errors                []error
}

type Options struct {
	GameID string
	// GameName defaults to the project name.
	GameName string
	// Turn stamps seeded traits, relationships and scene unlocks.
	Turn   int
	Logger *zap.Logger
}

type pendingConnection struct {
	source string
	conn   store.SceneConnection
}

// Run walks the configured lore paths. Per-document failures are collected
// in Result.Errors and do not stop the run; only failing to prepare the game
// or walk the tree is returned as an error.
func Run(ctx context.Context, cfg *config.ProjectConfig, catalog *config.Catalog, db Store, scenes Scenes, options Options) (*Result, error) {
	if strings.TrimSpace(options.GameID) == "" {
		return nil, fmt.Errorf("ingest: game id is required")
	}
	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ingest")
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}

	name := options.GameName
	if name == "" {
		name = cfg.Project
	}
	if err := db.EnsureGame(ctx, options.GameID, name); err != nil {
		return nil, fmt.Errorf("ensure game: %w", err)
	}

	files, err := walkMarkdownFiles(cfg.Lore.Paths, cfg.Lore.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking lore files: %w", err)
	}

	result := &Result{}
	var connections []pendingConnection

	for _, path := range files {
		doc, err := parser.ParseFile(path)
		if err != nil {
			if errors.Is(err, parser.ErrNoFrontmatter) || errors.Is(err, parser.ErrMissingType) {
				result.FilesSkipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		switch doc.Kind {
		case "scene":
			pending, err := ingestScene(ctx, db, scenes, doc, options, result)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("scene %s: %w", path, err))
				continue
			}
			connections = append(connections, pending...)
		case string(store.EntityNPC), string(store.EntityPlayer), string(store.EntityCharacter):
			if err := ingestParticipant(ctx, db, catalog, doc, options, result); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("%s %s: %w", doc.Kind, path, err))
			}
		default:
			log.Debug("skipping lore document", zap.String("path", path), zap.String("type", doc.Kind))
			result.FilesSkipped++
		}
	}

	// Connections go last so a scene may point at one defined in a later file.
	for _, pending := range connections {
		if err := scenes.ConnectScenes(ctx, pending.conn); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("connecting in %s: %w", pending.source, err))
			continue
		}
		result.ConnectionsUpserted++
	}

	log.Info("lore ingested",
		zap.String("game_id", options.GameID),
		zap.Int("scenes_created", result.ScenesCreated),
		zap.Int("scenes_skipped", result.ScenesSkipped),
		zap.Int("connections", result.ConnectionsUpserted),
		zap.Int("traits", result.TraitsAdded),
		zap.Int("relationships", result.RelationshipsUpserted),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func ingestScene(ctx context.Context, db Store, scenes Scenes, doc *parser.Document, options Options, result *Result) ([]pendingConnection, error) {
	locked, err := parser.Bool(doc.Frontmatter["locked"])
	if err != nil {
		return nil, fmt.Errorf("locked %w", err)
	}
	connections, err := parseConnections(options.GameID, doc)
	if err != nil {
		return nil, err
	}

	existing, err := db.GetScene(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	switch {
	case existing != nil && existing.GameID != options.GameID:
		return nil, fmt.Errorf("scene id %s is already used by game %s", doc.ID, existing.GameID)
	case existing != nil:
		result.ScenesSkipped++
	default:
		_, err := scenes.CreateScene(ctx, scene.CreateInput{
			ID:          doc.ID,
			GameID:      options.GameID,
			Name:        doc.Title,
			Description: doc.Body,
			SceneType:   parser.String(doc.Frontmatter["scene_type"]),
			LocationID:  parser.String(doc.Frontmatter["location"]),
			Mood:        parser.String(doc.Frontmatter["mood"]),
			Stakes:      parser.String(doc.Frontmatter["stakes"]),
			Turn:        options.Turn,
			StartLocked: locked,
		})
		if err != nil {
			return nil, err
		}
		result.ScenesCreated++
	}

	pending := make([]pendingConnection, 0, len(connections))
	for _, conn := range connections {
		pending = append(pending, pendingConnection{source: doc.SourceFile, conn: conn})
	}
	return pending, nil
}

func parseConnections(gameID string, doc *parser.Document) ([]store.SceneConnection, error) {
	entries, err := parser.Maps(doc.Frontmatter["connections"])
	if err != nil {
		return nil, fmt.Errorf("connections %w", err)
	}

	connections := make([]store.SceneConnection, 0, len(entries))
	for i, entry := range entries {
		to := parser.String(entry["to"])
		if to == "" {
			return nil, fmt.Errorf("connection %d missing 'to'", i)
		}
		connType := store.ConnectionType(strings.ToLower(parser.String(entry["type"])))
		if connType == "" {
			connType = store.ConnectionPath
		}
		if !connType.Valid() {
			return nil, fmt.Errorf("connection %d has unknown type %q", i, connType)
		}
		connections = append(connections, store.SceneConnection{
			GameID:         gameID,
			FromSceneID:    doc.ID,
			ToSceneID:      to,
			ConnectionType: connType,
			Requirements:   parser.String(entry["requirements"]),
			Description:    parser.String(entry["description"]),
		})
	}
	return connections, nil
}

func ingestParticipant(ctx context.Context, db Store, catalog *config.Catalog, doc *parser.Document, options Options, result *Result) error {
	entity := store.EntityRef{Type: store.EntityType(doc.Kind), ID: doc.ID}

	traits, err := parser.StringList(doc.Frontmatter["traits"])
	if err != nil {
		return fmt.Errorf("traits %w", err)
	}
	for _, name := range traits {
		if !catalog.IsKnownTrait(name) {
			result.Errors = append(result.Errors, fmt.Errorf("%s: trait %q is not in the catalog", entity, name))
			continue
		}
		err := db.AddTrait(ctx, store.Trait{
			GameID:       options.GameID,
			Entity:       entity,
			Trait:        name,
			AcquiredTurn: options.Turn,
			Status:       store.TraitActive,
		})
		if err != nil {
			return err
		}
		result.TraitsAdded++
	}

	entries, err := parser.Maps(doc.Frontmatter["relationships"])
	if err != nil {
		return fmt.Errorf("relationships %w", err)
	}
	for i, entry := range entries {
		rel, err := parseRelationship(options, entity, entry)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s relationship %d: %w", entity, i, err))
			continue
		}
		if _, err := db.UpsertRelationship(ctx, rel); err != nil {
			return err
		}
		result.RelationshipsUpserted++
	}
	return nil
}

// parseRelationship starts from the default dimensions and overrides those
// the entry names. Values are clamped by the store.
func parseRelationship(options Options, from store.EntityRef, entry map[string]any) (store.Relationship, error) {
	to, err := store.ParseEntityRef(parser.String(entry["to"]))
	if err != nil {
		return store.Relationship{}, err
	}
	if to == from {
		return store.Relationship{}, fmt.Errorf("relationship with itself")
	}

	dims := store.DefaultDimensions()
	for _, dim := range store.AllDimensions {
		value, ok := entry[string(dim)]
		if !ok {
			continue
		}
		v, err := parser.Float(value)
		if err != nil {
			return store.Relationship{}, fmt.Errorf("%s %w", dim, err)
		}
		dims = dims.With(dim, v)
	}

	return store.Relationship{
		GameID:      options.GameID,
		From:        from,
		To:          to,
		Dimensions:  dims,
		UpdatedTurn: options.Turn,
	}, nil
}

func walkMarkdownFiles(roots []string, excludes []string) ([]string, error) {
	excluded := make([]string, 0, len(excludes))
	for _, path := range excludes {
		if path == "" {
			continue
		}
		excluded = append(excluded, filepath.Clean(path))
	}

	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if isExcluded(path, excluded) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func isExcluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, exclude := range excludes {
		if exclude == clean || strings.HasPrefix(clean, exclude+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}
