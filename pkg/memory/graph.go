package memory

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// KnowledgeGraph records agent notes in Neo4j. A nil *KnowledgeGraph is a
// valid no-op handle, so callers never need to branch on configuration.
type KnowledgeGraph struct {
	driver neo4j.DriverWithContext
}

// NewKnowledgeGraph creates a graph handle. Empty settings yield a nil
// handle (graph store disabled), which is not an error.
func NewKnowledgeGraph(uri, user, password string) (*KnowledgeGraph, error) {
	if uri == "" || user == "" || password == "" {
		return nil, nil
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	return &KnowledgeGraph{driver: driver}, nil
}

// UpsertNote creates a note linked to the agent node. No-op on a nil
// handle. Errors are returned for the caller to log and continue; a note
// failure must never abort the primary response.
func (g *KnowledgeGraph) UpsertNote(ctx context.Context, agent, text string) error {
	if g == nil || g.driver == nil {
		return nil
	}

	query := "MERGE (a:Agent {name:$agent}) CREATE (a)-[:NOTED]->(:Note {text:$text})"
	_, err := neo4j.ExecuteQuery(ctx, g.driver, query,
		map[string]any{"agent": agent, "text": text},
		neo4j.EagerResultTransformer)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

// Notes returns the note texts recorded for the agent, newest first.
func (g *KnowledgeGraph) Notes(ctx context.Context, agent string, limit int) ([]string, error) {
	if g == nil || g.driver == nil {
		return nil, nil
	}

	query := "MATCH (a:Agent {name:$agent})-[:NOTED]->(n:Note) RETURN n.text AS text LIMIT $limit"
	result, err := neo4j.ExecuteQuery(ctx, g.driver, query,
		map[string]any{"agent": agent, "limit": limit},
		neo4j.EagerResultTransformer)
	if err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}

	var notes []string
	for _, record := range result.Records {
		if text, ok := record.Get("text"); ok {
			if s, ok := text.(string); ok {
				notes = append(notes, s)
			}
		}
	}
	return notes, nil
}

// Close releases the driver. Safe on a nil handle.
func (g *KnowledgeGraph) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}
