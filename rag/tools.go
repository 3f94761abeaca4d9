package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flexygent/flexygent/tooling"
)

const indexMaxFiles = 500

// IndexTool returns the rag.index tool: it loads raw texts and/or local
// files, chunks them, and embeds the chunks into the index at index_dir.
func IndexTool(m *Manager) tooling.Tool {
	return tooling.NewTool(tooling.Spec{
		Name:        "rag.index",
		Description: "Index texts and/or local files into a vector store for retrieval.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"index_dir": map[string]any{
				"type":        "string",
				"description": "Directory path for the local vector index.",
			},
			"texts": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Raw texts to index.",
			},
			"paths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Files or globs to load, e.g. ['docs/*.md'].",
			},
			"chunk_size": map[string]any{
				"type":        "integer",
				"minimum":     200,
				"maximum":     4000,
				"description": "Target chunk size in characters.",
			},
			"chunk_overlap": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"maximum":     1000,
				"description": "Overlap between chunks in characters.",
			},
		}, "index_dir"),
		Timeout:         2 * time.Minute,
		MaxConcurrency:  2,
		NeedsFilesystem: true,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		dir, _ := tooling.StringArg(args, "index_dir")
		chunkSize, _ := tooling.IntArg(args, "chunk_size")
		chunkOverlap := DefaultChunkOverlap
		if n, ok := tooling.IntArg(args, "chunk_overlap"); ok {
			chunkOverlap = n
		}

		var texts []string
		totalFiles := 0
		if patterns, ok := tooling.StringSliceArg(args, "paths"); ok {
			for _, pattern := range patterns {
				matches, err := filepath.Glob(pattern)
				if err != nil {
					return nil, tooling.Errorf("rag.index", "bad glob %q: %v", pattern, err)
				}
				for _, path := range matches {
					if totalFiles >= indexMaxFiles {
						break
					}
					info, err := os.Stat(path)
					if err != nil || info.IsDir() {
						continue
					}
					raw, err := os.ReadFile(path)
					if err != nil {
						continue
					}
					texts = append(texts, string(raw))
					totalFiles++
				}
			}
		}
		if raw, ok := tooling.StringSliceArg(args, "texts"); ok {
			for _, t := range raw {
				if strings.TrimSpace(t) != "" {
					texts = append(texts, t)
				}
			}
		}

		var chunks []string
		for _, t := range texts {
			chunks = append(chunks, SplitText(t, chunkSize, chunkOverlap)...)
		}
		if len(chunks) == 0 {
			return nil, tooling.Errorf("rag.index", "nothing to index")
		}

		ix, err := m.Open(dir)
		if err != nil {
			return nil, tooling.Errorf("rag.index", "open index: %v", err)
		}
		added, err := ix.Add(ctx, chunks, nil)
		if err != nil {
			return nil, tooling.Errorf("rag.index", "add chunks: %v", err)
		}
		return map[string]any{
			"added_chunks": added,
			"total_files":  totalFiles,
			"index_dir":    dir,
		}, nil
	})
}

// QueryTool returns the rag.query tool retrieving the most relevant
// chunks, plus a ready-to-prompt concatenated context string.
func QueryTool(m *Manager) tooling.Tool {
	return tooling.NewTool(tooling.Spec{
		Name:        "rag.query",
		Description: "Query a local vector index and return the most relevant chunks.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"index_dir": map[string]any{
				"type":        "string",
				"description": "Directory path to the local vector index.",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "User question or search query.",
			},
			"top_k": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     20,
				"description": "Number of chunks to retrieve.",
			},
		}, "index_dir", "query"),
		Timeout:         20 * time.Second,
		MaxConcurrency:  8,
		NeedsFilesystem: true,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		dir, _ := tooling.StringArg(args, "index_dir")
		query, _ := tooling.StringArg(args, "query")
		topK := 5
		if n, ok := tooling.IntArg(args, "top_k"); ok {
			topK = n
		}

		ix, err := m.Open(dir)
		if err != nil {
			return nil, tooling.Errorf("rag.query", "open index: %v", err)
		}
		chunks, err := ix.Query(ctx, query, topK)
		if err != nil {
			return nil, tooling.Errorf("rag.query", "query: %v", err)
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		return map[string]any{
			"query":   query,
			"top_k":   topK,
			"chunks":  chunks,
			"context": strings.Join(texts, "\n\n---\n\n"),
		}, nil
	})
}

// RegisterTools registers rag.index and rag.query on the registry.
func RegisterTools(reg *tooling.Registry, m *Manager) error {
	for _, tool := range []tooling.Tool{IndexTool(m), QueryTool(m)} {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
