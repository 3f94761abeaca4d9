package builtin

import (
	"context"
	"errors"
	"time"

	"github.com/flexygent/flexygent/memstore"
	"github.com/flexygent/flexygent/tooling"
)

// MemoryGet returns the memory.get tool reading from store.
func MemoryGet(store memstore.Store) tooling.Tool {
	return tooling.NewTool(tooling.Spec{
		Name:        "memory.get",
		Description: "Read a value from persistent memory by key.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "Key to look up.",
			},
		}, "key"),
		Timeout: 5 * time.Second,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		key, _ := tooling.StringArg(args, "key")
		value, err := store.Get(key)
		if errors.Is(err, memstore.ErrNotFound) {
			return map[string]any{"key": key, "found": false}, nil
		}
		if err != nil {
			return nil, tooling.Errorf("memory.get", "read %q: %v", key, err)
		}
		return map[string]any{"key": key, "found": true, "value": value}, nil
	})
}

// MemorySet returns the memory.set tool writing to store.
func MemorySet(store memstore.Store) tooling.Tool {
	return tooling.NewTool(tooling.Spec{
		Name:        "memory.set",
		Description: "Write a value into persistent memory under a key.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "Key to write under.",
			},
			"value": map[string]any{
				"type":        "string",
				"description": "Value to store.",
			},
		}, "key", "value"),
		Timeout: 5 * time.Second,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		key, _ := tooling.StringArg(args, "key")
		value, _ := tooling.StringArg(args, "value")
		if err := store.Set(key, value); err != nil {
			return nil, tooling.Errorf("memory.set", "write %q: %v", key, err)
		}
		return map[string]any{"key": key, "stored": true}, nil
	})
}

// MemoryKeys returns the memory.keys tool listing keys by prefix.
func MemoryKeys(store memstore.Store) tooling.Tool {
	return tooling.NewTool(tooling.Spec{
		Name:        "memory.keys",
		Description: "List memory keys, optionally filtered by prefix.",
		Parameters: tooling.ObjectSchema(map[string]any{
			"prefix": map[string]any{
				"type":        "string",
				"description": "Only return keys starting with this prefix.",
			},
		}),
		Timeout: 5 * time.Second,
	}, func(ctx context.Context, args, meta map[string]any) (any, error) {
		prefix, _ := tooling.StringArg(args, "prefix")
		keys, err := store.Keys(prefix)
		if err != nil {
			return nil, tooling.Errorf("memory.keys", "list: %v", err)
		}
		return map[string]any{"keys": keys, "count": len(keys)}, nil
	})
}

// RegisterMemory registers the memory tools backed by store.
func RegisterMemory(reg *tooling.Registry, store memstore.Store) error {
	for _, tool := range []tooling.Tool{MemoryGet(store), MemorySet(store), MemoryKeys(store)} {
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
