// Package tooling defines the tool capability model and the tool directory.
//
// A Tool is a named unit of work with a JSON-Schema-described input, a
// declared timeout, and a concurrency limit. The Registry is the directory
// mapping names to tools; its Execute method is the capability boundary
// where input validation, concurrency limiting, and timeouts are enforced,
// so the orchestration layer above and the tool implementations below both
// stay free of that plumbing.
package tooling
