package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexygent/flexygent/tooling"
)

// fakeEmbedding is a deterministic local embedding: cheap bag-of-letters
// frequencies, good enough for texts about different topics to separate.
func fakeEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := 1 / sqrt32(norm)
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

func sqrt32(x float32) float32 {
	// Newton's method; plenty accurate for test vectors.
	z := x
	for i := 0; i < 20; i++ {
		z = (z + x/z) / 2
	}
	return z
}

func TestSplitText(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta\n", 100)
	chunks := SplitText(text, 200, 50)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 300)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
	assert.Greater(t, len(chunks), 5)
}

func TestSplitTextEmpty(t *testing.T) {
	assert.Empty(t, SplitText("", 800, 100))
	assert.Empty(t, SplitText("\n\n  \n", 800, 100))
}

func TestSplitTextShort(t *testing.T) {
	chunks := SplitText("one paragraph only", 800, 100)
	require.Len(t, chunks, 1)
	assert.Equal(t, "one paragraph only", chunks[0])
}

func TestIndexAddAndQuery(t *testing.T) {
	ix, err := Open("", fakeEmbedding)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = ix.Add(ctx, []string{
		"zzz zzz zzz zzz",
		"aaa aaa aaa aaa",
	}, map[string]string{"source": "test"})
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Count())

	chunks, err := ix.Query(ctx, "aaa aaa", 1)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "aaa aaa aaa aaa", chunks[0].Text)
	assert.Equal(t, "test", chunks[0].Metadata["source"])
}

func TestIndexQueryClampsTopK(t *testing.T) {
	ix, err := Open("", fakeEmbedding)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = ix.Add(ctx, []string{"only one chunk"}, nil)
	require.NoError(t, err)

	chunks, err := ix.Query(ctx, "chunk", 10)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestIndexQueryEmptyIndex(t *testing.T) {
	ix, err := Open("", fakeEmbedding)
	require.NoError(t, err)
	chunks, err := ix.Query(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestManagerCachesIndexes(t *testing.T) {
	m := NewManager(fakeEmbedding)
	a, err := m.Open("")
	require.NoError(t, err)
	b, err := m.Open("")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestIndexAndQueryTools(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("bbb bbb bbb bbb"), 0o644))

	m := NewManager(fakeEmbedding)
	reg := tooling.NewRegistry()
	require.NoError(t, RegisterTools(reg, m))

	ctx := context.Background()
	indexDir := filepath.Join(dir, "index")
	out, err := reg.Execute(ctx, "rag.index", map[string]any{
		"index_dir": indexDir,
		"paths":     []any{docPath},
		"texts":     []any{"ccc ccc ccc"},
	}, nil)
	require.NoError(t, err)
	result := out.(map[string]any)
	assert.Equal(t, 2, result["added_chunks"])
	assert.Equal(t, 1, result["total_files"])

	out, err = reg.Execute(ctx, "rag.query", map[string]any{
		"index_dir": indexDir,
		"query":     "bbb",
		"top_k":     float64(1),
	}, nil)
	require.NoError(t, err)
	qresult := out.(map[string]any)
	assert.Contains(t, qresult["context"], "bbb")
}

func TestIndexToolRejectsEmptyInput(t *testing.T) {
	m := NewManager(fakeEmbedding)
	_, err := IndexTool(m).Execute(context.Background(), map[string]any{"index_dir": t.TempDir()}, nil)
	require.Error(t, err)
}
