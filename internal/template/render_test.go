package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	t.Run("substitutes top-level reference", func(t *testing.T) {
		out := r.Render("size is {{ size }}", Context{"size": 8})
		assert.Equal(t, "size is 8", out)
	})

	t.Run("substitutes dotted reference", func(t *testing.T) {
		ctx := Context{"extra_args": map[string]interface{}{"partition": "dev-g"}}
		out := r.Render("--partition {{ extra_args.partition }}", ctx)
		assert.Equal(t, "--partition dev-g", out)
	})

	t.Run("resolves through string maps", func(t *testing.T) {
		ctx := Context{"snippet": map[string]string{"script": "echo hi"}}
		out := r.Render("{{ snippet.script }}", ctx)
		assert.Equal(t, "echo hi", out)
	})

	t.Run("keeps unresolved reference literal", func(t *testing.T) {
		out := r.Render("{{ a.b }}", Context{"size": 1})
		assert.Equal(t, "{{ a.b }}", out)
	})

	t.Run("keeps reference with missing leaf literal", func(t *testing.T) {
		ctx := Context{"a": map[string]interface{}{"c": 1}}
		out := r.Render("{{ a.b }}", ctx)
		assert.Equal(t, "{{ a.b }}", out)
	})

	t.Run("never substitutes empty string for unresolved", func(t *testing.T) {
		out := r.Render("x{{ missing }}y", Context{})
		assert.Equal(t, "x{{ missing }}y", out)
	})

	t.Run("normalizes whitespace inside braces when keeping", func(t *testing.T) {
		out := r.Render("{{   missing  }}", Context{})
		assert.Equal(t, "{{ missing }}", out)
	})

	t.Run("is idempotent on a complete context", func(t *testing.T) {
		ctx := Context{"n": 2, "m": "x"}
		once := r.Render("{{ n }}-{{ m }}", ctx)
		twice := r.Render(once, ctx)
		assert.Equal(t, once, twice)
	})

	t.Run("unresolved output round-trips through rendering", func(t *testing.T) {
		out := r.Render("{{ a.b }}", Context{})
		again := r.Render(out, Context{})
		assert.Equal(t, "{{ a.b }}", again)
	})

	t.Run("renders multiple references in one string", func(t *testing.T) {
		ctx := Context{"size": 4, "mode": "fast"}
		out := r.Render("-s {{ size }} -m {{ mode }}", ctx)
		assert.Equal(t, "-s 4 -m fast", out)
	})
}

func TestRenderAll(t *testing.T) {
	r := NewRenderer()

	t.Run("nil context returns input unchanged", func(t *testing.T) {
		in := []string{"{{ a }}", "plain"}
		out := r.RenderAll(in, nil)
		assert.Equal(t, in, out)
	})

	t.Run("preserves length and order", func(t *testing.T) {
		ctx := Context{"a": 1, "b": 2}
		out := r.RenderAll([]string{"{{ b }}", "{{ a }}", "c"}, ctx)
		require.Len(t, out, 3)
		assert.Equal(t, []string{"2", "1", "c"}, out)
	})
}

func TestUndefinedStrategy(t *testing.T) {
	t.Run("custom strategy replaces default", func(t *testing.T) {
		r := NewRenderer()
		r.Undefined = func(name string) string { return "<" + name + ">" }
		out := r.Render("{{ gone }}", Context{})
		assert.Equal(t, "<gone>", out)
	})

	t.Run("nil strategy keeps references literal", func(t *testing.T) {
		r := &Renderer{}
		out := r.Render("{{ gone }}", Context{})
		assert.Equal(t, "{{ gone }}", out)
	})
}
