package quill

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEngine_CompileString(t *testing.T) {
	compiled := compileTest(t, "{block header}Hi {$name}{/block}")
	assert.Equal(t, "test", compiled.Name)
	assert.Equal(t, "{block header}Hi {$name}{/block}", compiled.Source)
	assert.Equal(t, []string{"header"}, compiled.Blocks)
	assert.NotNil(t, compiled.Root.Head)
	assert.True(t, compiled.Tables.Tags.Frozen())

	t.Run("lexer error", func(t *testing.T) {
		err := compileErr(t, "{if $a")
		requireCustomError(t, err)
	})
}

func TestEngine_AddExtension(t *testing.T) {
	engine := MustNew()
	_, err := engine.CompileString("test", "{hello}")
	require.Error(t, err)

	engine.AddExtension(&testExtension{tags: NewTable[TagHandler]().Set("hello", SimpleTag(func(tag *Tag, _ *Parser) (Node, error) {
		return &TextNode{Position: tag.Position, Content: "hello"}, nil
	}))})
	compiled, err := engine.CompileString("test", "{hello}")
	require.NoError(t, err)
	assert.Equal(t, "hello", mainChildren(compiled)[0].(*TextNode).Content)
	assert.Len(t, engine.Registry().Extensions(), 2)
}

func TestEngine_Compile(t *testing.T) {
	loader := NewMapLoader(map[string]string{"page": "{$a}"})
	engine := MustNew(WithLoader(loader))

	first, err := engine.Compile("page")
	require.NoError(t, err)
	second, err := engine.Compile("page")
	require.NoError(t, err)
	assert.Same(t, first, second)

	t.Run("invalidate recompiles", func(t *testing.T) {
		loader.Set("page", "{$b}")
		engine.Invalidate("page")
		third, err := engine.Compile("page")
		require.NoError(t, err)
		assert.NotSame(t, first, third)
		assert.Equal(t, "{$b}", third.Source)
	})

	t.Run("missing template", func(t *testing.T) {
		_, err := engine.Compile("nope")
		require.Error(t, err)
		requireMeta(t, err, MetaKeyTemplate, "nope")
	})

	t.Run("no loader", func(t *testing.T) {
		_, err := MustNew().Compile("page")
		require.Error(t, err)
	})

	t.Run("failed compile is not cached", func(t *testing.T) {
		loader.Set("broken", "{if}")
		_, err := engine.Compile("broken")
		require.Error(t, err)
		loader.Set("broken", "{if $a}x{/if}")
		_, err = engine.Compile("broken")
		require.NoError(t, err)
	})
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "parts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parts", "menu.tpl"), []byte("{$items}"), 0o644))
	loader := NewFileLoader(dir)

	source, err := loader.Load("parts/menu.tpl")
	require.NoError(t, err)
	assert.Equal(t, "{$items}", source)

	t.Run("names cannot escape the root", func(t *testing.T) {
		path, err := loader.Path("../../etc/passwd")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "etc", "passwd"), path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load("missing.tpl")
		require.Error(t, err)
		requireMeta(t, err, MetaKeyTemplate, "missing.tpl")
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := loader.Path("")
		require.Error(t, err)
	})
}

func TestEngine_AutoRefresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.tpl")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))

	engine := MustNew(WithLoader(NewFileLoader(dir)), WithAutoRefresh(true))
	t.Cleanup(func() { engine.Close() })

	first, err := engine.Compile("page.tpl")
	require.NoError(t, err)
	assert.Equal(t, "one", first.Source)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o644))
	require.Eventually(t, func() bool {
		compiled, err := engine.Compile("page.tpl")
		return err == nil && compiled.Source == "two"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestEngine_Generate(t *testing.T) {
	engine := MustNew()
	compiled, err := engine.CompileString("page", "{templatePrint Params}{block header}{$title|upper}{/block}")
	require.NoError(t, err)

	out, err := engine.Generate(context.Background(), compiled)
	require.NoError(t, err)

	var doc struct {
		Name   string         `yaml:"name"`
		Blocks []string       `yaml:"blocks"`
		Tree   map[string]any `yaml:"tree"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "page", doc.Name)
	assert.Equal(t, []string{"header"}, doc.Blocks)
	assert.Equal(t, KindTemplate, doc.Tree["kind"])

	head := doc.Tree["head"].(map[string]any)
	children := head["children"].([]any)
	require.Len(t, children, 1)
	assert.Equal(t, KindTemplatePrint, children[0].(map[string]any)["kind"])
	assert.Equal(t, "Params", children[0].(map[string]any)["typeName"])

	t.Run("generation is deterministic", func(t *testing.T) {
		again, err := engine.Generate(context.Background(), compiled)
		require.NoError(t, err)
		assert.Equal(t, string(out), string(again))
	})
}

func TestEngine_Linter(t *testing.T) {
	compiled := compileTest(t, "{$a}")

	t.Run("accepting linter", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "lint")
		engine := MustNew(WithLinter("sh", "-c", `grep -q "kind: print" "$0"`), WithTempDirectory(dir))
		_, err := engine.Generate(context.Background(), compiled)
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "lint input must be removed")
	})

	t.Run("rejecting linter", func(t *testing.T) {
		engine := MustNew(WithLinter("sh", "-c", `echo bad output; exit 1`), WithTempDirectory(t.TempDir()))
		_, err := engine.Generate(context.Background(), compiled)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgLintFailed)
		requireMeta(t, err, MetaKeyCommand, "sh -c echo bad output; exit 1")
		requireMeta(t, err, MetaKeyOutput, "bad output\n")
	})
}

func TestInstance(t *testing.T) {
	engine := MustNew()
	compiled, err := engine.CompileString("page", "{block header}x{/block}")
	require.NoError(t, err)

	t.Run("blocks are per instance", func(t *testing.T) {
		one := engine.NewInstance(compiled, nil)
		two := engine.NewInstance(compiled, nil)
		one.AddBlock("extra")
		assert.True(t, one.HasBlock("extra"))
		assert.False(t, two.HasBlock("extra"))
		assert.True(t, two.HasBlock("header"))

		var none *Instance
		assert.False(t, none.HasBlock("header"))
	})

	t.Run("params are copied", func(t *testing.T) {
		params := map[string]any{"a": 1}
		inst := engine.NewInstance(compiled, params)
		params["a"] = 2
		v, ok := inst.Param("a")
		require.True(t, ok)
		assert.Equal(t, 1, v)

		inst.Params()["a"] = 3
		v, _ = inst.Param("a")
		assert.Equal(t, 1, v)
	})

	t.Run("state", func(t *testing.T) {
		inst := engine.NewInstance(compiled, nil)
		_, ok := inst.State("k")
		assert.False(t, ok)
		inst.SetState("k", "v")
		v, ok := inst.State("k")
		require.True(t, ok)
		assert.Equal(t, "v", v)
		assert.Same(t, compiled, inst.Compiled())
		assert.Equal(t, "page", inst.Name())
	})
}

func TestInstance_Evaluate(t *testing.T) {
	ext := &testExtension{functions: NewTable[Callable]().Set("shout", shout("!"))}
	engine := MustNew(WithExtensions(ext))
	compiled, err := engine.CompileString("page", "{block header}{/block}{if hasBlock('header') && $flag}{$a + 1}{/if}{= shout($name)}{$missing}{$x|truncate:$n}")
	require.NoError(t, err)
	inst := engine.NewInstance(compiled, map[string]any{"flag": true, "a": 2, "name": "hi", "x": "Hi there you", "n": 9})

	children := mainChildren(compiled)
	ifNode := children[1].(*IfNode)

	cond, err := inst.Evaluate(ifNode.Branches[0].Condition)
	require.NoError(t, err)
	assert.Equal(t, true, cond)

	sum, err := inst.Evaluate(ifNode.Branches[0].Body.Children[0].(*PrintNode).Expression)
	require.NoError(t, err)
	assert.Equal(t, 3, sum)

	shouted, err := inst.Evaluate(children[2].(*PrintNode).Expression)
	require.NoError(t, err)
	assert.Equal(t, "hi!", shouted)

	missing, err := inst.Evaluate(children[3].(*PrintNode).Expression)
	require.NoError(t, err)
	assert.Nil(t, missing)

	t.Run("filters with evaluated arguments", func(t *testing.T) {
		print := children[4].(*PrintNode)
		value, err := inst.Evaluate(print.Expression)
		require.NoError(t, err)
		out, err := inst.ApplyFilters(value, print.Filters)
		require.NoError(t, err)
		assert.Equal(t, "Hi there…", out)
	})

	t.Run("string literal", func(t *testing.T) {
		v, err := inst.Evaluate(&StringNode{Value: "lit"})
		require.NoError(t, err)
		assert.Equal(t, "lit", v)
	})

	t.Run("strict types reject undefined variables", func(t *testing.T) {
		engine := MustNew(WithStrictTypes(true))
		compiled, err := engine.CompileString("page", "{$missing}")
		require.NoError(t, err)
		_, err = engine.NewInstance(compiled, nil).Evaluate(mainChildren(compiled)[0].(*PrintNode).Expression)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgEvaluateFailed)
	})

	t.Run("function errors propagate", func(t *testing.T) {
		compiled, err := engine.CompileString("page", "{= divisibleBy(1, 0)}")
		require.NoError(t, err)
		_, err = engine.NewInstance(compiled, nil).Evaluate(mainChildren(compiled)[0].(*PrintNode).Expression)
		require.Error(t, err)
	})
}
