package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdmx/questbox/config"
)

func TestValidateRejectsDangerousCode(t *testing.T) {
	v := Default()

	tests := []struct {
		name string
		code string
		rule string
	}{
		{"ImportOS", "import os\nos.system('ls')", "import-system-module"},
		{"ImportInList", "import math, subprocess", "import-system-module"},
		{"ImportIndented", "if True:\n    import sys", "import-system-module"},
		{"FromImport", "from shutil import rmtree", "from-system-module"},
		{"FromSubmodule", "from os.path import join", "from-system-module"},
		{"SemicolonImport", "x = 1; import os\nos.system('id')", "import-system-module"},
		{"InlineIfImport", "if True: import subprocess", "import-system-module"},
		{"SemicolonFromImport", "move_to('a'); from os import system", "from-system-module"},
		{"InlineElseFromImport", "if x:\n    pass\nelse: from sys import exit", "from-system-module"},
		{"DunderImport", "x = __import__('os')", "dynamic-import"},
		{"Importlib", "m = importlib.import_module('os')", "dynamic-import"},
		{"Eval", "eval('1+1')", "dynamic-evaluation"},
		{"Exec", "exec ('print(1)')", "dynamic-evaluation"},
		{"Compile", "c = compile('x', 'f', 'exec')", "dynamic-evaluation"},
		{"Open", "data = open('/etc/passwd').read()", "file-access"},
		{"Input", "name = input('who?')", "interactive-input"},
		{"Subclasses", "().__class__.__bases__[0].__subclasses__()", "interpreter-introspection"},
		{"Builtins", "__builtins__['eval']", "interpreter-introspection"},
		{"Getattr", "getattr(move_to, 'x')", "namespace-access"},
		{"Globals", "g = globals()", "namespace-access"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.code)
			assert.False(t, res.Valid)
			assert.NotEmpty(t, res.Error)
			require.NotEmpty(t, res.Findings)
			assert.True(t, HasCritical(res.Findings))

			var rules []string
			for _, f := range res.Findings {
				rules = append(rules, f.Rule)
			}
			assert.Contains(t, rules, tt.rule)
		})
	}
}

func TestValidateErrorNamesLine(t *testing.T) {
	res := Default().Validate("move_to('cave')\nimport os\n")
	require.False(t, res.Valid)
	assert.Equal(t, "Line 2: Importing system modules is not allowed.", res.Error)
	assert.Equal(t, 2, res.Findings[0].Line)
	assert.Equal(t, "import os", res.Findings[0].Content)
}

func TestValidateAcceptsGameCode(t *testing.T) {
	v := Default()

	t.Run("WithConditional", func(t *testing.T) {
		res := v.Validate("if 'lamp' in inventory:\n    open_door()\nelse:\n    collect_item('lamp')\n")
		assert.True(t, res.Valid)
		assert.Empty(t, res.Error)
		assert.Empty(t, res.Warning)
		assert.Empty(t, res.Findings)
	})

	t.Run("WithoutConditionalWarns", func(t *testing.T) {
		res := v.Validate("move_to('forest_path')\n")
		assert.True(t, res.Valid)
		assert.Equal(t, ConditionalHint, res.Warning)
	})

	t.Run("PrimitiveNamesAreNotFlagged", func(t *testing.T) {
		res := v.Validate("if True:\n    open_door()\n    show_message('opened')\n")
		assert.True(t, res.Valid)
		assert.Empty(t, res.Findings)
	})

	t.Run("SafeImports", func(t *testing.T) {
		res := v.Validate("import math\nimport random\nif random.random() > 0.5:\n    move_to('cave')\n")
		assert.True(t, res.Valid)
	})
}

func TestValidateSizeAndEmpty(t *testing.T) {
	v := New(DefaultRules(), 16)

	res := v.Validate("   \n")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "empty")

	res = v.Validate(strings.Repeat("x", 17))
	assert.False(t, res.Valid)
	assert.Contains(t, res.Error, "too long")

	res = New(DefaultRules(), 0).Validate(strings.Repeat("x = 1\n", 100000) + "if x: pass")
	assert.True(t, res.Valid)
}

func TestLoadRules(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		rules, err := LoadRules(strings.NewReader(`
rules:
  - name: no-while-true
    severity: warn
    pattern: 'while\s+True'
    message: "loops that never stop will time out"
  - name: no-lambda
    pattern: '\blambda\b'
`))
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, SeverityWarn, rules[0].Severity)
		assert.Equal(t, SeverityCritical, rules[1].Severity)
		assert.Equal(t, "this is not allowed", rules[1].Message)

		v := New(append(DefaultRules(), rules...), 0)

		res := v.Validate("while True:\n    if x:\n        break\n")
		assert.True(t, res.Valid)
		assert.Equal(t, "Line 1: Loops that never stop will time out.", res.Warning)

		res = v.Validate("f = lambda: 1")
		assert.False(t, res.Valid)
	})

	t.Run("Empty", func(t *testing.T) {
		rules, err := LoadRules(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, rules)
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := map[string]string{
			"missing name":     "rules:\n  - pattern: x\n",
			"missing pattern":  "rules:\n  - name: a\n",
			"bad severity":     "rules:\n  - name: a\n    pattern: x\n    severity: fatal\n",
			"bad regexp":       "rules:\n  - name: a\n    pattern: '('\n",
			"not yaml mapping": "- just\n- a list\n",
		}
		for name, doc := range cases {
			_, err := LoadRules(strings.NewReader(doc))
			assert.Error(t, err, name)
		}
	})
}

func TestNewFromConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - name: no-print\n    pattern: '\\bprint\\('\n"), 0o600))

	cfg := &config.Config{Validator: config.ValidatorConfig{RulesFile: path, MaxSourceBytes: 1024}}
	v, err := NewFromConfig(cfg)
	require.NoError(t, err)

	res := v.Validate("if True:\n    print('hi')\n")
	assert.False(t, res.Valid)

	cfg.Validator.RulesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)
}
