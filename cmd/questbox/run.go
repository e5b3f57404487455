package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isdmx/questbox/engine"
	"github.com/isdmx/questbox/history"
	"github.com/isdmx/questbox/logger"
	"github.com/isdmx/questbox/protocol"
	"github.com/isdmx/questbox/sandbox"
	"github.com/isdmx/questbox/validator"
)

func newRunCmd(c *cli) *cobra.Command {
	var (
		contextPairs []string
		contextFile  string
		record       bool
	)

	cmd := &cobra.Command{
		Use:   "run <file.py|->",
		Short: "Execute one program and print the outcome as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			gameCtx, err := loadContext(contextFile)
			if err != nil {
				return err
			}
			if err := parseContextPairs(contextPairs, gameCtx); err != nil {
				return err
			}

			log, err := logger.NewFromConfig(c.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			eng, closeFn, err := buildEngine(log, c, record)
			if err != nil {
				return err
			}
			defer closeFn()

			outcome, err := eng.ExecuteUserCode(cmd.Context(), engine.Request{Code: code, Context: gameCtx})
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), outcome); err != nil {
				return err
			}
			if outcome.Kind != protocol.KindSuccess {
				return fmt.Errorf("program finished with %s", outcome.Kind)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&contextPairs, "context", nil, "context entry as name=value; value is parsed as JSON when possible")
	cmd.Flags().StringVar(&contextFile, "context-json", "", "JSON file holding the context object")
	cmd.Flags().BoolVar(&record, "record", false, "store the submission in the history database")
	return cmd
}

// buildEngine wires the engine for a single CLI invocation.
func buildEngine(log *zap.Logger, c *cli, record bool) (*engine.Engine, func(), error) {
	v, err := validator.NewFromConfig(c.cfg)
	if err != nil {
		return nil, nil, err
	}
	runner, err := sandbox.NewRunner(log, c.cfg)
	if err != nil {
		return nil, nil, err
	}

	var h history.History = history.Nop{}
	if record {
		h, err = history.NewFromConfig(log, c.cfg)
		if err != nil {
			return nil, nil, err
		}
	}
	closeFn := func() {
		if err := h.Close(); err != nil {
			log.Warn("Failed to close history", zap.Error(err))
		}
	}

	return engine.NewFromConfig(log, c.cfg, v, runner, h), closeFn, nil
}

// readSource reads a program from path, or from stdin when path is "-".
func readSource(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read program: %w", err)
	}
	return string(data), nil
}

func loadContext(path string) (map[string]any, error) {
	ctx := make(map[string]any)
	if path == "" {
		return ctx, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}
	if err := decodeJSON(data, &ctx); err != nil {
		return nil, fmt.Errorf("context file %s must hold a JSON object: %w", path, err)
	}
	if ctx == nil {
		ctx = make(map[string]any)
	}
	return ctx, nil
}

// parseContextPairs adds name=value entries to dst. A value that is not
// valid JSON is kept as a plain string.
func parseContextPairs(pairs []string, dst map[string]any) error {
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return fmt.Errorf("invalid context entry %q: expected name=value", pair)
		}
		var value any
		if err := decodeJSON([]byte(raw), &value); err != nil {
			value = raw
		}
		dst[name] = value
	}
	return nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

