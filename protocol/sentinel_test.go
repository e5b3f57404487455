package protocol

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	s := DefaultSentinels

	t.Run("ErrorSentinelWins", func(t *testing.T) {
		out := "hello\n" + s.Result + `{"action":"move","success":true}` + "\n" + s.Error + "division by zero\n"
		outcome := s.Decode(out)
		assert.Equal(t, KindApplicationError, outcome.Kind)
		assert.Equal(t, "division by zero", outcome.Message)
		assert.Nil(t, outcome.Result)
	})

	t.Run("ErrorMessageIsEverythingAfterSentinel", func(t *testing.T) {
		outcome := s.Decode("\n" + s.Error + "  line one\nline two  \n")
		assert.Equal(t, KindApplicationError, outcome.Kind)
		assert.Equal(t, "line one\nline two", outcome.Message)
	})

	t.Run("ResultLine", func(t *testing.T) {
		outcome := s.Decode("\n" + s.Result + `{"action":"move","location":"forest_clearing","success":true}` + "\n")
		require.Equal(t, KindSuccess, outcome.Kind)
		require.NotNil(t, outcome.Result)
		assert.Equal(t, ActionMove, outcome.Result.Action)
		assert.Equal(t, "forest_clearing", outcome.Result.Location)
		assert.True(t, outcome.Result.Success)
		assert.Empty(t, outcome.Result.Output)
	})

	t.Run("PrintedTextBecomesOutput", func(t *testing.T) {
		outcome := s.Decode("Hello adventurer\n\n" + s.Result + `{"action":"continue","success":true}` + "\n")
		require.Equal(t, KindSuccess, outcome.Kind)
		assert.Equal(t, Continue("Hello adventurer"), *outcome.Result)
	})

	t.Run("ExplicitOutputIsKept", func(t *testing.T) {
		outcome := s.Decode("noise\n" + s.Result + `{"action":"continue","success":true,"output":"42"}` + "\n")
		require.Equal(t, KindSuccess, outcome.Kind)
		assert.Equal(t, "42", outcome.Result.Output)
	})

	t.Run("UnparseableResultIsMalformed", func(t *testing.T) {
		raw := "\n" + s.Result + "{not json\n"
		outcome := s.Decode(raw)
		assert.Equal(t, KindMalformedOutput, outcome.Kind)
		assert.Equal(t, raw, outcome.Raw)
		require.NotNil(t, outcome.Result)
		assert.Equal(t, ActionContinue, outcome.Result.Action)
		assert.True(t, outcome.Result.Success)
		assert.Equal(t, strings.TrimSpace(raw), outcome.Result.Output)
		assert.True(t, outcome.Succeeded())
	})

	t.Run("NoSentinelIsPermissive", func(t *testing.T) {
		outcome := s.Decode("  just some text \n")
		assert.Equal(t, KindMalformedOutput, outcome.Kind)
		assert.Equal(t, Continue("just some text"), *outcome.Result)
	})

	t.Run("SentinelMustStartLine", func(t *testing.T) {
		outcome := s.Decode("print " + s.Error + "fake\n")
		assert.Equal(t, KindMalformedOutput, outcome.Kind)
	})

	t.Run("ForeignSentinelsIgnored", func(t *testing.T) {
		nonce := NewSentinels()
		outcome := nonce.Decode(s.Result + `{"action":"collect","item":"diamond","success":true}` + "\n")
		assert.Equal(t, KindMalformedOutput, outcome.Kind)
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	records := []ActionResult{
		{Action: ActionOpenDoor, Success: true},
		{Action: ActionMove, Success: true, Location: "forest_clearing"},
		{Action: ActionCollect, Success: false, Item: "golden \"key\"\n"},
		{Action: ActionMessage, Success: true, Text: "héllo <world> & \\ friends"},
		{Action: ActionContinue, Success: true, Output: "42"},
		{Action: "custom", Success: true, Extra: map[string]any{
			"score": json.Number("12.5"),
			"tags":  []any{"a", "b"},
			"item":  json.Number("7"),
		}},
	}

	for _, sentinels := range []Sentinels{DefaultSentinels, NewSentinels()} {
		for _, r := range records {
			line, err := sentinels.Encode(r)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(line, sentinels.Result))
			assert.True(t, strings.HasSuffix(line, "\n"))

			outcome := sentinels.Decode(line)
			require.Equal(t, KindSuccess, outcome.Kind, line)
			assert.Equal(t, r, *outcome.Result)
		}
	}
}

func TestNewSentinelsAreUnique(t *testing.T) {
	a, b := NewSentinels(), NewSentinels()
	assert.NotEqual(t, a.Result, b.Result)
	assert.NotEqual(t, a.Result, a.Error)
	assert.True(t, strings.HasPrefix(a.Result, "__QUEST_RESULT_"))
	assert.True(t, strings.HasPrefix(a.Error, "__QUEST_ERROR_"))
}
