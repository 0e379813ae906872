package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeModelObject(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"plain json", `{"a":1}`},
		{"fenced json", "```json\n{\"a\":1}\n```"},
		{"generic fence", "```\n{\"a\":1}\n```"},
		{"embedded in prose", `Sure! Here is your JSON: {"a":1} Hope that helps.`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]int
			require.NoError(t, DecodeModelObject(tc.raw, &got))
			assert.Equal(t, map[string]int{"a": 1}, got)
		})
	}
}

func TestDecodeModelObjectGarbage(t *testing.T) {
	var got map[string]any
	err := DecodeModelObject("not json at all", &got)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "not json at all", perr.RawText)
	assert.Error(t, perr.Unwrap())
}

func TestDecodeModelObjectParseFailureLeavesTargetUntouched(t *testing.T) {
	type summary struct {
		Title string `json:"title"`
	}

	got := summary{Title: "before"}
	err := DecodeModelObject(`here is {"title": "partial", broken`, &got)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "before", got.Title)
}

func TestDecodeModelObjectWrongShape(t *testing.T) {
	var got map[string]any
	err := DecodeModelObject(`[1, 2, 3]`, &got)
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestDecodeModelArray(t *testing.T) {
	type card struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}

	t.Run("plain array", func(t *testing.T) {
		var got []card
		require.NoError(t, DecodeModelArray(`[{"question":"q","answer":"a"}]`, &got))
		require.Len(t, got, 1)
		assert.Equal(t, "q", got[0].Question)
	})

	t.Run("fenced array", func(t *testing.T) {
		var got []card
		require.NoError(t, DecodeModelArray("```json\n[{\"question\":\"q\",\"answer\":\"a\"}]\n```", &got))
		require.Len(t, got, 1)
	})

	t.Run("object instead of array", func(t *testing.T) {
		var got []card
		err := DecodeModelArray(`{"question":"q"}`, &got)
		require.ErrorIs(t, err, ErrInvalidShape)
	})

	t.Run("garbage", func(t *testing.T) {
		var got []card
		err := DecodeModelArray("nope", &got)
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
	})
}
