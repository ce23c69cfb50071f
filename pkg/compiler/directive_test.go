package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirective(t *testing.T) {
	tests := []struct {
		attr string
		ok   bool
		kind DirectiveKind
		arg  string
	}{
		{"v-text", true, KindText, ""},
		{"v-html", true, KindHTML, ""},
		{"v-model", true, KindModel, ""},
		{"v-on:click", true, KindOn, "click"},
		{"@input", true, KindOn, "input"},
		{"v-bind:href", true, KindBind, "href"},
		{"v-bind", true, KindUnknown, ""},
		{"v-on", true, KindUnknown, ""},
		{"@", true, KindUnknown, ""},
		{"v-foo", true, KindUnknown, ""},
		{"class", false, KindUnknown, ""},
		{"data-v-x", false, KindUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.attr, func(t *testing.T) {
			d, ok := ParseDirective(tt.attr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.arg, d.Arg)
			assert.Equal(t, tt.attr, d.Name)
		})
	}
}

func TestDirectiveKindString(t *testing.T) {
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "bind", KindBind.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}

func TestInterpolate(t *testing.T) {
	assert.True(t, HasInterpolation("x {{a}}"))
	assert.False(t, HasInterpolation("x {a}"))
	assert.Equal(t, []string{"a", "b.c"}, Expressions("{{a}} - {{ b.c }}"))

	out, err := Interpolate("{{a}}+{{ b }}", func(expr string) (string, error) {
		return "<" + expr + ">", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "<a>+<b>", out)

	boom := errors.New("boom")
	_, err = Interpolate("{{a}}", func(string) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}
