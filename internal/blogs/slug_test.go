package blogs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-cms/meridian-cms/internal/blogs"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":            "hello-world",
		"  Multiple   Spaces  ":    "multiple-spaces",
		"Crème Brûlée Recipes":     "creme-brulee-recipes",
		"100% Legit: Q&A (2024)":   "100-legit-q-a-2024",
		"already-slugged-title":    "already-slugged-title",
		"UPPER and lower MiXeD":    "upper-and-lower-mixed",
		"---leading and trailing—": "leading-and-trailing",
	}
	for input, want := range cases {
		require.Equal(t, want, blogs.Slugify(input), "input %q", input)
	}
}

func TestSlugifyEmpty(t *testing.T) {
	require.Empty(t, blogs.Slugify(""))
	require.Empty(t, blogs.Slugify("!!!"))
}
