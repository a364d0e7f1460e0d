package normalize

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_StripsTrackingAndFragment(t *testing.T) {
	got, err := Normalize("https://Example.COM/path/?utm_source=x&id=1#top", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path?id=1", got)
}

func TestNormalize_UpgradesHTTPExceptLocalhost(t *testing.T) {
	got, err := Normalize("http://example.com/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", got)

	got, err = Normalize("http://localhost:3000/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/a", got)
}

func TestNormalize_ResolvesRelativeAgainstBase(t *testing.T) {
	base, err := url.Parse("https://example.com/dir/page")
	require.NoError(t, err)

	got, err := Normalize("../other?b=2&a=1", base)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/other?a=1&b=2", got)
}

func TestNormalize_FailsOnRelativeWithoutBase(t *testing.T) {
	_, err := Normalize("/relative/path", nil)
	assert.Error(t, err)
}

func TestNormalize_RootPathHasNoTrailingSlash(t *testing.T) {
	got, err := Normalize("https://example.com/", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)
}

func TestNormalize_IsIdempotent(t *testing.T) {
	inputs := []string{
		"https://Example.COM/path/?utm_source=x&id=1#top",
		"http://example.com/a/b/",
		"https://example.com/?z=1&a=2",
	}
	for _, in := range inputs {
		once, err := Normalize(in, nil)
		require.NoError(t, err)
		twice, err := Normalize(once, nil)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", in)
	}
}

func TestIsInternal(t *testing.T) {
	assert.True(t, IsInternal("https://example.com/a", "example.com", false))
	assert.False(t, IsInternal("https://sub.example.com/a", "example.com", false))
	assert.True(t, IsInternal("https://sub.example.com/a", "example.com", true))
	assert.False(t, IsInternal("https://other.com/a", "example.com", true))
}

func TestIsNavigational(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://example.com/about", true},
		{"https://example.com/logo.png", false},
		{"https://example.com/app.js", false},
		{"https://example.com/api/users", false},
		{"https://example.com/graphql", false},
		{"https://example.com/_next/static/chunk.js", false},
		{"https://example.com/docs/guide", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsNavigational(c.url), c.url)
	}
}
