package download

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMirrors_PickSkipsBad(t *testing.T) {
	m := NewMirrors([]string{"https://a.example/repo", "https://b.example/repo"})
	m.MarkBad("https://a.example/repo")

	picked, ok := m.Pick(context.Background())
	require.True(t, ok)
	require.Equal(t, "https://b.example/repo", picked)
}

func TestMirrors_PickReturnsFalseWhenAllBad(t *testing.T) {
	m := NewMirrors([]string{"https://a.example/repo"})
	m.MarkBad("https://a.example/repo")

	_, ok := m.Pick(context.Background())
	require.False(t, ok)
}

func TestMirrors_ResetClearsBadFlags(t *testing.T) {
	m := NewMirrors([]string{"https://a.example/repo"})
	m.MarkBad("https://a.example/repo")
	m.Reset()

	picked, ok := m.Pick(context.Background())
	require.True(t, ok)
	require.Equal(t, "https://a.example/repo", picked)
}

func TestMirrors_DedupesConstructorInput(t *testing.T) {
	m := NewMirrors([]string{"https://a.example/repo", "https://a.example/repo", "", "  "})
	require.Len(t, m.urls, 1)
}

func TestJoinURL(t *testing.T) {
	require.Equal(t, "https://a.example/repo/Packages/foo.rpm", JoinURL("https://a.example/repo", "Packages/foo.rpm"))
	require.Equal(t, "https://a.example/repo/Packages/foo.rpm", JoinURL("https://a.example/repo/", "Packages/foo.rpm"))
}
