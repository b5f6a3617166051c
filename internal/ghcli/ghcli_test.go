package ghcli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featdeck/internal/logging"
)

func TestAvailable(t *testing.T) {
	c := NewClient(logging.Discard())

	c.LookPath = func(string) (string, error) { return "/usr/bin/gh", nil }
	assert.True(t, c.Available())

	c.LookPath = func(string) (string, error) { return "", fmt.Errorf("not found") }
	assert.False(t, c.Available())
}

func TestListOpenPRs(t *testing.T) {
	c := NewClient(logging.Discard())
	c.Run = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		assert.Equal(t, "/proj", dir)
		assert.Contains(t, args, "pr")
		return []byte(`[
			{"number": 5, "title": "Add thing", "url": "https://example.com/5", "state": "OPEN", "headRefName": "feat-thing", "createdAt": "2026-02-01T09:00:00Z"}
		]`), nil
	}

	prs, err := c.ListOpenPRs(context.Background(), "/proj")
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 5, prs[0].Number)
	assert.Equal(t, "feat-thing", prs[0].HeadRefName)
	assert.Equal(t, "OPEN", prs[0].State)
}

func TestListOpenPRs_EmptyOutput(t *testing.T) {
	c := NewClient(logging.Discard())
	c.Run = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		return []byte("[]"), nil
	}

	prs, err := c.ListOpenPRs(context.Background(), "/proj")
	require.NoError(t, err)
	assert.Empty(t, prs)
}

func TestListOpenPRs_CommandFailure(t *testing.T) {
	c := NewClient(logging.Discard())
	c.Run = func(ctx context.Context, dir string, args ...string) ([]byte, error) {
		return nil, fmt.Errorf("no git remotes found")
	}

	_, err := c.ListOpenPRs(context.Background(), "/proj")
	assert.Error(t, err)
}
