package completion

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubClient_EchoesInstructionHeadline(t *testing.T) {
	client := NewStubClient()

	resp, err := client.Complete(context.Background(), &Request{
		Instructions: "Summarise the underwriting outcome.\nKeep it short.",
		Messages:     []Message{{Role: "user", Content: "Decision APPROVED at 8.5 percent."}},
	})
	require.NoError(t, err)

	assert.Contains(t, resp.Text, "Summarise the underwriting outcome.")
	assert.Contains(t, resp.Text, "Decision APPROVED at 8.5 percent.")
}

func TestStubClient_TruncatesOnRuneBoundary(t *testing.T) {
	client := NewStubClient()

	// 78 ASCII bytes followed by a three-byte rune that straddles the
	// 80-byte cutoff.
	content := strings.Repeat("a", 78) + "₹50000"
	resp, err := client.Complete(context.Background(), &Request{
		Instructions: "Narrate the stage.",
		Messages:     []Message{{Role: "user", Content: content}},
	})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(resp.Text))
	assert.NotContains(t, resp.Text, string(utf8.RuneError))
}

func TestStubClient_HonoursCancelledContext(t *testing.T) {
	client := NewStubClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, &Request{Instructions: "Narrate the stage."})
	require.ErrorIs(t, err, context.Canceled)
}
