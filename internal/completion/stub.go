package completion

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// StubClient is a deterministic offline collaborator. It echoes the stage
// instructions into a short canned narrative, so pipelines run without a
// hosted completion service and tests stay reproducible.
type StubClient struct{}

func NewStubClient() *StubClient {
	return &StubClient{}
}

func (s *StubClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	subject := "the application"
	if len(req.Messages) > 0 {
		subject = truncate(req.Messages[len(req.Messages)-1].Content, 80)
	}

	headline := req.Instructions
	if idx := strings.IndexByte(headline, '\n'); idx > 0 {
		headline = headline[:idx]
	}

	return &Response{
		Text: fmt.Sprintf("%s Reviewed %s against the supplied facts and calculator outputs.", headline, subject),
	}, nil
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
