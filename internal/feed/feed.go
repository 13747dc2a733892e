// Package feed wraps gofeed with the lenient fetch behavior the pipeline
// expects: malformed or unreachable feeds yield zero items.
package feed

import (
	"context"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/logger"
)

const userAgent = "NewsBriefBot/1.0 (+https://newsbrief.local)"

type Parser struct {
	parser *gofeed.Parser
}

func NewParser() *Parser {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	return &Parser{parser: fp}
}

// Fetch downloads and parses one feed. Errors are logged, not returned;
// the caller sees an empty item list.
func (p *Parser) Fetch(ctx context.Context, url string) []*gofeed.Item {
	f, err := p.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		logger.Warn("failed to parse feed", "url", url, "error", err)
		return nil
	}
	logger.Info("loaded feed", "url", url, "items", len(f.Items))
	return f.Items
}
