package orchestrator

import (
	"context"

	"github.com/concept-rag/conceptrag/internal/concept"
	"github.com/concept-rag/conceptrag/internal/query"
)

// lexicalAdapter bridges internal/concept's LexicalClient (name ->
// Relations) onto query.LexicalExpander's narrower, term-only contract:
// the Query Expander only ever looks up single original query terms, never
// whole concept phrases, and has no use for narrower terms.
type lexicalAdapter struct {
	client concept.LexicalClient
}

// NewLexicalExpander adapts client to query.LexicalExpander. Returns a true
// nil interface when client is nil (rather than a non-nil interface over a
// nil *lexicalAdapter), so callers can pass a possibly-absent lexical
// service straight through to orchestrator.New and have the expander's own
// nil check work correctly.
func NewLexicalExpander(client concept.LexicalClient) query.LexicalExpander {
	if client == nil {
		return nil
	}
	return &lexicalAdapter{client: client}
}

func (a *lexicalAdapter) Expand(ctx context.Context, term string) ([]string, []string, error) {
	rel, err := a.client.Lookup(ctx, term)
	if err != nil {
		return nil, nil, err
	}
	return rel.Synonyms, rel.Broader, nil
}
