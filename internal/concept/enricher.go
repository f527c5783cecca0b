package concept

import "context"

// Enricher calls the lexical-network service for each unique concept in a
// batch, attaching synonyms and broader/narrower terms.
type Enricher struct {
	client LexicalClient
}

// NewEnricher builds an Enricher against client.
func NewEnricher(client LexicalClient) *Enricher {
	return &Enricher{client: client}
}

// Enrich looks up lexical relations for every record and attaches them in
// place. Per-concept lookup failures leave that record unchanged; the
// batch never aborts. At the end of the batch it asks the service to flush
// its local cache.
func (e *Enricher) Enrich(ctx context.Context, records []*Record) {
	if e.client == nil {
		return
	}
	for _, r := range records {
		rel, err := e.client.Lookup(ctx, r.Name)
		if err != nil {
			continue
		}
		r.Synonyms = rel.Synonyms
		r.BroaderTerms = rel.Broader
		r.NarrowerTerms = rel.Narrower
	}
	_ = e.client.FlushCache(ctx)
}
