package concept

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Synonym/broader/narrower caps.
const (
	MaxSynonyms = 5
	MaxBroader  = 3
	MaxNarrower = 5
)

// LexicalClient looks up synonym/hypernym/hyponym relations for a concept
// name from an external lexical-network service (e.g. a WordNet-backed
// API). Modeled as a plain HTTP client talking to a local service, the
// same pattern internal/embed uses for its Ollama-backed calls.
type LexicalClient interface {
	Lookup(ctx context.Context, name string) (Relations, error)
	// FlushCache asks the service to drop its local cache. The enricher
	// calls this once at the end of each enrichment batch.
	FlushCache(ctx context.Context) error
}

// Relations holds one concept's lexical-network neighbors.
type Relations struct {
	Synonyms []string
	Broader  []string
	Narrower []string
}

// HTTPLexicalClient calls a REST lexical-network service over HTTP.
type HTTPLexicalClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPLexicalClient builds a client against baseURL (e.g.
// "http://localhost:8090"), with timeout Twn applied per request.
func NewHTTPLexicalClient(baseURL string, timeout time.Duration) *HTTPLexicalClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPLexicalClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

type lexicalLookupResponse struct {
	Synonyms []string `json:"synonyms"`
	Broader  []string `json:"broader"`
	Narrower []string `json:"narrower"`
}

// Lookup queries GET {baseURL}/lookup?term=name and caps each relation list
// to the configured maximums.
func (c *HTTPLexicalClient) Lookup(ctx context.Context, name string) (Relations, error) {
	url := fmt.Sprintf("%s/lookup?term=%s", c.baseURL, strings.ReplaceAll(name, " ", "+"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Relations{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Relations{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Relations{}, fmt.Errorf("lexical service returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out lexicalLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Relations{}, err
	}

	return Relations{
		Synonyms: capList(out.Synonyms, MaxSynonyms),
		Broader:  capList(out.Broader, MaxBroader),
		Narrower: capList(out.Narrower, MaxNarrower),
	}, nil
}

func capList(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

// FlushCache calls POST {baseURL}/cache/flush, asking the lexical service
// to drop its local cache. Spec §4.5 requires the enricher to trigger this
// at the end of each batch.
func (c *HTTPLexicalClient) FlushCache(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cache/flush", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("lexical service cache flush returned %d", resp.StatusCode)
	}
	return nil
}
