package concept

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLexicalClient struct {
	fail        map[string]bool
	flushCalled bool
}

func (f *fakeLexicalClient) Lookup(ctx context.Context, name string) (Relations, error) {
	if f.fail[name] {
		return Relations{}, errors.New("lookup failed")
	}
	return Relations{Synonyms: []string{name + "-syn"}, Broader: []string{name + "-broad"}}, nil
}

func (f *fakeLexicalClient) FlushCache(ctx context.Context) error {
	f.flushCalled = true
	return nil
}

func TestEnricherAttachesRelations(t *testing.T) {
	client := &fakeLexicalClient{fail: map[string]bool{}}
	e := NewEnricher(client)

	records := []*Record{{Name: "caching"}, {Name: "latency"}}
	e.Enrich(context.Background(), records)

	require.Equal(t, []string{"caching-syn"}, records[0].Synonyms)
	require.Equal(t, []string{"latency-syn"}, records[1].Synonyms)
	require.True(t, client.flushCalled)
}

func TestEnricherTolerantOfPerConceptFailure(t *testing.T) {
	client := &fakeLexicalClient{fail: map[string]bool{"latency": true}}
	e := NewEnricher(client)

	records := []*Record{{Name: "caching"}, {Name: "latency"}}
	e.Enrich(context.Background(), records)

	require.NotEmpty(t, records[0].Synonyms)
	require.Empty(t, records[1].Synonyms)
}

func TestEnricherNilClientIsNoop(t *testing.T) {
	e := NewEnricher(nil)
	records := []*Record{{Name: "caching"}}
	require.NotPanics(t, func() { e.Enrich(context.Background(), records) })
}
