package llm

import "fmt"

// extractionPromptTemplate is the formal concept-extraction prompt. Only its
// output schema is a contract; wording is a configuration artifact and may
// be tuned freely.
const extractionPromptTemplate = `You are analyzing a document to extract its conceptual structure.

Document:
%s

Read the document and identify:
- primary_concepts: the themes and recurring subject matter the document centers on
- technical_terms: named artifacts, tools, or terminology it introduces or relies on
- related_concepts: adjacent topics it references but does not center on
- categories: high-level groupings this document belongs to

Each list is ordered, lowercase, deduplicated, and made of short phrases (five words or fewer).

Respond with strict JSON only, no prose, matching exactly:
{"primary_concepts": [], "technical_terms": [], "related_concepts": [], "categories": []}`

func buildExtractionPrompt(section string) string {
	return fmt.Sprintf(extractionPromptTemplate, section)
}
