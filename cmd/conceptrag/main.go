// Command conceptrag is a thin CLI shell for manually ingesting a corpus
// and exercising the five public search operations available here. It
// contains no domain logic: everything below it is the library surface in
// internal/.
package main

import (
	"os"

	"github.com/concept-rag/conceptrag/cmd/conceptrag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
