package main

import (
	"fmt"
	"log"
	"os"

	"github.com/aleksaelezovic/rdfsyntax/internal/quadstore"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax"
	"github.com/aleksaelezovic/rdfsyntax/pkg/syntax/nquads"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: rdfsyntax <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  parse <file> [base]        - Parse a document and print its quads")
		fmt.Println("  check <file>               - Parse a document and report every diagnostic")
		fmt.Println("  load <file> [db] [base]    - Parse a document and load its quads into a store")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "parse":
		if len(os.Args) < 3 {
			fmt.Println("Usage: rdfsyntax parse <file> [base]")
			os.Exit(1)
		}
		base := ""
		if len(os.Args) >= 4 {
			base = os.Args[3]
		}
		runParse(os.Args[2], base)
	case "check":
		if len(os.Args) < 3 {
			fmt.Println("Usage: rdfsyntax check <file>")
			os.Exit(1)
		}
		runCheck(os.Args[2])
	case "load":
		if len(os.Args) < 3 {
			fmt.Println("Usage: rdfsyntax load <file> [db] [base]")
			os.Exit(1)
		}
		dbPath := "./rdfsyntax_data"
		if len(os.Args) >= 4 {
			dbPath = os.Args[3]
		}
		base := ""
		if len(os.Args) >= 5 {
			base = os.Args[4]
		}
		runLoad(os.Args[2], dbPath, base)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func runParse(path, base string) {
	lang, err := syntax.LanguageForFilename(path)
	if err != nil {
		log.Fatalf("Failed to detect language: %v", err)
	}

	f, err := os.Open(path) // #nosec G304 - path comes from the command line
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	quads, err := syntax.Decode(lang, f, base)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", path, err)
	}
	for i := range quads {
		fmt.Println(quads[i].String())
	}
}

// runCheck runs the fault-tolerant front end and prints every diagnostic
// instead of stopping at the first one.
func runCheck(path string) {
	lang, err := syntax.LanguageForFilename(path)
	if err != nil {
		log.Fatalf("Failed to detect language: %v", err)
	}

	data, err := os.ReadFile(path) // #nosec G304 - path comes from the command line
	if err != nil {
		log.Fatalf("Failed to read file: %v", err)
	}
	src := string(data)

	problems := 0
	switch lang {
	case syntax.NTriples, syntax.NQuads:
		var res *nquads.Result
		if lang == syntax.NTriples {
			res = nquads.ParseNTriples(src)
		} else {
			res = nquads.ParseNQuads(src)
		}
		for _, e := range res.LexErrors {
			fmt.Printf("%s: lexical: %s\n", path, e)
			problems++
		}
		for _, e := range res.Errors {
			fmt.Printf("%s: syntax: %s\n", path, e)
			problems++
		}
	default:
		res, err := syntax.Parse(lang, src)
		if err != nil {
			log.Fatalf("Failed to parse: %v", err)
		}
		for _, e := range res.LexErrors {
			fmt.Printf("%s: lexical: %s\n", path, e)
			problems++
		}
		for _, e := range res.Errors {
			fmt.Printf("%s: syntax: %s\n", path, e)
			problems++
		}
	}

	if problems == 0 {
		fmt.Printf("%s: OK\n", path)
		return
	}
	fmt.Printf("%s: %d problem(s)\n", path, problems)
	os.Exit(1)
}

func runLoad(path, dbPath, base string) {
	lang, err := syntax.LanguageForFilename(path)
	if err != nil {
		log.Fatalf("Failed to detect language: %v", err)
	}

	f, err := os.Open(path) // #nosec G304 - path comes from the command line
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer f.Close()

	quads, err := syntax.Decode(lang, f, base)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", path, err)
	}

	fmt.Printf("Opening database at: %s\n", dbPath)
	store, err := quadstore.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	if err := store.Insert(quads); err != nil {
		log.Fatalf("Failed to insert quads: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		log.Fatalf("Failed to count quads: %v", err)
	}
	fmt.Printf("Loaded %d quad(s) from %s\n", len(quads), path)
	fmt.Printf("Total quads stored: %d\n", count)
}
