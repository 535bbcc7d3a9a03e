// Case-law corpus loader.
// Reads a YAML file of court cases and upserts them into the case_law table
// so deployments can extend the searchable corpus beyond the seeded set.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lexabot/lexa/internal/infra/sqlite"
	"github.com/lexabot/lexa/pkg/uuid"
)

// Case is one court decision in the input file.
type Case struct {
	Title        string   `yaml:"title"`
	Court        string   `yaml:"court"`
	Year         int      `yaml:"year"`
	Jurisdiction string   `yaml:"jurisdiction"`
	Summary      string   `yaml:"summary"`
	Keywords     []string `yaml:"keywords"`
	URL          string   `yaml:"url"`
}

type caseFile struct {
	Cases []Case `yaml:"cases"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("caseload", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	dbPath := fs.String("db", "lexa.db", "Path to the sqlite database")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(out, "usage: caseload [--db lexa.db] cases.yml") //nolint:errcheck
		return 2
	}

	cases, err := loadCases(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(out, "ERROR loading cases: %v\n", err) //nolint:errcheck
		return 1
	}

	db, err := sqlite.NewDB(*dbPath)
	if err != nil {
		fmt.Fprintf(out, "ERROR opening database: %v\n", err) //nolint:errcheck
		return 1
	}
	defer db.Close() //nolint:errcheck
	if err := sqlite.MigrateUp(db); err != nil {
		fmt.Fprintf(out, "ERROR migrating database: %v\n", err) //nolint:errcheck
		return 1
	}

	inserted, err := insertCases(db, cases)
	if err != nil {
		fmt.Fprintf(out, "ERROR inserting cases: %v\n", err) //nolint:errcheck
		return 1
	}

	fmt.Fprintf(out, "loaded %d of %d cases\n", inserted, len(cases)) //nolint:errcheck
	return 0
}

// loadCases parses the YAML file and validates each entry.
func loadCases(path string) ([]Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f caseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Cases) == 0 {
		return nil, fmt.Errorf("%s contains no cases", path)
	}

	for i, c := range f.Cases {
		if strings.TrimSpace(c.Title) == "" {
			return nil, fmt.Errorf("case %d: title is required", i+1)
		}
		if c.Year <= 0 {
			return nil, fmt.Errorf("case %d (%s): year is required", i+1, c.Title)
		}
	}
	return f.Cases, nil
}

// insertCases writes cases in one transaction, skipping titles already present.
func insertCases(db *sql.DB, cases []Case) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck

	inserted := 0
	for _, c := range cases {
		var exists int
		err := tx.QueryRow("SELECT COUNT(*) FROM case_law WHERE title = ?", c.Title).Scan(&exists)
		if err != nil {
			return 0, err
		}
		if exists > 0 {
			continue
		}

		_, err = tx.Exec(
			"INSERT INTO case_law (id, title, court, year, jurisdiction, summary, keywords, url) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			uuid.NewV7().String(), c.Title, c.Court, c.Year, c.Jurisdiction, c.Summary,
			strings.Join(c.Keywords, ","), c.URL,
		)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", c.Title, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}
