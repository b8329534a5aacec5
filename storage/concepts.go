// Package storage persists thesaurus concepts and evaluation runs in SQLite.
package storage

import (
	"database/sql"
	"encoding/csv"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/extract"
	"github.com/nanoform/nanoform/logger"
	"github.com/nanoform/nanoform/sym"
)

// ConceptStore reads and writes thesaurus concepts.
type ConceptStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewConceptStore creates a new ConceptStore.
func NewConceptStore(db *sql.DB) *ConceptStore {
	return &ConceptStore{db: db, logger: logger.Logger}
}

// csv column headers as exported by the thesaurus
const (
	colCode            = "Code"
	colDisplayName     = "Display Name"
	colSynonyms        = "Synonyms"
	colDefinition      = "Definition"
	colSemanticType    = "Semantic Type"
	colConceptInSubset = "Concept in Subset"
)

// ImportCSV loads thesaurus concepts from a CSV export into the database.
// Existing rows with the same code are replaced. Returns the number of
// concepts imported.
func (s *ConceptStore) ImportCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // the export has ragged trailing columns

	header, err := reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, "read CSV header")
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colCode, colDisplayName} {
		if _, ok := cols[required]; !ok {
			return 0, errors.Newf("CSV missing required column %q", required)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "begin import tx")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO thesaurus_concepts
			(code, display_name, synonyms, definition, semantic_type, concept_in_subset)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare concept insert")
	}
	defer stmt.Close()

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	imported := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrapf(err, "read CSV record %d", imported+1)
		}

		code := field(record, colCode)
		if code == "" {
			continue
		}

		_, err = stmt.Exec(
			code,
			field(record, colDisplayName),
			field(record, colSynonyms),
			field(record, colDefinition),
			field(record, colSemanticType),
			field(record, colConceptInSubset),
		)
		if err != nil {
			return 0, errors.Wrapf(err, "insert concept %s", code)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit import tx")
	}

	s.logger.Infow("Thesaurus import complete",
		"symbol", sym.DB,
		logger.FieldCount, imported,
	)

	return imported, nil
}

// GetByCode returns the concept with the given thesaurus code.
func (s *ConceptStore) GetByCode(code string) (*extract.Concept, error) {
	var c extract.Concept
	err := s.db.QueryRow(`
		SELECT code, display_name, synonyms, definition, semantic_type, concept_in_subset
		FROM thesaurus_concepts WHERE code = ?
	`, code).Scan(&c.Code, &c.DisplayName, &c.Synonyms, &c.Definition, &c.SemanticType, &c.ConceptInSubset)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "concept %s", code)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query concept %s", code)
	}
	return &c, nil
}

// Count returns the number of imported concepts.
func (s *ConceptStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM thesaurus_concepts").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count concepts")
	}
	return n, nil
}
