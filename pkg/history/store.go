package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/socratis/socratis-go/pkg/essay"
	"github.com/socratis/socratis-go/pkg/review"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx.
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ErrNotFound is returned when the requested record is not in the local history.
var ErrNotFound = errors.New("history: not found")

// SaveEssay upserts a snapshot of the essay. Later snapshots of the same essay
// replace the stored status and scores, so the record tracks what the backend
// last reported.
func SaveEssay(db DBExecutor, e *essay.Essay) error {
	if e.ID == "" {
		return fmt.Errorf("essay id must be non-empty")
	}
	query := `INSERT INTO essays (id, titulo, tema, tipo, texto, status, nota_enem, nota_geral, data_submissao)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id)
			  DO UPDATE SET
				status = excluded.status,
				nota_enem = excluded.nota_enem,
				nota_geral = excluded.nota_geral,
				synced_at = CURRENT_TIMESTAMP`
	_, err := db.Exec(query, e.ID, e.Titulo, e.Tema, e.Tipo, e.Texto, string(e.Status),
		nullableFloat(e.NotaEnem), nullableFloat(e.NotaGeral), e.DataSubmissao)
	if err != nil {
		return fmt.Errorf("upsert essay: %w", err)
	}
	return nil
}

// GetEssay returns one locally stored essay.
func GetEssay(db DBExecutor, id string) (*essay.Essay, error) {
	row := db.QueryRow(`SELECT id, titulo, tema, tipo, texto, status, nota_enem, nota_geral, data_submissao
						FROM essays WHERE id = ?`, id)
	e, err := scanEssay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ListEssays returns the most recently submitted essays, newest first.
func ListEssays(db DBExecutor, limit int) ([]essay.Essay, error) {
	rows, err := db.Query(`SELECT id, titulo, tema, tipo, texto, status, nota_enem, nota_geral, data_submissao
						   FROM essays ORDER BY data_submissao DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list essays: %w", err)
	}
	defer rows.Close()

	var out []essay.Essay
	for rows.Next() {
		e, err := scanEssay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// SaveResult stores the projected result for an essay. The full view model is
// kept as JSON alongside the two columns the list views need.
func SaveResult(db DBExecutor, redacaoID string, r *review.Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	query := `INSERT INTO results (redacao_id, nota_total, comentario_geral, payload_json)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(redacao_id)
			  DO UPDATE SET
				nota_total = excluded.nota_total,
				comentario_geral = excluded.comentario_geral,
				payload_json = excluded.payload_json,
				saved_at = CURRENT_TIMESTAMP`
	if _, err := db.Exec(query, redacaoID, r.NotaTotal, r.ComentarioGeral, string(payload)); err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// SavedResult is one row of the local results listing, joined with the essay
// it belongs to.
type SavedResult struct {
	RedacaoID string
	Titulo    string
	NotaTotal int
	SavedAt   time.Time
}

// ListResults returns locally stored results, most recently saved first.
func ListResults(db DBExecutor, limit int) ([]SavedResult, error) {
	rows, err := db.Query(`SELECT r.redacao_id, e.titulo, r.nota_total, r.saved_at
						   FROM results r JOIN essays e ON e.id = r.redacao_id
						   ORDER BY r.saved_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []SavedResult
	for rows.Next() {
		var sr SavedResult
		if err := rows.Scan(&sr.RedacaoID, &sr.Titulo, &sr.NotaTotal, &sr.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// GetResult returns the stored result for an essay, or ErrNotFound.
func GetResult(db DBExecutor, redacaoID string) (*review.Result, error) {
	var payload string
	err := db.QueryRow(`SELECT payload_json FROM results WHERE redacao_id = ?`, redacaoID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	var r review.Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEssay(row rowScanner) (*essay.Essay, error) {
	var e essay.Essay
	var status string
	var notaEnem, notaGeral sql.NullFloat64
	err := row.Scan(&e.ID, &e.Titulo, &e.Tema, &e.Tipo, &e.Texto, &status, &notaEnem, &notaGeral, &e.DataSubmissao)
	if err != nil {
		return nil, err
	}
	e.Status = essay.Status(status)
	if notaEnem.Valid {
		e.NotaEnem = &notaEnem.Float64
	}
	if notaGeral.Valid {
		e.NotaGeral = &notaGeral.Float64
	}
	return &e, nil
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
