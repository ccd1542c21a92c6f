// Package datarecording stores simulation output in SQLite tables.
package datarecording

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/fatih/structs"
	"github.com/tebeka/atexit"

	// SQLite database driver.
	_ "github.com/mattn/go-sqlite3"
)

// A DataRecorder can create tables and buffer rows into them.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry interface{})

	// InsertData buffers one entry of the same type the table was created
	// with.
	InsertData(tableName string, entry interface{})

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

type table struct {
	columns []string
	pending []interface{}
}

type sqliteWriter struct {
	*sql.DB

	batchSize int
	tables    map[string]*table
}

// New creates a DataRecorder backed by the SQLite database at path.
func New(path string) DataRecorder {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Panic(err)
	}

	w := &sqliteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

// NewWithDB creates a DataRecorder on an existing database handle.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqliteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry interface{}) {
	if _, ok := w.tables[tableName]; ok {
		log.Panicf("table %s already exists", tableName)
	}

	columns := structs.Names(sampleEntry)
	stmt := fmt.Sprintf("CREATE TABLE %s (%s)",
		tableName, strings.Join(columns, ", "))
	if _, err := w.Exec(stmt); err != nil {
		log.Panic(err)
	}

	w.tables[tableName] = &table{columns: columns}
}

func (w *sqliteWriter) InsertData(tableName string, entry interface{}) {
	t, ok := w.tables[tableName]
	if !ok {
		log.Panicf("table %s does not exist", tableName)
	}

	t.pending = append(t.pending, entry)
	if len(t.pending) >= w.batchSize {
		w.flushTable(tableName, t)
	}
}

func (w *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}
	return names
}

func (w *sqliteWriter) Flush() {
	for name, t := range w.tables {
		w.flushTable(name, t)
	}
}

func (w *sqliteWriter) flushTable(name string, t *table) {
	if len(t.pending) == 0 {
		return
	}

	tx, err := w.Begin()
	if err != nil {
		log.Panic(err)
	}

	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", len(t.columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		name, placeholders))
	if err != nil {
		log.Panic(err)
	}

	for _, entry := range t.pending {
		if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
			log.Panic(err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Panic(err)
	}

	t.pending = t.pending[:0]
}
