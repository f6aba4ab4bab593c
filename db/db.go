// Package db provides the database component of the invoicebox project.
//
// Although the database backend is sqlite to allow for simple single-file
// desktop use, the database is not considered a dumb storage layer. Each
// fixed query below is held in an sql file in the `sql` directory, which
// can be run on the sqlite command line with the example values it
// carries. (For some queries it is advisable to run the sql in a
// transaction, so that the results can be rolled back.)
//
// The use of external, runnable sql files also as Go prepared statements
// is made possible through the parameterization scheme set out in
// parameterize.go.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx" // helper library
	_ "modernc.org/sqlite"    // pure go sqlite driver
)

//go:embed sql
var SQLEmbeddedFS embed.FS

// Sentinel errors reported by the repositories. Callers translate these
// into http statuses at the web boundary.
var (
	// ErrNotFound reports that an id did not resolve to a row.
	ErrNotFound = errors.New("record not found")
	// ErrNotQuote reports an attempt to convert a non-quote document.
	ErrNotQuote = errors.New("document is not a quote")
)

// DefaultVATRate is the vat rate used when a document creation request
// does not carry one. 0.20 is the standard French rate.
const DefaultVATRate = 0.20

// parameterizedStmt describes an sql file parsed into an sqlx NamedStmt
// expecting the provided args.
type parameterizedStmt struct {
	sqlFile string
	args    []string
	*sqlx.NamedStmt
}

// verifyArgs determines if the number of arguments provided to a
// parameterizedStmt is as expected. This check could be more thorough.
func (p *parameterizedStmt) verifyArgs(args map[string]any) error {
	if got, want := len(args), len(p.args); got != want {
		return fmt.Errorf(
			"argument length to named statement from %q incorrect: got %d want %d",
			p.sqlFile,
			got,
			want,
		)
	}
	return nil
}

// DB provides a wrapper around the sql.DB connection for
// application-specific db operations.
type DB struct {
	*sqlx.DB
	logger  *log.Logger
	vatRate float64
	sqlFS   fs.FS

	// now provides the clock used for document numbering; overridable
	// in tests.
	now func() time.Time

	// Prepared statements.
	clientInsertStmt  *parameterizedStmt
	clientGetStmt     *parameterizedStmt
	clientsGetStmt    *parameterizedStmt
	clientDeleteStmt  *parameterizedStmt
	clientAddressStmt *parameterizedStmt

	profileGetStmt *parameterizedStmt

	countersGetStmt *parameterizedStmt
	counterSetStmt  *parameterizedStmt
	counterBumpStmt *parameterizedStmt
	counterGetStmt  *parameterizedStmt

	documentInsertStmt *parameterizedStmt
	documentGetStmt    *parameterizedStmt
	documentsGetStmt   *parameterizedStmt
	documentDeleteStmt *parameterizedStmt
	sectionInsertStmt  *parameterizedStmt
	sectionsGetStmt    *parameterizedStmt
}

// NewConnection creates a new connection to an SQLite database at the
// given path, loads the schema and prepares the named statements. The
// sqlFS filesystem holds the sql query files, normally a mount over
// SQLEmbeddedFS.
func NewConnection(dbPath string, sqlFS fs.FS, vatRate float64, logger *log.Logger) (*DB, error) {

	// dataSource is the default setting for file-based databases. The
	// foreign_keys pragma is needed for section cascade deletion.
	dataSource := fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		dbPath,
	)

	// for in-memory test databases, check the necessary cached setting
	// is used.
	if strings.Contains(dbPath, ":memory:") {
		if !strings.Contains(dbPath, "cache=shared") {
			return nil, fmt.Errorf("in-memory connection %q should contain '?cache=shared'", dbPath)
		}
		dataSource = dbPath + "&_pragma=foreign_keys(1)"
	}
	dbDB, err := sql.Open("sqlite", dataSource)
	if err != nil {
		return nil, err
	}

	if err := dbDB.Ping(); err != nil {
		return nil, err
	}

	if vatRate <= 0 {
		vatRate = DefaultVATRate
	}
	if logger == nil {
		logger = log.Default()
	}

	// Wrap the standard library *sql.DB with sqlx.
	db := &DB{
		DB:      sqlx.NewDb(dbDB, "sqlite"),
		logger:  logger,
		vatRate: vatRate,
		sqlFS:   sqlFS,
		now:     time.Now,
	}

	// The schema must be in place before the named statements can be
	// prepared.
	if err := db.InitSchema(sqlFS, "schema.sql"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.prepareNamedStatements(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not prepare named statements: %w", err)
	}

	return db, nil
}

// prepareNamedStatements prepares all the named statements for this
// database connection.
func (db *DB) prepareNamedStatements() error {
	var err error

	// Clients.
	db.clientInsertStmt, err = db.prepNamedStatement(db.sqlFS, "client_insert.sql")
	if err != nil {
		return fmt.Errorf("client insert statement error: %w", err)
	}
	db.clientGetStmt, err = db.prepNamedStatement(db.sqlFS, "client.sql")
	if err != nil {
		return fmt.Errorf("get client statement error: %w", err)
	}
	db.clientsGetStmt, err = db.prepNamedStatement(db.sqlFS, "clients.sql")
	if err != nil {
		return fmt.Errorf("get clients statement error: %w", err)
	}
	db.clientDeleteStmt, err = db.prepNamedStatement(db.sqlFS, "client_delete.sql")
	if err != nil {
		return fmt.Errorf("client delete statement error: %w", err)
	}
	db.clientAddressStmt, err = db.prepNamedStatement(db.sqlFS, "client_address.sql")
	if err != nil {
		return fmt.Errorf("client address statement error: %w", err)
	}

	// User profile.
	db.profileGetStmt, err = db.prepNamedStatement(db.sqlFS, "profile.sql")
	if err != nil {
		return fmt.Errorf("get profile statement error: %w", err)
	}

	// Document counters.
	db.countersGetStmt, err = db.prepNamedStatement(db.sqlFS, "counters.sql")
	if err != nil {
		return fmt.Errorf("get counters statement error: %w", err)
	}
	db.counterSetStmt, err = db.prepNamedStatement(db.sqlFS, "counter_set.sql")
	if err != nil {
		return fmt.Errorf("counter set statement error: %w", err)
	}
	db.counterBumpStmt, err = db.prepNamedStatement(db.sqlFS, "counter_bump.sql")
	if err != nil {
		return fmt.Errorf("counter bump statement error: %w", err)
	}
	db.counterGetStmt, err = db.prepNamedStatement(db.sqlFS, "counter.sql")
	if err != nil {
		return fmt.Errorf("get counter statement error: %w", err)
	}

	// Documents and their sections.
	db.documentInsertStmt, err = db.prepNamedStatement(db.sqlFS, "document_insert.sql")
	if err != nil {
		return fmt.Errorf("document insert statement error: %w", err)
	}
	db.documentGetStmt, err = db.prepNamedStatement(db.sqlFS, "document.sql")
	if err != nil {
		return fmt.Errorf("get document statement error: %w", err)
	}
	db.documentsGetStmt, err = db.prepNamedStatement(db.sqlFS, "documents.sql")
	if err != nil {
		return fmt.Errorf("get documents statement error: %w", err)
	}
	db.documentDeleteStmt, err = db.prepNamedStatement(db.sqlFS, "document_delete.sql")
	if err != nil {
		return fmt.Errorf("document delete statement error: %w", err)
	}
	db.sectionInsertStmt, err = db.prepNamedStatement(db.sqlFS, "section_insert.sql")
	if err != nil {
		return fmt.Errorf("section insert statement error: %w", err)
	}
	db.sectionsGetStmt, err = db.prepNamedStatement(db.sqlFS, "sections.sql")
	if err != nil {
		return fmt.Errorf("get sections statement error: %w", err)
	}

	return nil
}

// prepNamedStatement prepares an SQL query file. Files without any
// /* @param */ markers are prepared verbatim.
func (db *DB) prepNamedStatement(fileFS fs.FS, filePath string) (*parameterizedStmt, error) {
	query, err := ParameterizeFile(fileFS, filePath)
	if errors.Is(err, errNoParameters) {
		body, rerr := fs.ReadFile(fileFS, filePath)
		if rerr != nil {
			return nil, fmt.Errorf("could not read %q: %w", filePath, rerr)
		}
		query = &ParameterizedSQLTemplate{Body: body}
	} else if err != nil {
		return nil, fmt.Errorf("could not parameterize %q: %w", filePath, err)
	}

	pQuery, err := db.PrepareNamed(string(query.Body))
	if err != nil {
		return nil, fmt.Errorf("could not prepare statement %q: %w", filePath, err)
	}
	return &parameterizedStmt{
		filePath,
		query.Parameters,
		pQuery,
	}, nil
}

// Reprepare reloads and re-prepares all named statements, used by the
// development-mode sql file watcher. It is not safe against in-flight
// requests and is for development only.
func (db *DB) Reprepare() error {
	return db.prepareNamedStatements()
}

// InitSchema creates the necessary tables if they don't already exist,
// then applies the additive column migrations. The schema file can be
// run idempotently.
func (db *DB) InitSchema(fileFS fs.FS, filePath string) error {

	schema, err := fs.ReadFile(fileFS, filePath)
	if err != nil {
		return fmt.Errorf("could not read schema file at %q: %w", filePath, err)
	}

	_, err = db.ExecContext(context.Background(), string(schema))
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}

	return db.migrate()
}

// migrations are additive "ALTER TABLE ... ADD COLUMN" statements for
// columns introduced after the initial schema. Each is attempted on
// every startup; "duplicate column name" errors are ignored, making the
// set idempotent and order-independent.
var migrations = []string{
	`ALTER TABLE clients ADD COLUMN siren TEXT`,
	`ALTER TABLE clients ADD COLUMN vat_number TEXT`,
	`ALTER TABLE documents ADD COLUMN quote_id INTEGER`,
	`ALTER TABLE documents ADD COLUMN my_name TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_email TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_phone TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_website TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_siren TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_vat_number TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_bank TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_iban TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_bic TEXT DEFAULT ''`,
	`ALTER TABLE documents ADD COLUMN my_terms_conditions TEXT DEFAULT ''`,
	`ALTER TABLE user_profile ADD COLUMN siren TEXT DEFAULT ''`,
	`ALTER TABLE user_profile ADD COLUMN vat_number TEXT DEFAULT ''`,
	`ALTER TABLE user_profile ADD COLUMN bank TEXT DEFAULT ''`,
	`ALTER TABLE user_profile ADD COLUMN iban TEXT DEFAULT ''`,
	`ALTER TABLE user_profile ADD COLUMN bic TEXT DEFAULT ''`,
	`ALTER TABLE user_profile ADD COLUMN terms_conditions TEXT DEFAULT ''`,
}

// migrate applies the additive column migrations.
func (db *DB) migrate() error {
	ctx := context.Background()
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %q failed: %w", m, err)
		}
	}
	return nil
}

// logQuery is for helping debug SQL issues.
func (db *DB) logQuery(name string, stmt *parameterizedStmt, args map[string]any, err error) {
	const debug = false
	if !debug {
		return
	}
	db.logger.Debug(
		"sql",
		"name", name,
		"query", stmt.QueryString,
		"args", fmt.Sprintf("%#v", args),
		"error", err,
	)
}
