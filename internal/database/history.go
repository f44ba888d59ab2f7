package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sslreport/internal/model"
)

// FileName is the name of the SQLite file inside the database directory.
const FileName = "history.db"

// HistoryDB stores converted reports so that later runs can list and
// compare them.
//
// Design decision: The full report is kept as JSON in the imports table
// so it can be re-rendered in any format, while scan_records duplicates
// the headline fields of each endpoint for cheap per-endpoint queries.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ErrNotFound is returned when the database file does not exist and
// CreateIfNotExists is false.
var ErrNotFound = errors.New("history database not found")

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, ErrNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw prevents modernc.org/sqlite from creating a new file.
	// foreign_keys is set per connection through the DSN so that
	// recycled connections keep the ON DELETE CASCADE behaviour.
	dsn := dbPath + "?mode=rw&_pragma=foreign_keys(1)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- Imports store one converted sslscan document each
	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		digest TEXT NOT NULL,
		run_id TEXT NOT NULL DEFAULT '',
		scanner_version TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		record_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_imports_digest ON imports(digest);
	CREATE INDEX IF NOT EXISTS idx_imports_timestamp ON imports(timestamp);
	CREATE INDEX IF NOT EXISTS idx_imports_run ON imports(run_id);

	-- Scan records hold the headline fields of each endpoint of an import
	CREATE TABLE IF NOT EXISTS scan_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		import_id INTEGER NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		host TEXT NOT NULL,
		sniname TEXT NOT NULL,
		port INTEGER NOT NULL,
		minimum_tls_version TEXT,
		minimum_cipher_bits INTEGER,
		heartbleed TEXT NOT NULL,
		certificate_expiration TEXT,
		certificate_expired TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_endpoint ON scan_records(host, sniname, port);
	CREATE INDEX IF NOT EXISTS idx_records_import ON scan_records(import_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// ImportMetadata contains summary information about a stored import.
// This is used for displaying history without loading the full report.
type ImportMetadata struct {
	// ID is the unique identifier of the import in the database.
	ID int64 `json:"id"`

	// Source is the path the document was read from, or "stdin".
	Source string `json:"source"`

	// Digest is the SHA3-256 digest of the raw document.
	Digest string `json:"digest"`

	// RunID groups imports converted in the same run.
	RunID string `json:"run_id,omitempty"`

	// ScannerVersion is the sslscan version recorded in the document.
	ScannerVersion string `json:"scanner_version,omitempty"`

	// Timestamp is when the import was stored.
	Timestamp time.Time `json:"timestamp"`

	// Records is the number of endpoints in the report.
	Records int `json:"records"`

	// Warnings is the number of normalization warnings.
	Warnings int `json:"warnings"`

	// RiskSummary contains counts of findings by severity level.
	RiskSummary map[string]int `json:"risk_summary"`
}

// SaveReport stores a report and its endpoint rows in one transaction and
// returns the new import ID. If summary is nil, the risk summary is empty.
func (hdb *HistoryDB) SaveReport(ctx context.Context, report *model.Report, summary *model.Summary) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	riskSummary := map[string]int{
		"critical": 0,
		"high":     0,
		"medium":   0,
		"low":      0,
		"info":     0,
	}
	if summary != nil {
		riskSummary["critical"] = summary.CriticalCount
		riskSummary["high"] = summary.HighCount
		riskSummary["medium"] = summary.MediumCount
		riskSummary["low"] = summary.LowCount
		riskSummary["info"] = summary.InfoCount
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO imports (source, digest, run_id, scanner_version, record_count, warning_count, report_json, risk_summary)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Source,
		report.Digest,
		report.RunID,
		report.ScannerVersion,
		len(report.Records),
		len(report.Warnings),
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save import: %w", err)
	}
	importID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO scan_records (import_id, position, host, sniname, port, minimum_tls_version,
		minimum_cipher_bits, heartbleed, certificate_expiration, certificate_expired)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range report.Records {
		var protocol, expiration sql.NullString
		var bits sql.NullInt64
		if rec.MinimumTLSVersion != nil {
			protocol = sql.NullString{String: rec.MinimumTLSVersion.String(), Valid: true}
		}
		if rec.MinimumCipherStrength != nil {
			bits = sql.NullInt64{Int64: int64(rec.MinimumCipherStrength.Bits), Valid: true}
		}
		if rec.NotAfter != nil {
			expiration = sql.NullString{String: rec.NotAfter.Format(time.DateOnly), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			importID,
			i,
			rec.Host,
			rec.SNIName,
			rec.Port,
			protocol,
			bits,
			rec.HeartbleedVulnerable.String(),
			expiration,
			rec.CertificateExpired.String(),
		); err != nil {
			return 0, fmt.Errorf("failed to save record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return importID, nil
}

// GetReportByID retrieves a stored report by its import ID.
// It returns nil without an error when no import has that ID.
func (hdb *HistoryDB) GetReportByID(ctx context.Context, id int64) (*model.Report, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT report_json FROM imports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get import: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// ListImports returns import metadata, newest first.
// A limit of zero or less returns every import.
func (hdb *HistoryDB) ListImports(ctx context.Context, limit int) ([]ImportMetadata, error) {
	query := `
	SELECT id, source, digest, run_id, scanner_version, timestamp, record_count, warning_count, risk_summary
	FROM imports
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	defer rows.Close()

	var results []ImportMetadata
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

// FindByDigest returns the newest import of a document with the given
// digest, or nil if the document was never imported.
func (hdb *HistoryDB) FindByDigest(ctx context.Context, digest string) (*ImportMetadata, error) {
	row := hdb.db.QueryRowContext(ctx, `
	SELECT id, source, digest, run_id, scanner_version, timestamp, record_count, warning_count, risk_summary
	FROM imports
	WHERE digest = ?
	ORDER BY id DESC
	LIMIT 1
	`, digest)

	meta, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

// LatestTwo returns the IDs of the two newest imports, older first.
// It returns an error if fewer than two imports are stored.
func (hdb *HistoryDB) LatestTwo(ctx context.Context) (older, newer int64, err error) {
	imports, err := hdb.ListImports(ctx, 2)
	if err != nil {
		return 0, 0, err
	}
	if len(imports) < 2 {
		return 0, 0, fmt.Errorf("need at least two imports to compare, found %d", len(imports))
	}
	return imports[1].ID, imports[0].ID, nil
}

// DeleteImport removes an import and its endpoint rows.
// It reports whether an import was deleted.
func (hdb *HistoryDB) DeleteImport(ctx context.Context, id int64) (bool, error) {
	result, err := hdb.db.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete import: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete import: %w", err)
	}
	return n > 0, nil
}

// EndpointSnapshot is the headline state of one endpoint in one import.
type EndpointSnapshot struct {
	ImportID              int64     `json:"import_id"`
	Timestamp             time.Time `json:"timestamp"`
	MinimumTLSVersion     string    `json:"minimum_tls_version,omitempty"`
	MinimumCipherBits     *int      `json:"minimum_cipher_bits,omitempty"`
	Heartbleed            string    `json:"heartbleed"`
	CertificateExpiration string    `json:"certificate_expiration,omitempty"`
	CertificateExpired    string    `json:"certificate_expired"`
}

// EndpointHistory returns the snapshots of one endpoint, newest first.
func (hdb *HistoryDB) EndpointHistory(ctx context.Context, key model.EndpointKey) ([]EndpointSnapshot, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT r.import_id, i.timestamp, r.minimum_tls_version, r.minimum_cipher_bits,
		r.heartbleed, r.certificate_expiration, r.certificate_expired
	FROM scan_records r
	JOIN imports i ON i.id = r.import_id
	WHERE r.host = ? AND r.sniname = ? AND r.port = ?
	ORDER BY r.import_id DESC, r.position
	`, key.Host, key.SNIName, key.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint history: %w", err)
	}
	defer rows.Close()

	var results []EndpointSnapshot
	for rows.Next() {
		var snap EndpointSnapshot
		var timestamp string
		var protocol, expiration sql.NullString
		var bits sql.NullInt64

		if err := rows.Scan(&snap.ImportID, &timestamp, &protocol, &bits,
			&snap.Heartbleed, &expiration, &snap.CertificateExpired); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}

		snap.Timestamp = parseTimestamp(timestamp)
		snap.MinimumTLSVersion = protocol.String
		snap.CertificateExpiration = expiration.String
		if bits.Valid {
			b := int(bits.Int64)
			snap.MinimumCipherBits = &b
		}
		results = append(results, snap)
	}
	return results, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanMetadata reads one imports row selected by ListImports or FindByDigest.
func scanMetadata(row rowScanner) (ImportMetadata, error) {
	var meta ImportMetadata
	var timestamp string
	var scannerVersion, riskJSON sql.NullString

	err := row.Scan(&meta.ID, &meta.Source, &meta.Digest, &meta.RunID, &scannerVersion,
		&timestamp, &meta.Records, &meta.Warnings, &riskJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return meta, err
	}
	if err != nil {
		return meta, fmt.Errorf("failed to scan metadata: %w", err)
	}

	meta.ScannerVersion = scannerVersion.String
	meta.Timestamp = parseTimestamp(timestamp)
	meta.RiskSummary = make(map[string]int)
	if riskJSON.Valid && riskJSON.String != "" {
		if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
			meta.RiskSummary = make(map[string]int)
		}
	}
	return meta, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.DateTime,             // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
