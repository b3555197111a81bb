package fixturecast

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Persistable is a struct whose exported fields carry column/dbtype/primary/index tags
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	BeforeSave() error
}

// SQLStore persists matches, standings and model blobs in sqlite or postgres.
// Table layouts are generated from struct tags.
type SQLStore struct {
	db      *sql.DB
	driver  string
	builder sq.StatementBuilderType
	log     Logger
}

var _ ArtifactStore = (*SQLStore)(nil)

// OpenSQLStore connects with driver "sqlite" or "postgres" and creates missing tables
func OpenSQLStore(ctx context.Context, driver, dsn string, log Logger) (*SQLStore, error) {
	var placeholders sq.PlaceholderFormat
	switch driver {
	case "sqlite":
		placeholders = sq.Question
	case "postgres":
		placeholders = sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// every connection to :memory: would otherwise be a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{
		db:      db,
		driver:  driver,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholders),
		log:     orDiscard(log),
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Info("Database initialized successfully", driver)
	return s, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Migrate creates all necessary database tables
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, obj := range []Persistable{&Match{}, &StandingsEntry{}, &modelRecord{}} {
		if err := s.CreateTable(ctx, obj); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable creates a table and its indexes for the given persistable object
func (s *SQLStore) CreateTable(ctx context.Context, obj Persistable) error {
	tableName := obj.GetTableName()
	createSQL := s.generateCreateTableSQL(obj, tableName)
	s.log.Debug("Creating table with SQL", createSQL)
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	for _, query := range generateIndexSQL(obj, tableName) {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			s.log.Warn("Failed to create index", err)
		}
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Matches and standings
/////////////////////////////////////////////////////////////////////////

// SaveMatches upserts matches in a single transaction
func (s *SQLStore) SaveMatches(ctx context.Context, matches []Match) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i := range matches {
			m := matches[i]
			if err := s.upsert(ctx, tx, &m); err != nil {
				return fmt.Errorf("failed to save match %s: %w", m.Key(), err)
			}
		}
		return nil
	})
}

// Matches returns the stored matches of a season (0 for every season) in kickoff order
func (s *SQLStore) Matches(ctx context.Context, season int) ([]Match, error) {
	var where sq.Sqlizer
	if season != 0 {
		where = sq.Eq{"season": season}
	}
	return findWhere[Match](ctx, s, where, "utcTime", "homeTeam")
}

// SaveStandings replaces the stored snapshot of a season
func (s *SQLStore) SaveStandings(ctx context.Context, season int, table Standings) error {
	if err := table.Validate(); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		query, args, err := s.builder.Delete((&StandingsEntry{}).GetTableName()).Where(sq.Eq{"season": season}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to clear standings: %w", err)
		}
		for i := range table {
			e := table[i]
			e.Season = season
			if err := s.upsert(ctx, tx, &e); err != nil {
				return fmt.Errorf("failed to save standings for %s: %w", e.Team, err)
			}
		}
		return nil
	})
}

// Standings returns the stored snapshot of a season ordered by position
func (s *SQLStore) Standings(ctx context.Context, season int) (Standings, error) {
	rows, err := findWhere[StandingsEntry](ctx, s, sq.Eq{"season": season}, "position")
	if err != nil {
		return nil, err
	}
	return Standings(rows), nil
}

/////////////////////////////////////////////////////////////////////////
////// Model artifacts
/////////////////////////////////////////////////////////////////////////

// modelRecord is the row a named model blob is stored in
type modelRecord struct {
	Name      string    `column:"name" dbtype:"TEXT" primary:"true"`
	ModelID   string    `column:"modelId" dbtype:"TEXT NOT NULL"`
	TrainedAt time.Time `column:"trainedAt" dbtype:"DATETIME"`
	Blob      []byte    `column:"data" dbtype:"BLOB NOT NULL"`
}

func (r *modelRecord) GetTableName() string          { return "model" }
func (r *modelRecord) GetPrimaryKey() map[string]any { return map[string]any{"name": r.Name} }
func (r *modelRecord) BeforeSave() error             { return validateArtifactName(r.Name) }

// Save stores the model under name, replacing any previous one
func (s *SQLStore) Save(ctx context.Context, name string, m *Model) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	rec := &modelRecord{Name: name, ModelID: m.ID.String(), TrainedAt: m.TrainedAt, Blob: data}
	return s.upsert(ctx, s.db, rec)
}

// Load fetches and validates the named model
func (s *SQLStore) Load(ctx context.Context, name string) (*Model, error) {
	key := (&modelRecord{Name: name}).GetPrimaryKey()
	rows, err := findWhere[modelRecord](ctx, s, sq.Eq(key))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s in database: %w", name, ErrModelNotFound)
	}
	return UnmarshalModel(rows[0].Blob)
}

/////////////////////////////////////////////////////////////////////////
////// Statement generation
/////////////////////////////////////////////////////////////////////////

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// upsert inserts obj or, on a primary key conflict, overwrites its other columns
func (s *SQLStore) upsert(ctx context.Context, ex execer, obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}
	tableName := obj.GetTableName()
	columns, values := getInsertData(obj)
	keys := getPrimaryKeyFields(obj)

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var sets []string
	for _, c := range columns {
		if !isKey[c] {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}
	suffix := fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(keys, ", "))
	if len(sets) > 0 {
		suffix = fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(keys, ", "), strings.Join(sets, ", "))
	}

	query, args, err := s.builder.Insert(tableName).Columns(columns...).Values(values...).Suffix(suffix).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert for %s: %w", tableName, err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert into %s: %w", tableName, err)
	}
	return nil
}

// findWhere selects every row of T's table matching where (nil for all rows)
func findWhere[T any, PT interface {
	*T
	Persistable
}](ctx context.Context, s *SQLStore, where sq.Sqlizer, orderBy ...string) ([]T, error) {
	var zero T
	tableName := PT(&zero).GetTableName()
	columns, _ := getSelectData(PT(&zero))

	q := s.builder.Select(columns...).From(tableName).OrderBy(orderBy...)
	if where != nil {
		q = q.Where(where)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select for %s: %w", tableName, err)
	}
	s.log.Debug("FindWhere SQL", query)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", tableName, err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		var v T
		_, destinations := getSelectData(PT(&v))
		if err := rows.Scan(destinations...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", tableName, err)
		}
		results = append(results, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", tableName, err)
	}
	return results, nil
}

// columnType translates a tag's sqlite column type for the active driver
func (s *SQLStore) columnType(dbType string) string {
	if s.driver != "postgres" {
		return dbType
	}
	r := strings.NewReplacer("DATETIME", "TIMESTAMPTZ", "REAL", "DOUBLE PRECISION", "BLOB", "BYTEA")
	return r.Replace(dbType)
}

// persistedFields yields the exported, tagged fields of obj's struct type
func persistedFields(obj any) []reflect.StructField {
	objType := reflect.TypeOf(obj)
	if objType.Kind() == reflect.Ptr {
		objType = objType.Elem()
	}
	var fields []reflect.StructField
	for i := 0; i < objType.NumField(); i++ {
		field := objType.Field(i)
		if !field.IsExported() || field.Tag.Get("dbtype") == "" {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

func columnName(field reflect.StructField) string {
	if c := field.Tag.Get("column"); c != "" {
		return c
	}
	return strings.ToLower(field.Name)
}

// generateCreateTableSQL generates CREATE TABLE SQL from struct tags
func (s *SQLStore) generateCreateTableSQL(obj any, tableName string) string {
	var columns []string
	var primaryKeys []string
	for _, field := range persistedFields(obj) {
		name := columnName(field)
		if field.Tag.Get("primary") == "true" {
			primaryKeys = append(primaryKeys, name)
		}
		columns = append(columns, fmt.Sprintf("%s %s", name, s.columnType(field.Tag.Get("dbtype"))))
	}
	if len(primaryKeys) > 0 {
		columns = append(columns, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(primaryKeys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tableName, strings.Join(columns, ", "))
}

// generateIndexSQL generates index creation SQL from struct tags
func generateIndexSQL(obj any, tableName string) []string {
	var indexSQL []string
	for _, field := range persistedFields(obj) {
		if field.Tag.Get("index") == "" {
			continue
		}
		name := columnName(field)
		indexSQL = append(indexSQL, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", tableName, strings.ToLower(name), tableName, name))
	}
	return indexSQL
}

// getInsertData extracts column names and values for INSERT
func getInsertData(obj any) ([]string, []any) {
	objValue := reflect.Indirect(reflect.ValueOf(obj))
	var columns []string
	var values []any
	for _, field := range persistedFields(obj) {
		columns = append(columns, columnName(field))
		values = append(values, objValue.FieldByIndex(field.Index).Interface())
	}
	return columns, values
}

// getSelectData extracts column names and scan destinations for SELECT
func getSelectData(obj any) ([]string, []any) {
	objValue := reflect.Indirect(reflect.ValueOf(obj))
	var columns []string
	var destinations []any
	for _, field := range persistedFields(obj) {
		columns = append(columns, columnName(field))
		destinations = append(destinations, objValue.FieldByIndex(field.Index).Addr().Interface())
	}
	return columns, destinations
}

// getPrimaryKeyFields returns the primary key column names in field order
func getPrimaryKeyFields(obj any) []string {
	var keys []string
	for _, field := range persistedFields(obj) {
		if field.Tag.Get("primary") == "true" {
			keys = append(keys, columnName(field))
		}
	}
	return keys
}
