package stdlib

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

const sqliteConnTag = "sqlite.conn"

// InstallSQLite registers the sqlite open/exec/query/close functions as
// flat globals, backed by modernc.org/sqlite's pure-Go driver rather than a
// cgo one.
func InstallSQLite(env *objects.Table, h objects.Host) {
	register(env, h, "sqlite_open", sqliteOpenFn)
	register(env, h, "sqlite_exec", sqliteExecFn)
	register(env, h, "sqlite_query", sqliteQueryFn)
	register(env, h, "sqlite_close", sqliteCloseFn)
}

func sqliteOpenFn(h objects.Host, argc int) (value.Value, error) {
	path, ok := argString(h, 0)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("sqlite_open expects a path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("sqlite_open: %v", err)
	}
	ud := h.NewUserData(sqliteConnTag, db)
	return value.FromObject(ud), nil
}

func asSQLiteConn(h objects.Host, v value.Value) (*sql.DB, bool) {
	if !v.IsObjectKind(value.KindUserData) {
		return nil, false
	}
	ud := v.AsObject().(*objects.UserData)
	if ud.Tag != sqliteConnTag {
		return nil, false
	}
	db, ok := ud.Data.(*sql.DB)
	return db, ok
}

func sqliteExecFn(h objects.Host, argc int) (value.Value, error) {
	if argc < 2 {
		return value.Nil(), h.RuntimeErrorf("sqlite_exec expects (conn, statement)")
	}
	db, ok := asSQLiteConn(h, h.Arg(0))
	if !ok {
		return value.Nil(), h.RuntimeErrorf("sqlite_exec expects a sqlite connection")
	}
	stmt, ok := argString(h, 1)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("sqlite_exec expects a string statement")
	}
	args := make([]interface{}, 0, argc-2)
	for i := 2; i < argc; i++ {
		args = append(args, valueToGo(h.Arg(i)))
	}
	res, err := db.Exec(stmt, args...)
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("sqlite_exec: %v", err)
	}
	n, _ := res.RowsAffected()
	return value.Number(float64(n)), nil
}

// sqliteQueryFn runs a SELECT and returns a table keyed 1..N, one
// sub-table per row, each keyed by column name.
func sqliteQueryFn(h objects.Host, argc int) (value.Value, error) {
	if argc < 2 {
		return value.Nil(), h.RuntimeErrorf("sqlite_query expects (conn, statement)")
	}
	db, ok := asSQLiteConn(h, h.Arg(0))
	if !ok {
		return value.Nil(), h.RuntimeErrorf("sqlite_query expects a sqlite connection")
	}
	stmt, ok := argString(h, 1)
	if !ok {
		return value.Nil(), h.RuntimeErrorf("sqlite_query expects a string statement")
	}
	args := make([]interface{}, 0, argc-2)
	for i := 2; i < argc; i++ {
		args = append(args, valueToGo(h.Arg(i)))
	}
	rows, err := db.Query(stmt, args...)
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("sqlite_query: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return value.Nil(), h.RuntimeErrorf("sqlite_query: %v", err)
	}

	result := h.NewTable()
	h.Protect(result)
	defer h.Unprotect(result)

	rowIdx := 1.0
	scanDest := make([]interface{}, len(cols))
	scanPtrs := make([]interface{}, len(cols))
	for i := range scanDest {
		scanPtrs[i] = &scanDest[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanPtrs...); err != nil {
			return value.Nil(), h.RuntimeErrorf("sqlite_query: %v", err)
		}
		rowTbl := h.NewTable()
		h.Protect(rowTbl)
		for i, col := range cols {
			rowTbl.Set(value.FromObject(h.Intern(col)), goToValue(h, scanDest[i]))
		}
		result.Set(value.Number(rowIdx), value.FromObject(rowTbl))
		h.Unprotect(rowTbl)
		rowIdx++
	}
	return value.FromObject(result), nil
}

func sqliteCloseFn(h objects.Host, argc int) (value.Value, error) {
	db, ok := asSQLiteConn(h, h.Arg(0))
	if !ok {
		return value.Nil(), h.RuntimeErrorf("sqlite_close expects a sqlite connection")
	}
	if err := db.Close(); err != nil {
		return value.Nil(), h.RuntimeErrorf("sqlite_close: %v", err)
	}
	return value.Nil(), nil
}
