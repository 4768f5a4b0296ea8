package query

import (
	"database/sql"
)

// ScanRows scans the current result set into a slice of column maps.
// A status-only result set has no columns and yields nil.
func ScanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, rows.Err()
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			val := values[i]
			if b, ok := val.([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = val
			}
		}

		results = append(results, record)
	}

	return results, rows.Err()
}

// ScanAll scans every result set produced by a statement batch, skipping
// status-only sets such as the trailing OK packet of a MySQL CALL
func ScanAll(rows *sql.Rows) ([][]map[string]interface{}, error) {
	var sets [][]map[string]interface{}
	for {
		set, err := ScanRows(rows)
		if err != nil {
			return nil, err
		}
		if set != nil {
			sets = append(sets, set)
		}
		if !rows.NextResultSet() {
			break
		}
	}
	return sets, rows.Err()
}
