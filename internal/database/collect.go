package database

import "fmt"

// NullText is what a database NULL looks like once collected.
const NullText = "NULL"

// Collect drains cur into memory, converting every cell to text.
// Rows shorter than the header are padded with NullText.
func Collect(cur Cursor) (*QueryResult, error) {
	columns := cur.Columns()
	result := &QueryResult{
		Columns: columns,
		Rows:    make([][]string, 0, 64),
		HasRows: true,
	}

	for cur.Next() {
		values, err := cur.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]string, len(columns))
		for i := range row {
			if i < len(values) {
				row[i] = CellText(values[i])
			} else {
				row[i] = NullText
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
