package content

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// nullTime scans a nullable date column into a *time.Time field.
type nullTime struct {
	dst **time.Time
}

func (n nullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n.dst = nil
	case time.Time:
		t := v
		*n.dst = &t
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
	return nil
}

// textArray scans a Postgres text[] (delivered as its text form by the
// database/sql bridge) into a string slice.
func textArray(dst *[]string) any {
	return pgtype.NewMap().SQLScanner(dst)
}

// nonNil keeps empty tag lists from being written as NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
