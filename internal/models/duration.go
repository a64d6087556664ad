package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Duration is stored as whole seconds (BIGINT).
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) Value() (driver.Value, error) {
	return int64(time.Duration(d) / time.Second), nil
}

func (d *Duration) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*d = Duration(time.Duration(v) * time.Second)
	case nil:
		*d = 0
	default:
		return fmt.Errorf("models.Duration: cannot scan %T", src)
	}
	return nil
}
