package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// maxChainDepth bounds the unwrap walk so a cyclic Unwrap cannot spin forever.
const maxChainDepth = 16

// SQLSTATE classes a checkout retry can recover from.
const (
	sqlStateSerialization = "40001"
	sqlStateDeadlock      = "40P01"
)

// PGDiag is the server-side diagnostic carried by a postgres driver error.
type PGDiag struct {
	Code       string `json:"code"`
	Message    string `json:"message,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Constraint string `json:"constraint,omitempty"`
}

// ErrorDump is the log-only view of an error. It never reaches clients.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	Postgres   *PGDiag  `json:"postgres,omitempty"`
	// Retryable marks serialization failures and deadlocks.
	Retryable bool `json:"retryable,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error(), Postgres: postgresDiag(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e, i := err, 0; e != nil && i < maxChainDepth; e, i = errors.Unwrap(e), i+1 {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if d.Postgres != nil {
		d.Retryable = d.Postgres.Code == sqlStateSerialization || d.Postgres.Code == sqlStateDeadlock
	}
	return d
}

// LogFields flattens the dump for structured logging.
func (d ErrorDump) LogFields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if pg := d.Postgres; pg != nil {
		fields["pg_code"] = pg.Code
		fields["pg_message"] = pg.Message
		fields["pg_detail"] = pg.Detail
		fields["pg_table"] = pg.Table
		fields["pg_column"] = pg.Column
		fields["pg_constraint"] = pg.Constraint
	}
	if d.Retryable {
		fields["retryable"] = true
	}
	return fields
}

// postgresDiag handles both drivers in the tree: pgx under gorm and lib/pq.
func postgresDiag(err error) *PGDiag {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDiag{
			Code:       pgxErr.Code,
			Message:    pgxErr.Message,
			Detail:     pgxErr.Detail,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDiag{
			Code:       string(pqErr.Code),
			Message:    pqErr.Message,
			Detail:     pqErr.Detail,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
		}
	}
	return nil
}
