package sqlerr

import "fmt"

// Code is a driver-independent category for a Postgres SQLSTATE.
type Code string

const (
	Other                Code = "other"
	NotNullViolation     Code = "not_null_violation"
	ForeignKeyViolation  Code = "foreign_key_violation"
	UniqueViolation      Code = "unique_violation"
	CheckViolation       Code = "check_violation"
	ExclusionViolation   Code = "exclusion_violation"
	StringDataTruncation Code = "string_data_right_truncation"
	NumericOutOfRange    Code = "numeric_value_out_of_range"
	InvalidTextRep       Code = "invalid_text_representation"
	UndefinedTable       Code = "undefined_table"
	UndefinedColumn      Code = "undefined_column"
	ConnectionException  Code = "connection_exception"
	TooManyConnections   Code = "too_many_connections"
	CannotConnectNow     Code = "cannot_connect_now"
	AdminShutdown        Code = "admin_shutdown"
	QueryCanceled        Code = "query_canceled"
	DeadlockDetected     Code = "deadlock_detected"
	SerializationFailure Code = "serialization_failure"
)

// MapCode maps a SQLSTATE onto a Code.
//
// Class 08 (connection exception) is matched by prefix since Postgres has
// several specific codes in it.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23502":
		return NotNullViolation
	case "23503":
		return ForeignKeyViolation
	case "23505":
		return UniqueViolation
	case "23514":
		return CheckViolation
	case "23P01":
		return ExclusionViolation
	case "22001":
		return StringDataTruncation
	case "22003":
		return NumericOutOfRange
	case "22P02":
		return InvalidTextRep
	case "42P01":
		return UndefinedTable
	case "42703":
		return UndefinedColumn
	case "53300":
		return TooManyConnections
	case "57P03":
		return CannotConnectNow
	case "57P01":
		return AdminShutdown
	case "57014":
		return QueryCanceled
	case "40P01":
		return DeadlockDetected
	case "40001":
		return SerializationFailure
	}

	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionException
	}

	return Other
}

// Severity is the Postgres message severity.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity maps the raw severity string, defaulting to ERROR.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice,
		SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}

// Error is a normalized Postgres error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (pe *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %s", pe.Severity, pe.DatabaseCode, pe.Message)
}

func (pe *Error) Unwrap() error {
	return pe.driverErr
}
