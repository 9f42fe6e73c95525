package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsUniqueViolation сообщает, нарушен ли уникальный индекс. Если constraint
// не пуст, проверяется и имя ограничения.
func IsUniqueViolation(err error, constraint string) bool {
	return isPQError(err, codeUniqueViolation, constraint)
}

// IsForeignKeyViolation сообщает о нарушении внешнего ключа.
func IsForeignKeyViolation(err error, constraint string) bool {
	return isPQError(err, codeForeignKeyViolation, constraint)
}

func isPQError(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
