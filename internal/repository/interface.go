package repository

import (
	"context"
	"errors"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// ErrNotFound is returned when a requested record does not exist in the database.
var ErrNotFound = errors.New("not found")
