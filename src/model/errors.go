package model

import "errors"

// ErrNotFound is returned when no row exists for the given user and id.
var ErrNotFound = errors.New("record not found")

func checkAffected(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
