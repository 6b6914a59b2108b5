package storage

import (
	"fmt"

	"flighttrack/internal/models"
)

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStorageFailure, op, err)
}
