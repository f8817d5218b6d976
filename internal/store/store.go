// Package store joins the reservation and ledger repositories under one
// transaction boundary.
package store

import (
	"context"

	"github.com/BruksfildServices01/salon-reserve/internal/domain/points"
	"github.com/BruksfildServices01/salon-reserve/internal/domain/reservation"
)

type Store interface {
	reservation.Repository
	points.Repository
}

// TxManager runs fn as one atomic unit. fn must only use the Store it is
// given; returning an error rolls every write back.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Database is a Store that can also open transactions.
type Database interface {
	Store
	TxManager
}
