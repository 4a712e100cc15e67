package storage

import "errors"

// ErrWalletNotFound is returned when no wallet matches the requested user or wallet ID.
var ErrWalletNotFound = errors.New("wallet not found")

// ErrWalletExists is returned when a wallet is created for a user that already has one.
var ErrWalletExists = errors.New("wallet already exists")

// ErrVersionConflict is returned when a wallet write loses its compare-and-swap on the version attribute.
var ErrVersionConflict = errors.New("wallet version conflict")

// ErrAlreadySettled is returned when a PIX transaction is no longer pending at write time.
var ErrAlreadySettled = errors.New("pix transaction already settled")

// ErrPixTransactionNotFound is returned when no PIX transaction matches the provider transaction ID.
var ErrPixTransactionNotFound = errors.New("pix transaction not found")

// ErrPixTransactionExists is returned when a PIX transaction is recorded twice for the same provider transaction ID.
var ErrPixTransactionExists = errors.New("pix transaction already exists")

// ErrSnapshotNotFound is returned when no live snapshot exists for a round.
var ErrSnapshotNotFound = errors.New("round snapshot not found")

// ErrSnapshotExists is returned when a live snapshot already exists for a round.
var ErrSnapshotExists = errors.New("round snapshot already exists")
