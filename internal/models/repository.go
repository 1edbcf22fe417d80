package models

import "errors"

var ErrDonorNotFound = errors.New("donor not found")

type Repository interface {
	AddDonation(record *DonationRecord) error
	ListDonations(limit int) ([]*DonationRecord, error)

	// AddToDonorTotal adds amount to the donor's total, creating the donor
	// at level 1 when it does not exist yet.
	AddToDonorTotal(name string, amount float64, timestamp int64) (*Donor, error)
	GetDonor(name string) (*Donor, error)
	// ListDonors returns donors ordered by total descending.
	ListDonors(limit int) ([]*Donor, error)
	// SeedDonors inserts donors whose names are not present yet.
	SeedDonors(donors []*Donor) error

	Close() error
}
