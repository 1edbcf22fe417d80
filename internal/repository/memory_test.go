package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamtip/donatio/internal/models"
)

func TestMemoryDB_SeedAndLeaderboard(t *testing.T) {
	db := NewMemoryDB()
	require.NoError(t, db.SeedDonors(IllustrativeDonors(time.Now())))

	donors, err := db.ListDonors(0)
	require.NoError(t, err)
	require.Len(t, donors, 5)
	assert.Equal(t, "ki_kira_ki", donors[0].Name)
	assert.Equal(t, "NewDonor", donors[4].Name)

	top, err := db.ListDonors(2)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	// Seeding again does not reset totals.
	_, err = db.AddToDonorTotal("NewDonor", 100, 1)
	require.NoError(t, err)
	require.NoError(t, db.SeedDonors(IllustrativeDonors(time.Now())))
	d, err := db.GetDonor("NewDonor")
	require.NoError(t, err)
	assert.Equal(t, 250.0, d.TotalDonated)
}

func TestMemoryDB_AddToDonorTotal(t *testing.T) {
	db := NewMemoryDB()

	d, err := db.AddToDonorTotal("fresh", 300, 10)
	require.NoError(t, err)
	assert.Equal(t, 300.0, d.TotalDonated)
	assert.Equal(t, 1, d.Level)
	assert.NotEmpty(t, d.ID)

	d, err = db.AddToDonorTotal("fresh", 200, 20)
	require.NoError(t, err)
	assert.Equal(t, 500.0, d.TotalDonated)
	assert.Equal(t, int64(20), d.LastDonation)

	_, err = db.GetDonor("missing")
	assert.ErrorIs(t, err, models.ErrDonorNotFound)
}

func TestMemoryDB_Donations(t *testing.T) {
	db := NewMemoryDB()

	require.NoError(t, db.AddDonation(&models.DonationRecord{ID: "a", Donor: "x", Amount: 100, Timestamp: 1}))
	require.NoError(t, db.AddDonation(&models.DonationRecord{ID: "b", Donor: "y", Amount: 200, Timestamp: 2}))
	assert.Error(t, db.AddDonation(&models.DonationRecord{ID: "a"}))

	records, err := db.ListDonations(10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ID)

	latest, err := db.ListDonations(1)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}
