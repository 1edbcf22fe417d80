package models

// Donor is an accumulated donor record. Rank is not stored: it is always
// derived from TotalDonated.
type Donor struct {
	// ID is the unique identifier of the donor.
	ID string `json:"id" gorm:"column:id;primaryKey"`
	// Name is the display name, unique across donors.
	Name string `json:"name" gorm:"column:name;uniqueIndex;not null"`
	// TotalDonated is the sum of all completed donations.
	TotalDonated float64 `json:"total_donated" gorm:"column:total_donated;not null"`
	// Level is an informational level shown next to the name.
	Level int `json:"level" gorm:"column:level"`
	// LastDonation is the Unix timestamp of the latest donation.
	LastDonation int64 `json:"last_donation" gorm:"column:last_donation;index"`
}

func (Donor) TableName() string {
	return "donors"
}

// DonationRecord is a completed donation kept in the ledger.
type DonationRecord struct {
	ID        string  `json:"id" gorm:"column:id;primaryKey"`
	Donor     string  `json:"donor" gorm:"column:donor;index;not null"`
	Amount    float64 `json:"amount" gorm:"column:amount;not null"`
	Message   string  `json:"message,omitempty" gorm:"column:message;size:200"`
	Method    string  `json:"method" gorm:"column:method"`
	Rank      string  `json:"rank" gorm:"column:rank"`
	Reference string  `json:"reference" gorm:"column:reference"`
	Timestamp int64   `json:"timestamp" gorm:"column:timestamp;index"`
}

func (DonationRecord) TableName() string {
	return "donations"
}
