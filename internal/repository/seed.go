package repository

import (
	"time"

	"github.com/streamtip/donatio/internal/models"
)

// IllustrativeDonors is the demo leaderboard shipped with the donation page.
func IllustrativeDonors(now time.Time) []*models.Donor {
	ts := now.Unix()
	return []*models.Donor{
		{ID: "1", Name: "ki_kira_ki", TotalDonated: 25000, Level: 15, LastDonation: ts},
		{ID: "2", Name: "GamerPro2024", TotalDonated: 8500, Level: 12, LastDonation: ts},
		{ID: "3", Name: "SupportKing", TotalDonated: 3200, Level: 8, LastDonation: ts},
		{ID: "4", Name: "CasualFan", TotalDonated: 750, Level: 5, LastDonation: ts},
		{ID: "5", Name: "NewDonor", TotalDonated: 150, Level: 2, LastDonation: ts},
	}
}
