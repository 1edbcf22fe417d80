package models

// SoundHook plays the alert sound for a donation. Fire and forget.
type SoundHook interface {
	PlayNotificationSound(amount float64)
}

// AlertRelay forwards a presented notification to an external channel.
type AlertRelay interface {
	Name() string
	Relay(notification *DonationNotification) error
}
