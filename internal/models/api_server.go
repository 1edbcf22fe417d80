package models

// APIServer is the HTTP front of the service.
type APIServer interface {
	Start()
	Shutdown() error
}
