package postgres

import "griddemo/internal/storage"

func init() {
	// registers the backend factory
	storage.Register("postgres", New)
}
