package postgres

import "sheetload/internal/storage"

func init() {
	storage.Register("postgres", New)
}
