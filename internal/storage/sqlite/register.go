package sqlite

import "sheetload/internal/storage"

func init() {
	storage.Register("sqlite", New)
}
