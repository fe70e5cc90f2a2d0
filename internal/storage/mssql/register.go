package mssql

import "sheetload/internal/storage"

func init() {
	storage.Register("mssql", New)
}
