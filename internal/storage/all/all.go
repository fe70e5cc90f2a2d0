// Package all registers every storage backend with the factory. Binaries
// blank-import it so the backend can be selected by configuration alone.
package all

import (
	_ "sheetload/internal/storage/mssql"
	_ "sheetload/internal/storage/postgres"
	_ "sheetload/internal/storage/sqlite"
)
