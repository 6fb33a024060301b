package admin

import (
	"embed"
	"io/fs"
)

//go:embed views
var viewsFS embed.FS

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetViewsFS returns the embedded template tree rooted at views/
func GetViewsFS() fs.FS {
	sub, err := fs.Sub(viewsFS, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// GetMigrationsFS returns the embedded schema migrations
func GetMigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationsFS, "data/sql/migrations")
	if err != nil {
		panic(err)
	}
	return sub
}
