package main

import (
	"fmt"

	"github.com/rpgo/actuarial-engine/internal/domain"
	"github.com/rpgo/actuarial-engine/internal/store/sqlite"
	"github.com/rpgo/actuarial-engine/internal/tables"
)

// tableSources assembles the lookup chain: the tables directory first, then
// the SQLite store, then the built-in tables. Flags win over engine settings.
// The returned close function releases the store.
func (o *cliOptions) tableSources(settings domain.EngineSettings) (tables.ChainSource, func() error, error) {
	dir := o.tablesDir
	if dir == "" {
		dir = settings.TablesDir
	}
	db := o.tablesDB
	if db == "" {
		db = settings.TablesDB
	}

	var chain tables.ChainSource
	closeFn := func() error { return nil }
	if dir != "" {
		chain = append(chain, tables.NewFileSource(dir))
	}
	if db != "" {
		store, err := sqlite.New(db)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open tables database: %w", err)
		}
		chain = append(chain, store)
		closeFn = store.Close
	}
	chain = append(chain, tables.BuiltinSource{})
	o.logger.Debug("table sources ready", "dir", dir, "db", db, "sources", len(chain))
	return chain, closeFn, nil
}

// provider wraps tableSources in a caching Provider.
func (o *cliOptions) provider(settings domain.EngineSettings) (*tables.Provider, func() error, error) {
	chain, closeFn, err := o.tableSources(settings)
	if err != nil {
		return nil, nil, err
	}
	return tables.NewProvider(chain, tables.NewCache()), closeFn, nil
}
