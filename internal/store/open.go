package store

import "fmt"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverRemote = "remote"
	DriverMemory = "memory"
)

// Open opens the store for driver. path is the SQLite database file and
// baseURL the project API root of the remote store.
func Open(driver, path, baseURL string) (Store, error) {
	switch driver {
	case DriverSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverRemote:
		r, err := NewRemote(baseURL, nil)
		if err != nil {
			return nil, err
		}
		return r, nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
