package service

import (
	"github.com/openvolley/scoresheet/internal/adapters/repository"
	"github.com/openvolley/scoresheet/internal/domain/sides"
	"github.com/openvolley/scoresheet/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the intake queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStoreDriver selects the memory or sqlite store. path is only used by
// sqlite.
func WithStoreDriver(driver, path string) Option {
	return func(s *Service) {
		if driver != "" {
			s.storeDriver = driver
		}
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithStore injects an already opened store. The service does not close it.
// Stats and logs report the driver of the injected store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
		s.storeDriver = driverOf(store)
	}
}

func driverOf(store repository.Store) string {
	switch store.(type) {
	case *repository.MemoryStore:
		return DriverMemory
	case *repository.SQLiteStore:
		return DriverSQLite
	default:
		return DriverCustom
	}
}

// WithSanctionRows sets the number of sanction rows on the scoresheet.
func WithSanctionRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sanctionRows = n
		}
	}
}

// WithDefaultView sets the view used when a request names none.
func WithDefaultView(v sides.View) Option {
	return func(s *Service) {
		if v == sides.ViewFirstReferee || v == sides.ViewSecondReferee {
			s.defaultView = v
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
