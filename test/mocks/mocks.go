// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/list_store.go -destination=list_store_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/list_service.go -destination=list_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/audit.go -destination=audit_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
