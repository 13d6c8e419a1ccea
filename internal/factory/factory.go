package factory

import (
	"fmt"

	"go-eye-sharpness/internal/config"
	"go-eye-sharpness/internal/storage"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage StorageType = "http"
	// AzureStorage for Azure blob storage
	AzureStorage StorageType = "azure"
	// LocalStorage for local file system
	LocalStorage StorageType = "local"
)

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
	// Enabled lists the storage types the configuration can serve
	Enabled() []StorageType
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(storage.WithTimeout(f.cfg.ImageFetchTimeout)), nil
	case AzureStorage:
		if !f.cfg.AzureEnabled() {
			return nil, fmt.Errorf("azure storage requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
		fetcher, err := storage.NewAzureImageFetcher(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case LocalStorage:
		if !f.cfg.LocalEnabled() {
			return nil, fmt.Errorf("local storage requires LOCAL_IMAGE_ROOT")
		}
		fetcher, err := storage.NewLocalImageFetcher(f.cfg.LocalImageRoot)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// Enabled lists the storage types the configuration can serve
func (f *storageFactory) Enabled() []StorageType {
	types := []StorageType{HTTPStorage}
	if f.cfg.AzureEnabled() {
		types = append(types, AzureStorage)
	}
	if f.cfg.LocalEnabled() {
		types = append(types, LocalStorage)
	}
	return types
}
