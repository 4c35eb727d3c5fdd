package storage_test

import (
	"testing"

	"github.com/unowned-ai/aquarium/pkg/storage"
	"github.com/unowned-ai/aquarium/pkg/storage/storagetest"
)

func TestMemoryBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return storage.NewMemory()
	})
}
