package memory

import (
	"testing"

	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return NewStore()
	})
}
