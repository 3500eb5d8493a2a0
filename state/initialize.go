package state

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// newLocalEnv creates a new LocalEnv instance with default values. Logger is
// a no-op until configuration is loaded.
func newLocalEnv() *LocalEnv {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &LocalEnv{
		Log:     zap.NewNop(),
		Session: id,
		start:   time.Now(),
	}
}
