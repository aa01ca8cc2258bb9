// Package catalog manages seasons, episodes, attachments and exams. Deletes
// cascade explicitly inside one transaction; stored media is removed after
// the transaction commits.
package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"nextlevel/models"
	"nextlevel/services/apperr"

	"gorm.io/gorm"
)

// ObjectRemover deletes uploaded media by key.
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
}

type Catalog struct {
	db      *gorm.DB
	storage ObjectRemover
	now     func() time.Time
}

// New returns a catalog backed by db. storage may be nil, in which case
// media keys are never removed.
func New(db *gorm.DB, storage ObjectRemover) *Catalog {
	return &Catalog{db: db, storage: storage, now: time.Now}
}

// WithClock returns a copy of the catalog that evaluates release dates at now.
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	cp := *c
	cp.now = now
	return &cp
}

// removeObjects deletes keys from object storage. Failures are logged and
// never returned: the rows are already gone.
func (c *Catalog) removeObjects(ctx context.Context, keys []string) {
	if c.storage == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := c.storage.Delete(ctx, key); err != nil {
			log.Printf("[STORAGE] failed to delete %s: %v", key, err)
		}
	}
}

func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	return err
}

func forbidLearner(p models.Principal, visible bool, what string) error {
	if visible || p.IsAdmin() {
		return nil
	}
	return apperr.Forbidden(what + " is not available yet!")
}
