// Package store holds the baseline advice document stores.
package store

import (
	"context"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/assessment-advisor/internal/model"
)

// MaxKeyLen bounds question ids and categories accepted by Lookup.
const MaxKeyLen = 256

// AdviceLookup retrieves the baseline advice for a question and category.
// found is false when no document matches; err is reserved for store
// failures.
type AdviceLookup interface {
	Lookup(ctx context.Context, questionID string, category model.AdviceCategory) (text string, found bool, err error)
}

// AdviceStore is an AdviceLookup that can be seeded.
type AdviceStore interface {
	AdviceLookup

	// Insert appends docs. Duplicate (question_id, category) pairs are
	// allowed; Lookup returns the earliest.
	Insert(ctx context.Context, docs []model.AdviceDoc) (int64, error)
	// Truncate removes every document.
	Truncate(ctx context.Context) error
	// Replace swaps the whole collection for docs. On failure the previous
	// documents stay in place.
	Replace(ctx context.Context, docs []model.AdviceDoc) (int64, error)

	Migrate(ctx context.Context) error
	Close() error
}

// validKey reports whether a lookup key is worth sending to the store.
func validKey(questionID string, category model.AdviceCategory) bool {
	for _, k := range []string{questionID, string(category)} {
		if k == "" || len(k) > MaxKeyLen || !utf8.ValidString(k) {
			return false
		}
	}
	return true
}

// warnDuplicate logs a lookup that matched more than one document.
func warnDuplicate(backend, questionID string, category model.AdviceCategory) {
	zap.L().Warn("multiple advice documents match, using the first",
		zap.String("store", backend),
		zap.String("question_id", questionID),
		zap.String("category", string(category)),
	)
}
