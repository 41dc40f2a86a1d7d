package engine

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/roach88/apothecary/internal/catalog"
	"github.com/roach88/apothecary/internal/store"
)

// Rand is the source of the engine's random choices.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Clock supplies creation timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// globalRand draws from the auto-seeded math/rand/v2 top-level source.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Engine records and edits potions in a store.
type Engine struct {
	store  *store.Store
	rand   Rand
	clock  Clock
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the source used to pick the category of mixed-tier
// combinations and to draw suggestions.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithClock sets the clock stamping new potions.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine operating on s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		rand:   globalRand{},
		clock:  SystemClock{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store the engine writes to.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Create records the combination of baseID with ingredients a and b.
//
// The combination is rejected when a and b are the same id, when any id is
// unknown, or when the unordered combination already exists. Otherwise the
// new potion is named, stamped, inserted under the next free potion id and
// saved before Create returns.
func (e *Engine) Create(baseID, a, b string) (catalog.Potion, error) {
	var created catalog.Potion
	err := e.store.Mutate(func(doc *catalog.Document) error {
		p, err := e.combine(doc, baseID, a, b)
		if err != nil {
			return err
		}
		doc.Potions[p.ID] = p
		created = p
		return nil
	})
	if err != nil {
		return catalog.Potion{}, fmt.Errorf("create combination: %w", err)
	}

	e.logger.Info("potion created",
		"id", created.ID,
		"name", created.Name,
		"category", created.Category,
	)
	return created, nil
}

// Preview validates a combination and returns the potion Create would record,
// without inserting or saving anything. Mixed-tier categories still consume
// a draw from the engine's Rand.
func (e *Engine) Preview(baseID, a, b string) (catalog.Potion, error) {
	return e.combine(e.store.Document(), baseID, a, b)
}

func (e *Engine) combine(doc *catalog.Document, baseID, a, b string) (catalog.Potion, error) {
	key := Key(baseID, a, b)

	if a == b {
		return catalog.Potion{}, &CombinationError{
			Code:    ErrCodeSameIngredient,
			Message: fmt.Sprintf("ingredient %q cannot be combined with itself", a),
			Key:     key,
		}
	}

	base, ok := doc.Bases[baseID]
	if !ok {
		return catalog.Potion{}, &CombinationError{
			Code:    ErrCodeUnknownBase,
			Message: fmt.Sprintf("base %q does not exist", baseID),
			Key:     key,
		}
	}
	ingA, err := lookupIngredient(doc, a, key)
	if err != nil {
		return catalog.Potion{}, err
	}
	ingB, err := lookupIngredient(doc, b, key)
	if err != nil {
		return catalog.Potion{}, err
	}

	if existing, found := doc.FindCombination(key); found {
		return catalog.Potion{}, &CombinationError{
			Code:     ErrCodeDuplicate,
			Message:  "combination already exists",
			Key:      key,
			Existing: existing.ID,
		}
	}

	category := e.category(ingA.Quality, ingB.Quality)
	return catalog.Potion{
		ID:          doc.NextPotionID(),
		Name:        PotionName(base.PotionType, category, ingA.Effect, ingB.Effect),
		Base:        baseID,
		Ingredient1: a,
		Ingredient2: b,
		Category:    category,
		CreatedAt:   catalog.NewTimestamp(e.clock.Now()),
	}, nil
}

func lookupIngredient(doc *catalog.Document, id, key string) (catalog.Ingredient, error) {
	ing, ok := doc.Ingredients[id]
	if !ok {
		return catalog.Ingredient{}, &CombinationError{
			Code:    ErrCodeUnknownIngredient,
			Message: fmt.Sprintf("ingredient %q does not exist", id),
			Key:     key,
		}
	}
	return ing, nil
}

// category returns the shared tier, or one of the two tiers at random when
// they differ.
func (e *Engine) category(a, b catalog.Quality) catalog.Quality {
	if a == b {
		return a
	}
	if e.rand.IntN(2) == 0 {
		return a
	}
	return b
}

// PotionName derives the display name of a potion. Remedy bases put a colon
// between the base category and the tier.
func PotionName(baseCategory catalog.BaseCategory, tier catalog.Quality, effectA, effectB string) string {
	if catalog.IsRemedy(baseCategory) {
		return fmt.Sprintf("%s : %s de %s et %s", baseCategory, tier, effectA, effectB)
	}
	return fmt.Sprintf("%s %s de %s et %s", baseCategory, tier, effectA, effectB)
}

// Delete removes the potion with the given id. Reports whether a record was
// removed; an absent id is not an error.
func (e *Engine) Delete(id string) (bool, error) {
	found, err := e.update(id, func(doc *catalog.Document, p catalog.Potion) {
		delete(doc.Potions, id)
	})
	if err != nil {
		return false, fmt.Errorf("delete potion: %w", err)
	}
	if found {
		e.logger.Info("potion deleted", "id", id)
	}
	return found, nil
}

// ToggleFavorite flips the favorite flag of a potion and returns the new
// value. An absent id returns false and changes nothing.
func (e *Engine) ToggleFavorite(id string) (bool, error) {
	var favorite bool
	_, err := e.update(id, func(doc *catalog.Document, p catalog.Potion) {
		p.IsFavorite = !p.IsFavorite
		doc.Potions[id] = p
		favorite = p.IsFavorite
	})
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return favorite, nil
}

// UpdateNotes replaces the notes of a potion verbatim; an empty text clears
// them. Reports whether the potion exists.
func (e *Engine) UpdateNotes(id, text string) (bool, error) {
	found, err := e.update(id, func(doc *catalog.Document, p catalog.Potion) {
		p.Notes = text
		doc.Potions[id] = p
	})
	if err != nil {
		return false, fmt.Errorf("update notes: %w", err)
	}
	return found, nil
}

// update applies fn to an existing potion and saves. Absent ids skip the save.
func (e *Engine) update(id string, fn func(doc *catalog.Document, p catalog.Potion)) (bool, error) {
	if _, ok := e.store.Document().Potions[id]; !ok {
		e.logger.Debug("potion not found", "id", id)
		return false, nil
	}
	err := e.store.Mutate(func(doc *catalog.Document) error {
		fn(doc, doc.Potions[id])
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
