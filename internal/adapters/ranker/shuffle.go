package ranker

import (
	"math/rand/v2"
	"sync"

	"github.com/samber/lo"

	"content-dashboard/internal/domain"
)

// Random перемешивает ленту тасованием Фишера–Йетса: каждая карточка
// с равной вероятностью попадает на любую позицию.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ domain.ShuffleStrategy = (*Random)(nil)

// NewRandom создаёт стратегию на глобальном генераторе.
func NewRandom() *Random {
	return &Random{}
}

// NewSeeded создаёт воспроизводимую стратегию.
func NewSeeded(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Shuffle перемешивает срез на месте.
func (r *Random) Shuffle(items []domain.ContentItem) {
	swap := func(i, j int) { items[i], items[j] = items[j], items[i] }
	if r.rng == nil {
		rand.Shuffle(len(items), swap)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(len(items), swap)
}

// Identity сохраняет порядок вставки. Используется в тестах.
type Identity struct{}

// Shuffle ничего не делает.
func (Identity) Shuffle([]domain.ContentItem) {}

// Func позволяет передать функцию как стратегию.
type Func func(items []domain.ContentItem)

// Shuffle вызывает f.
func (f Func) Shuffle(items []domain.ContentItem) { f(items) }

// DeduplicateByID удаляет карточки с повторяющимся ID, оставляя первую.
func DeduplicateByID(items []domain.ContentItem) []domain.ContentItem {
	return lo.UniqBy(items, func(item domain.ContentItem) string { return item.ID })
}
