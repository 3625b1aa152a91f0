package bse

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Ошибки генератора референсных номеров
var (
	ErrEmptyMemberID = errors.New("bse: member id is required for reference number")
)

// ReferenceGenerator выдает уникальные референсные номера поручений
// (UniqueRefNo протокола). Номер служит корреляционным полем биржи
// и внутренним идемпотентным ключом, поэтому обязан быть уникальным
// среди всех поручений участника за все время.
//
// Формат: ГГГГММДД + 11-значный счетчик (19 символов - лимит поля).
// Счетчик стартует от микросекунд с начала суток и монотонно растет
// per member: конкурентные вызовы одного участника никогда не дают
// дубликат (защита мьютексом + bump при совпадении).
type ReferenceGenerator struct {
	mu      sync.Mutex
	lastSeq map[string]uint64
	now     func() time.Time
}

// NewReferenceGenerator создает новый генератор
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{
		lastSeq: make(map[string]uint64),
		now:     time.Now,
	}
}

// Generate возвращает новый уникальный референсный номер для участника.
// Ошибка генерации прерывает создание поручения до любого сетевого
// взаимодействия - частичная запись не персистится.
func (g *ReferenceGenerator) Generate(memberID string) (string, error) {
	if memberID == "" {
		return "", ErrEmptyMemberID
	}

	now := g.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	seq := uint64(now.Sub(midnight).Microseconds())

	g.mu.Lock()
	if last, ok := g.lastSeq[memberID]; ok && seq <= last {
		seq = last + 1
	}
	g.lastSeq[memberID] = seq
	g.mu.Unlock()

	return fmt.Sprintf("%s%011d", now.Format("20060102"), seq), nil
}
