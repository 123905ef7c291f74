// Package memory implementa los puertos de persistencia en memoria con unidades de
// trabajo atómicas y control optimista de versiones (gana el primero que confirma).
// Se usa en tests y con STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type stockKey struct{ committenteID, productID string }

type lineKey struct{ sessionID, productID string }

// Store estado confirmado. Las lecturas copian bajo RLock; una confirmación aplica
// todas sus escrituras bajo Lock, así ningún lector ve un movimiento a medias.
type Store struct {
	mu sync.RWMutex

	committenti map[string]entity.Committente
	products    map[string]entity.Product
	causali     map[string]entity.Causale
	udcTypes    map[string]entity.UDCType
	udcs        map[string]entity.UDC
	stock       map[stockKey]entity.StockLevel
	movements   map[string]entity.Movement
	movOrder    []string
	counts      map[string]entity.InventoryCount
	lines       map[lineKey]entity.CountLine
	lineOrder   map[string][]string // sessionID -> productIDs en orden de alta
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		committenti: make(map[string]entity.Committente),
		products:    make(map[string]entity.Product),
		causali:     make(map[string]entity.Causale),
		udcTypes:    make(map[string]entity.UDCType),
		udcs:        make(map[string]entity.UDC),
		stock:       make(map[stockKey]entity.StockLevel),
		movements:   make(map[string]entity.Movement),
		counts:      make(map[string]entity.InventoryCount),
		lines:       make(map[lineKey]entity.CountLine),
		lineOrder:   make(map[string][]string),
	}
}

// Repos repositorios fuera de transacción (lecturas del último estado confirmado).
func (s *Store) Repos() inventory.Repos {
	return newRepos(s, nil)
}

// Run ejecuta fn en una unidad de trabajo. Si fn falla se descarta todo;
// si otra unidad confirmó antes sobre las mismas claves devuelve domain.ErrWriteConflict.
func (s *Store) Run(ctx context.Context, fn func(r inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u := newUnitOfWork()
	if err := fn(newRepos(s, u)); err != nil {
		return err
	}
	return s.commit(u)
}

// autocommit escritura suelta fuera de transacción (equivalente a un Exec sobre el pool).
func (s *Store) autocommit(fn func(u *unitOfWork) error) error {
	u := newUnitOfWork()
	if err := fn(u); err != nil {
		return err
	}
	return s.commit(u)
}

func (s *Store) commit(u *unitOfWork) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validación: ninguna clave escrita cambió desde que la unidad la leyó.
	for k, base := range u.stockBase {
		if s.stock[k].Version != base {
			return domain.ErrWriteConflict
		}
	}
	for id, base := range u.udcBase {
		if s.udcs[id].Version != base {
			return domain.ErrWriteConflict
		}
	}
	for id, base := range u.countBase {
		if s.counts[id].Version != base {
			return domain.ErrWriteConflict
		}
	}
	for id := range u.newCounts {
		if _, exists := s.counts[id]; exists {
			return domain.ErrDuplicate
		}
	}
	for _, m := range u.newMovements {
		if _, exists := s.movements[m.ID]; exists {
			return domain.ErrDuplicate
		}
	}
	for id := range u.decisions {
		if cur, ok := s.movements[id]; ok && cur.Status != entity.StatusPending {
			return domain.ErrWriteConflict
		}
	}

	// Aplicación.
	for k, v := range u.stock {
		s.stock[k] = v
	}
	for id, v := range u.udcs {
		s.udcs[id] = v
	}
	for _, m := range u.newMovements {
		if d, ok := u.decisions[m.ID]; ok {
			m = d
		}
		s.movements[m.ID] = m
		s.movOrder = append(s.movOrder, m.ID)
	}
	for id, m := range u.decisions {
		s.movements[id] = m
	}
	for id, c := range u.newCounts {
		s.counts[id] = c
	}
	for id, c := range u.counts {
		s.counts[id] = c
	}
	for k, l := range u.lines {
		if _, exists := s.lines[k]; !exists {
			s.lineOrder[k.sessionID] = append(s.lineOrder[k.sessionID], k.productID)
		}
		s.lines[k] = l
	}
	return nil
}

// unitOfWork escrituras pendientes y versiones base de una transacción.
type unitOfWork struct {
	stock     map[stockKey]entity.StockLevel
	stockBase map[stockKey]int64

	udcs    map[string]entity.UDC
	udcBase map[string]int64

	newMovements []entity.Movement
	decisions    map[string]entity.Movement

	newCounts map[string]entity.InventoryCount
	counts    map[string]entity.InventoryCount
	countBase map[string]int64

	lines     map[lineKey]entity.CountLine
	lineOrder map[string][]string
}

func newUnitOfWork() *unitOfWork {
	return &unitOfWork{
		stock:     make(map[stockKey]entity.StockLevel),
		stockBase: make(map[stockKey]int64),
		udcs:      make(map[string]entity.UDC),
		udcBase:   make(map[string]int64),
		decisions: make(map[string]entity.Movement),
		newCounts: make(map[string]entity.InventoryCount),
		counts:    make(map[string]entity.InventoryCount),
		countBase: make(map[string]int64),
		lines:     make(map[lineKey]entity.CountLine),
		lineOrder: make(map[string][]string),
	}
}

// ── Datos de referencia (los administra el catálogo externo) ─────────────────

// AddCommittente registra un committente.
func (s *Store) AddCommittente(c entity.Committente) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committenti[c.ID] = cloneCommittente(c)
}

// AddProduct registra un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddCausale registra una causale.
func (s *Store) AddCausale(c entity.Causale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.causali[c.Code] = c
}

// AddUDCType registra un tipo de UDC.
func (s *Store) AddUDCType(t entity.UDCType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.udcTypes[t.ID] = t
}

// AddUDC registra una UDC; el volumen máximo se toma del tipo.
func (s *Store) AddUDC(u entity.UDC) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.udcTypes[u.TypeID]
	if !ok {
		return domain.ErrNotFound
	}
	u.VolumeMaxCM3 = t.VolumeMaxCM3
	if u.VolumeOccupiedCM3 < 0 || u.VolumeOccupiedCM3 > u.VolumeMaxCM3 {
		return domain.ErrInvalidInput
	}
	if u.State == "" {
		u.State = entity.UDCStateFree
	}
	s.udcs[u.ID] = u
	return nil
}
