package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/magazzino-api/internal/application/inventory"
	"github.com/jhoicas/magazzino-api/internal/domain"
	"github.com/jhoicas/magazzino-api/internal/domain/entity"
	"github.com/jhoicas/magazzino-api/internal/domain/repository"
)

var (
	_ repository.CommittenteRepository    = committenteRepo{}
	_ repository.ProductRepository        = productRepo{}
	_ repository.CausaleRepository        = causaleRepo{}
	_ repository.StockLevelRepository     = stockRepo{}
	_ repository.MovementRepository       = movementRepo{}
	_ repository.UDCRepository            = udcRepo{}
	_ repository.InventoryCountRepository = countRepo{}
)

// base comparte el almacén y, dentro de una transacción, la unidad de trabajo.
type base struct {
	s *Store
	u *unitOfWork // nil fuera de transacción
}

// write ejecuta fn en la unidad actual o en una de un solo uso.
func (b base) write(fn func(u *unitOfWork) error) error {
	if b.u != nil {
		return fn(b.u)
	}
	return b.s.autocommit(fn)
}

func newRepos(s *Store, u *unitOfWork) inventory.Repos {
	b := base{s: s, u: u}
	return inventory.Repos{
		Committenti: committenteRepo{b},
		Products:    productRepo{b},
		Causali:     causaleRepo{b},
		Stock:       stockRepo{b},
		Movements:   movementRepo{b},
		UDCs:        udcRepo{b},
		Counts:      countRepo{b},
	}
}

// ── Committenti / Products / Causali (solo lectura) ──────────────────────────

type committenteRepo struct{ base }

func (r committenteRepo) GetByID(_ context.Context, id string) (*entity.Committente, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.committenti[id]
	if !ok {
		return nil, nil
	}
	c = cloneCommittente(c)
	return &c, nil
}

type productRepo struct{ base }

func (r productRepo) GetByID(_ context.Context, committenteID, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok || p.CommittenteID != committenteID {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) GetBySKU(_ context.Context, committenteID, sku string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.CommittenteID == committenteID && p.SKU == sku {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r productRepo) ListByIDs(_ context.Context, committenteID string, ids []string) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := r.s.products[id]
		if !ok || p.CommittenteID != committenteID {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

type causaleRepo struct{ base }

func (r causaleRepo) GetByCode(_ context.Context, code string) (*entity.Causale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.causali[code]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

type stockRepo struct{ base }

func (r stockRepo) Get(_ context.Context, committenteID, productID string) (*entity.StockLevel, error) {
	k := stockKey{committenteID, productID}
	if r.u != nil {
		if l, ok := r.u.stock[k]; ok {
			return &l, nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.stock[k]
	if !ok {
		l = entity.StockLevel{CommittenteID: committenteID, ProductID: productID, Quantity: decimal.Zero}
	}
	return &l, nil
}

// GetForUpdate en memoria no bloquea: el conflicto se detecta al confirmar.
func (r stockRepo) GetForUpdate(ctx context.Context, committenteID, productID string) (*entity.StockLevel, error) {
	return r.Get(ctx, committenteID, productID)
}

func (r stockRepo) Save(ctx context.Context, level *entity.StockLevel) error {
	return r.write(func(u *unitOfWork) error {
		k := stockKey{level.CommittenteID, level.ProductID}
		pending, isPending := u.stock[k]
		r.s.mu.RLock()
		stored := r.s.stock[k].Version
		r.s.mu.RUnlock()

		visible := stored
		if isPending {
			visible = pending.Version
		}
		if level.Version != visible {
			return domain.ErrWriteConflict
		}
		if _, ok := u.stockBase[k]; !ok {
			u.stockBase[k] = stored
		}
		next := *level
		next.Version = visible + 1
		u.stock[k] = next
		level.Version = next.Version
		return nil
	})
}

func (r stockRepo) ListLowStock(_ context.Context, committenteID string) ([]entity.LowStockItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []entity.LowStockItem
	for _, p := range r.s.products {
		if p.CommittenteID != committenteID || !p.MinimumStock.GreaterThan(decimal.Zero) {
			continue
		}
		qty := decimal.Zero
		if l, ok := r.s.stock[stockKey{committenteID, p.ID}]; ok {
			qty = l.Quantity
		}
		if qty.GreaterThan(p.MinimumStock) {
			continue
		}
		out = append(out, entity.LowStockItem{
			ProductID:    p.ID,
			SKU:          p.SKU,
			Description:  p.Description,
			Quantity:     qty,
			MinimumStock: p.MinimumStock,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Deficit(), out[j].Deficit()
		if !di.Equal(dj) {
			return di.GreaterThan(dj)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

// ── Movements ────────────────────────────────────────────────────────────────

type movementRepo struct{ base }

func (r movementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.write(func(u *unitOfWork) error {
		u.newMovements = append(u.newMovements, cloneMovement(*m))
		return nil
	})
}

func (r movementRepo) GetByID(_ context.Context, committenteID, id string) (*entity.Movement, error) {
	m, ok := r.visible(id)
	if !ok || m.CommittenteID != committenteID {
		return nil, nil
	}
	return &m, nil
}

func (r movementRepo) GetForUpdate(ctx context.Context, committenteID, id string) (*entity.Movement, error) {
	return r.GetByID(ctx, committenteID, id)
}

func (r movementRepo) visible(id string) (entity.Movement, bool) {
	if r.u != nil {
		if d, ok := r.u.decisions[id]; ok {
			return cloneMovement(d), true
		}
		for _, m := range r.u.newMovements {
			if m.ID == id {
				return cloneMovement(m), true
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return entity.Movement{}, false
	}
	return cloneMovement(m), true
}

func (r movementRepo) UpdateDecision(_ context.Context, m *entity.Movement) error {
	return r.write(func(u *unitOfWork) error {
		cur, ok := movementRepo{base{s: r.s, u: u}}.visible(m.ID)
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Status != entity.StatusPending {
			return domain.ErrWriteConflict
		}
		next := cur
		next.Status = m.Status
		next.DecidedBy = m.DecidedBy
		next.DecidedAt = m.DecidedAt
		u.decisions[m.ID] = cloneMovement(next)
		return nil
	})
}

func (r movementRepo) ListByProduct(_ context.Context, committenteID, productID string, limit, offset int) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Movement
	skipped := 0
	for i := len(r.s.movOrder) - 1; i >= 0; i-- {
		m := r.s.movements[r.s.movOrder[i]]
		if m.CommittenteID != committenteID || m.ProductID != productID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		c := cloneMovement(m)
		out = append(out, &c)
	}
	return out, nil
}

// ── UDC ──────────────────────────────────────────────────────────────────────

type udcRepo struct{ base }

func (r udcRepo) GetByID(_ context.Context, id string) (*entity.UDC, error) {
	if r.u != nil {
		if v, ok := r.u.udcs[id]; ok {
			return &v, nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.udcs[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r udcRepo) GetForUpdate(ctx context.Context, id string) (*entity.UDC, error) {
	return r.GetByID(ctx, id)
}

func (r udcRepo) Save(_ context.Context, udc *entity.UDC) error {
	return r.write(func(u *unitOfWork) error {
		pending, isPending := u.udcs[udc.ID]
		r.s.mu.RLock()
		stored, exists := r.s.udcs[udc.ID]
		r.s.mu.RUnlock()
		if !exists {
			return domain.ErrNotFound
		}
		visible := stored.Version
		if isPending {
			visible = pending.Version
		}
		if udc.Version != visible {
			return domain.ErrWriteConflict
		}
		if udc.VolumeOccupiedCM3 < 0 || udc.VolumeOccupiedCM3 > stored.VolumeMaxCM3 {
			return domain.ErrInvalidInput
		}
		if _, ok := u.udcBase[udc.ID]; !ok {
			u.udcBase[udc.ID] = stored.Version
		}
		next := stored
		next.VolumeOccupiedCM3 = udc.VolumeOccupiedCM3
		next.State = udc.State
		next.UpdatedAt = udc.UpdatedAt
		next.Version = visible + 1
		u.udcs[udc.ID] = next
		udc.Version = next.Version
		return nil
	})
}

func (r udcRepo) ListCandidates(_ context.Context, c entity.UDCCriteria) ([]*entity.UDC, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.UDC
	for _, v := range r.s.udcs {
		if v.State != entity.UDCStateFree && v.State != entity.UDCStateInUse {
			continue
		}
		if c.TypeID != "" && v.TypeID != c.TypeID {
			continue
		}
		if c.LocationID != "" && v.LocationID != c.LocationID {
			continue
		}
		v := v
		out = append(out, &v)
	}
	return out, nil
}

// ── Inventory counts ─────────────────────────────────────────────────────────

type countRepo struct{ base }

func (r countRepo) Create(_ context.Context, s *entity.InventoryCount) error {
	return r.write(func(u *unitOfWork) error {
		if _, ok := u.newCounts[s.ID]; ok {
			return domain.ErrDuplicate
		}
		u.newCounts[s.ID] = cloneCount(*s)
		return nil
	})
}

func (r countRepo) visible(id string) (entity.InventoryCount, bool) {
	if r.u != nil {
		if c, ok := r.u.counts[id]; ok {
			return cloneCount(c), true
		}
		if c, ok := r.u.newCounts[id]; ok {
			return cloneCount(c), true
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.counts[id]
	if !ok {
		return entity.InventoryCount{}, false
	}
	return cloneCount(c), true
}

func (r countRepo) GetByID(_ context.Context, committenteID, id string) (*entity.InventoryCount, error) {
	c, ok := r.visible(id)
	if !ok || c.CommittenteID != committenteID {
		return nil, nil
	}
	return &c, nil
}

func (r countRepo) GetForUpdate(ctx context.Context, committenteID, id string) (*entity.InventoryCount, error) {
	return r.GetByID(ctx, committenteID, id)
}

func (r countRepo) Save(_ context.Context, s *entity.InventoryCount) error {
	return r.write(func(u *unitOfWork) error {
		if created, ok := u.newCounts[s.ID]; ok {
			if s.Version != created.Version {
				return domain.ErrWriteConflict
			}
			next := cloneCount(*s)
			next.Version++
			u.newCounts[s.ID] = next
			s.Version = next.Version
			return nil
		}
		pending, isPending := u.counts[s.ID]
		r.s.mu.RLock()
		stored, exists := r.s.counts[s.ID]
		r.s.mu.RUnlock()
		if !exists {
			return domain.ErrNotFound
		}
		visible := stored.Version
		if isPending {
			visible = pending.Version
		}
		if s.Version != visible {
			return domain.ErrWriteConflict
		}
		if _, ok := u.countBase[s.ID]; !ok {
			u.countBase[s.ID] = stored.Version
		}
		next := cloneCount(*s)
		next.Version = visible + 1
		u.counts[s.ID] = next
		s.Version = next.Version
		return nil
	})
}

func (r countRepo) ListLines(_ context.Context, sessionID string) ([]*entity.CountLine, error) {
	var out []*entity.CountLine
	seen := make(map[string]struct{})

	r.s.mu.RLock()
	for _, productID := range r.s.lineOrder[sessionID] {
		k := lineKey{sessionID, productID}
		l := r.s.lines[k]
		if r.u != nil {
			if p, ok := r.u.lines[k]; ok {
				l = p
			}
		}
		l = cloneLine(l)
		out = append(out, &l)
		seen[productID] = struct{}{}
	}
	r.s.mu.RUnlock()

	if r.u != nil {
		for _, productID := range r.u.lineOrder[sessionID] {
			if _, ok := seen[productID]; ok {
				continue
			}
			l := cloneLine(r.u.lines[lineKey{sessionID, productID}])
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r countRepo) SaveLines(_ context.Context, lines []*entity.CountLine) error {
	return r.write(func(u *unitOfWork) error {
		for _, l := range lines {
			k := lineKey{l.SessionID, l.ProductID}
			if _, ok := u.lines[k]; !ok {
				u.lineOrder[l.SessionID] = append(u.lineOrder[l.SessionID], l.ProductID)
			}
			u.lines[k] = cloneLine(*l)
		}
		return nil
	})
}
