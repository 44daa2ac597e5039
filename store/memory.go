package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryProductStore keeps products in process memory. It honours the same
// query semantics and code uniqueness as the MongoDB adapter and preserves
// insertion order as the natural order.
type MemoryProductStore struct {
	mu       sync.RWMutex
	order    []primitive.ObjectID
	products map[primitive.ObjectID]models.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[primitive.ObjectID]models.Product)}
}

func (s *MemoryProductStore) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codeTaken(p.Code, primitive.NilObjectID) {
		return ErrDuplicateKey
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = cloneProduct(*p)
	s.order = append(s.order, p.ID)
	return nil
}

func (s *MemoryProductStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return cloneProduct(p), nil
}

func (s *MemoryProductStore) FindRefs(_ context.Context, ids []primitive.ObjectID) ([]models.ProductRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := []models.ProductRef{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			refs = append(refs, models.ProductRef{ID: p.ID, Title: p.Title, Price: p.Price})
		}
	}
	return refs, nil
}

func (s *MemoryProductStore) Find(_ context.Context, q ProductQuery) ([]models.Product, error) {
	s.mu.RLock()
	matched := s.match(q.Search)
	s.mu.RUnlock()

	switch q.Sort {
	case SortAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case SortDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	if q.Skip < 0 || q.Skip >= int64(len(matched)) {
		return []models.Product{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (s *MemoryProductStore) Count(_ context.Context, q ProductQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.match(q.Search))), nil
}

func (s *MemoryProductStore) UpdateByID(_ context.Context, id primitive.ObjectID, patch models.ProductPatch) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	if patch.Code != nil && s.codeTaken(*patch.Code, id) {
		return models.Product{}, ErrDuplicateKey
	}
	applyPatch(&p, patch)
	s.products[id] = p
	return cloneProduct(p), nil
}

func (s *MemoryProductStore) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryProductStore) codeTaken(code string, except primitive.ObjectID) bool {
	for id, p := range s.products {
		if id != except && p.Code == code {
			return true
		}
	}
	return false
}

// match must be called with s.mu held.
func (s *MemoryProductStore) match(search string) []models.Product {
	needle := strings.ToLower(search)
	available := matchesAvailable(search)

	out := []models.Product{}
	for _, id := range s.order {
		p := s.products[id]
		if search == "" || strings.Contains(strings.ToLower(p.Category), needle) || (available && p.Status) {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

func applyPatch(p *models.Product, patch models.ProductPatch) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Img != nil {
		p.Img = *patch.Img
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.Thumbnails != nil {
		p.Thumbnails = append([]string{}, (*patch.Thumbnails)...)
	}
}

func cloneProduct(p models.Product) models.Product {
	p.Thumbnails = append([]string{}, p.Thumbnails...)
	return p
}

// MemoryCartStore keeps carts in process memory.
type MemoryCartStore struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	carts map[primitive.ObjectID]models.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[primitive.ObjectID]models.Cart)}
}

func (s *MemoryCartStore) Insert(_ context.Context, c *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Products == nil {
		c.Products = []models.CartItem{}
	}
	s.carts[c.ID] = cloneCart(*c)
	s.order = append(s.order, c.ID)
	return nil
}

func (s *MemoryCartStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[id]
	if !ok {
		return models.Cart{}, ErrNotFound
	}
	return cloneCart(c), nil
}

func (s *MemoryCartStore) FindAll(_ context.Context) ([]models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	carts := make([]models.Cart, 0, len(s.order))
	for _, id := range s.order {
		carts = append(carts, cloneCart(s.carts[id]))
	}
	return carts, nil
}

func (s *MemoryCartStore) IncrementItem(_ context.Context, cartID, productID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return false, nil
	}
	i := itemIndex(c.Products, productID)
	if i < 0 {
		return false, nil
	}
	c.Products[i].Quantity++
	s.carts[cartID] = c
	return true, nil
}

func (s *MemoryCartStore) AppendItem(_ context.Context, cartID, productID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok || itemIndex(c.Products, productID) >= 0 {
		return false, nil
	}
	c.Products = append(c.Products, models.CartItem{ProductID: productID, Quantity: 1})
	s.carts[cartID] = c
	return true, nil
}

func (s *MemoryCartStore) SetItemQuantity(_ context.Context, cartID, productID primitive.ObjectID, quantity int) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return models.Cart{}, ErrNotFound
	}
	i := itemIndex(c.Products, productID)
	if i < 0 {
		return models.Cart{}, ErrNotFound
	}
	c.Products[i].Quantity = quantity
	s.carts[cartID] = c
	return cloneCart(c), nil
}

func (s *MemoryCartStore) RemoveItem(_ context.Context, cartID, productID primitive.ObjectID) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return models.Cart{}, ErrNotFound
	}
	kept := []models.CartItem{}
	for _, item := range c.Products {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Products = kept
	s.carts[cartID] = c
	return cloneCart(c), nil
}

func (s *MemoryCartStore) SetItems(_ context.Context, cartID primitive.ObjectID, items []models.CartItem) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartID]
	if !ok {
		return models.Cart{}, ErrNotFound
	}
	c.Products = append([]models.CartItem{}, items...)
	s.carts[cartID] = c
	return cloneCart(c), nil
}

func itemIndex(items []models.CartItem, productID primitive.ObjectID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneCart(c models.Cart) models.Cart {
	c.Products = append([]models.CartItem{}, c.Products...)
	return c
}
