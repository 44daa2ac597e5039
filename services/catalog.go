package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"storefront/cache"
	"storefront/models"
	"storefront/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Listing defaults
const (
	DefaultLimit = 10
	DefaultPage  = 1
)

// Recognised sort values; anything else keeps the store's natural order.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListOptions selects a page of the catalog. Zero Limit and Page fall back
// to the defaults.
type ListOptions struct {
	Limit int
	Page  int
	Sort  string
	Query string
}

// CatalogService manages products.
type CatalogService struct {
	products store.ProductStore
	cache    cache.ProductCache
	validate *validator.Validate
	logger   *zap.Logger

	// generation counts product writes; a read only fills the cache when no
	// write happened while it was in flight.
	mu         sync.Mutex
	generation uint64
}

// NewCatalogService creates a CatalogService. A nil cache disables caching.
func NewCatalogService(products store.ProductStore, productCache cache.ProductCache, logger *zap.Logger) *CatalogService {
	if productCache == nil {
		productCache = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		products: products,
		cache:    productCache,
		validate: newValidator(),
		logger:   logger.Named("catalog"),
	}
}

// Add validates in and persists it as a new available product.
func (s *CatalogService) Add(ctx context.Context, in models.ProductInput) (models.Product, error) {
	if err := s.validate.Struct(in); err != nil {
		return models.Product{}, mapValidationError(err)
	}

	thumbnails := in.Thumbnails
	if thumbnails == nil {
		thumbnails = []string{}
	}
	p := models.Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       *in.Price,
		Img:         in.Img,
		Code:        in.Code,
		Stock:       *in.Stock,
		Category:    in.Category,
		Status:      true,
		Thumbnails:  thumbnails,
	}

	if err := s.products.Insert(ctx, &p); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			s.logger.Info("product code already exists", zap.String("code", in.Code))
		}
		return models.Product{}, storeError(err, "product not found")
	}

	s.logger.Info("product added", zap.String("product_id", p.ID.Hex()), zap.String("code", p.Code))
	return p, nil
}

// List returns one page of products filtered by opts.Query and sorted by price.
func (s *CatalogService) List(ctx context.Context, opts ListOptions) (models.ProductPage, error) {
	if opts.Limit < 0 {
		return models.ProductPage{}, validationError("limit must be positive")
	}
	if opts.Page < 0 {
		return models.ProductPage{}, validationError("page must be positive")
	}
	limit, page := opts.Limit, opts.Page
	if limit == 0 {
		limit = DefaultLimit
	}
	if page == 0 {
		page = DefaultPage
	}

	q := store.ProductQuery{
		Search: opts.Query,
		Sort:   sortOrder(opts.Sort),
		Limit:  int64(limit),
	}

	// A page whose offset does not fit in int64 is past the end of any catalog.
	docs := []models.Product{}
	if int64(page-1) <= math.MaxInt64/int64(limit) {
		q.Skip = int64(page-1) * int64(limit)
		found, err := s.products.Find(ctx, q)
		if err != nil {
			return models.ProductPage{}, storeError(err, "products not found")
		}
		docs = found
	}
	total, err := s.products.Count(ctx, q)
	if err != nil {
		return models.ProductPage{}, storeError(err, "products not found")
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total-1)/int64(limit) + 1)
	}
	result := models.ProductPage{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       limit,
		Page:        page,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
	}
	if result.HasPrevPage {
		prev := page - 1
		result.PrevPage = &prev
		result.PrevLink = &models.PageLink{Page: prev, Limit: limit, Sort: opts.Sort, Query: opts.Query}
	}
	if result.HasNextPage {
		next := page + 1
		result.NextPage = &next
		result.NextLink = &models.PageLink{Page: next, Limit: limit, Sort: opts.Sort, Query: opts.Query}
	}
	return result, nil
}

// All returns the whole catalog sorted by price in memory.
func (s *CatalogService) All(ctx context.Context, sortBy string) ([]models.Product, error) {
	products, err := s.products.Find(ctx, store.ProductQuery{})
	if err != nil {
		return nil, storeError(err, "products not found")
	}

	switch sortBy {
	case SortAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	}
	return products, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id string) (models.Product, error) {
	oid, err := parseID(id, "product")
	if err != nil {
		return models.Product{}, err
	}

	if p, ok, err := s.cache.Get(ctx, id); err != nil {
		s.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
	} else if ok {
		return p, nil
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	p, err := s.products.FindByID(ctx, oid)
	if err != nil {
		return models.Product{}, storeError(err, "product "+id+" not found")
	}

	s.fill(ctx, p, gen)
	return p, nil
}

func (s *CatalogService) fill(ctx context.Context, p models.Product, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		s.logger.Debug("skipping cache fill after concurrent write", zap.String("product_id", p.ID.Hex()))
		return
	}
	if err := s.cache.Set(ctx, p); err != nil {
		s.logger.Warn("product cache write failed", zap.String("product_id", p.ID.Hex()), zap.Error(err))
	}
}

// Update merges patch into the stored product.
func (s *CatalogService) Update(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	oid, err := parseID(id, "product")
	if err != nil {
		return models.Product{}, err
	}
	if err := s.validate.Struct(patch); err != nil {
		return models.Product{}, mapValidationError(err)
	}

	p, err := s.products.UpdateByID(ctx, oid, patch)
	if err != nil {
		return models.Product{}, storeError(err, "product "+id+" not found")
	}
	s.invalidate(ctx, id)

	s.logger.Info("product updated", zap.String("product_id", id))
	return p, nil
}

func (s *CatalogService) Remove(ctx context.Context, id string) error {
	oid, err := parseID(id, "product")
	if err != nil {
		return err
	}

	if err := s.products.DeleteByID(ctx, oid); err != nil {
		return storeError(err, "product "+id+" not found")
	}
	s.invalidate(ctx, id)

	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("product cache invalidation failed", zap.String("product_id", id), zap.Error(err))
	}
}

func sortOrder(sortBy string) store.SortOrder {
	switch sortBy {
	case SortAsc:
		return store.SortAsc
	case SortDesc:
		return store.SortDesc
	}
	return store.SortNone
}
