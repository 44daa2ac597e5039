package services

import (
	"context"
	"errors"

	"storefront/models"
	"storefront/store"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CartService manages carts. Cart entries reference products by id only;
// reads resolve them and drop entries whose product no longer exists.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
	logger   *zap.Logger
}

func NewCartService(carts store.CartStore, products store.ProductStore, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger.Named("cart"),
	}
}

// Create persists a new empty cart.
func (s *CartService) Create(ctx context.Context) (models.CartDetails, error) {
	cart := models.Cart{Products: []models.CartItem{}}
	if err := s.carts.Insert(ctx, &cart); err != nil {
		return models.CartDetails{}, storeError(err, "cart not found")
	}

	s.logger.Info("cart created", zap.String("cart_id", cart.ID.Hex()))
	return s.detail(ctx, cart)
}

func (s *CartService) GetByID(ctx context.Context, id string) (models.CartDetails, error) {
	cid, err := parseID(id, "cart")
	if err != nil {
		return models.CartDetails{}, err
	}

	cart, err := s.carts.FindByID(ctx, cid)
	if err != nil {
		return models.CartDetails{}, storeError(err, "cart "+id+" not found")
	}
	return s.detail(ctx, cart)
}

// AddProduct adds one unit of productID to the cart. An existing entry has its
// quantity incremented; otherwise a new entry with quantity 1 is appended.
func (s *CartService) AddProduct(ctx context.Context, cartID, productID string) (models.CartDetails, error) {
	cid, err := parseID(cartID, "cart")
	if err != nil {
		return models.CartDetails{}, err
	}
	pid, err := parseID(productID, "product")
	if err != nil {
		return models.CartDetails{}, err
	}

	if _, err := s.carts.FindByID(ctx, cid); err != nil {
		return models.CartDetails{}, storeError(err, "cart "+cartID+" not found")
	}
	if _, err := s.products.FindByID(ctx, pid); err != nil {
		return models.CartDetails{}, storeError(err, "product "+productID+" not found")
	}

	if err := s.merge(ctx, cid, pid); err != nil {
		return models.CartDetails{}, err
	}

	s.logger.Info("product added to cart", zap.String("cart_id", cartID), zap.String("product_id", productID))
	return s.GetByID(ctx, cartID)
}

// merge retries once so that an append lost to a concurrent writer turns
// into an increment.
func (s *CartService) merge(ctx context.Context, cid, pid primitive.ObjectID) error {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.carts.IncrementItem(ctx, cid, pid)
		if err != nil {
			return storeError(err, "cart not found")
		}
		if ok {
			return nil
		}

		ok, err = s.carts.AppendItem(ctx, cid, pid)
		if err != nil {
			return storeError(err, "cart not found")
		}
		if ok {
			return nil
		}
	}
	return notFoundError("cart %s not found", cid.Hex())
}

// UpdateQuantity sets the quantity of an existing cart entry.
func (s *CartService) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (models.CartDetails, error) {
	if quantity < 1 {
		return models.CartDetails{}, validationError("quantity must be at least 1")
	}
	cid, err := parseID(cartID, "cart")
	if err != nil {
		return models.CartDetails{}, err
	}
	pid, err := parseID(productID, "product")
	if err != nil {
		return models.CartDetails{}, err
	}

	cart, err := s.carts.SetItemQuantity(ctx, cid, pid, quantity)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return models.CartDetails{}, storeError(err, "")
		}
		if _, err := s.carts.FindByID(ctx, cid); err != nil {
			return models.CartDetails{}, storeError(err, "cart "+cartID+" not found")
		}
		return models.CartDetails{}, notFoundError("product %s not found in cart %s", productID, cartID)
	}

	s.logger.Info("cart quantity updated",
		zap.String("cart_id", cartID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return s.detail(ctx, cart)
}

// RemoveItem drops the productID entry. Removing an absent entry is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID string) (models.CartDetails, error) {
	cid, err := parseID(cartID, "cart")
	if err != nil {
		return models.CartDetails{}, err
	}
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return s.GetByID(ctx, cartID)
	}

	cart, err := s.carts.RemoveItem(ctx, cid, pid)
	if err != nil {
		return models.CartDetails{}, storeError(err, "cart "+cartID+" not found")
	}

	s.logger.Info("product removed from cart", zap.String("cart_id", cartID), zap.String("product_id", productID))
	return s.detail(ctx, cart)
}

// ReplaceContents swaps the cart's entries for entries. Every entry must name
// a distinct existing product with a positive quantity; otherwise nothing
// changes.
func (s *CartService) ReplaceContents(ctx context.Context, cartID string, entries []models.CartItemInput) (models.CartDetails, error) {
	cid, err := parseID(cartID, "cart")
	if err != nil {
		return models.CartDetails{}, err
	}
	if _, err := s.carts.FindByID(ctx, cid); err != nil {
		return models.CartDetails{}, storeError(err, "cart "+cartID+" not found")
	}

	items := make([]models.CartItem, 0, len(entries))
	ids := make([]primitive.ObjectID, 0, len(entries))
	seen := make(map[primitive.ObjectID]bool, len(entries))
	for _, entry := range entries {
		pid, err := primitive.ObjectIDFromHex(entry.ProductID)
		if err != nil {
			return models.CartDetails{}, validationError("invalid product id %q", entry.ProductID)
		}
		if entry.Quantity < 1 {
			return models.CartDetails{}, validationError("quantity for product %s must be at least 1", entry.ProductID)
		}
		if seen[pid] {
			return models.CartDetails{}, validationError("product %s appears more than once", entry.ProductID)
		}
		seen[pid] = true
		ids = append(ids, pid)
		items = append(items, models.CartItem{ProductID: pid, Quantity: entry.Quantity})
	}

	refs, err := s.products.FindRefs(ctx, ids)
	if err != nil {
		return models.CartDetails{}, storeError(err, "")
	}
	if len(refs) != len(ids) {
		found := make(map[primitive.ObjectID]bool, len(refs))
		for _, ref := range refs {
			found[ref.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return models.CartDetails{}, validationError("product %s does not exist", id.Hex())
			}
		}
	}

	cart, err := s.carts.SetItems(ctx, cid, items)
	if err != nil {
		return models.CartDetails{}, storeError(err, "cart "+cartID+" not found")
	}

	s.logger.Info("cart contents replaced", zap.String("cart_id", cartID), zap.Int("entries", len(items)))
	return s.detail(ctx, cart)
}

// Empty removes every entry from the cart.
func (s *CartService) Empty(ctx context.Context, cartID string) (models.CartDetails, error) {
	cid, err := parseID(cartID, "cart")
	if err != nil {
		return models.CartDetails{}, err
	}

	cart, err := s.carts.SetItems(ctx, cid, []models.CartItem{})
	if err != nil {
		return models.CartDetails{}, storeError(err, "cart "+cartID+" not found")
	}

	s.logger.Info("cart emptied", zap.String("cart_id", cartID))
	return s.detail(ctx, cart)
}

// ListAll returns every cart with its products resolved and totals computed.
func (s *CartService) ListAll(ctx context.Context) ([]models.CartDetails, error) {
	carts, err := s.carts.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "carts not found")
	}
	return s.populate(ctx, carts)
}

func (s *CartService) detail(ctx context.Context, cart models.Cart) (models.CartDetails, error) {
	details, err := s.populate(ctx, []models.Cart{cart})
	if err != nil {
		return models.CartDetails{}, err
	}
	return details[0], nil
}

// populate resolves the product references of carts with a single lookup.
func (s *CartService) populate(ctx context.Context, carts []models.Cart) ([]models.CartDetails, error) {
	var ids []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, cart := range carts {
		for _, item := range cart.Products {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}

	refs, err := s.products.FindRefs(ctx, ids)
	if err != nil {
		return nil, storeError(err, "")
	}
	byID := make(map[primitive.ObjectID]models.ProductRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	details := make([]models.CartDetails, 0, len(carts))
	for _, cart := range carts {
		d := models.CartDetails{ID: cart.ID.Hex(), Products: []models.CartLine{}}
		total := decimal.Zero
		for _, item := range cart.Products {
			ref, ok := byID[item.ProductID]
			if !ok {
				s.logger.Warn("cart references a missing product",
					zap.String("cart_id", d.ID),
					zap.String("product_id", item.ProductID.Hex()),
				)
				continue
			}
			d.Products = append(d.Products, models.CartLine{
				ID:       ref.ID.Hex(),
				Title:    ref.Title,
				Price:    ref.Price,
				Quantity: item.Quantity,
			})
			d.TotalQuantity += item.Quantity
			total = total.Add(decimal.NewFromFloat(ref.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		d.TotalPrice = total.InexactFloat64()
		details = append(details, d)
	}
	return details, nil
}
