package store

import (
	"context"
	"errors"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCartStore stores carts in MongoDB
type MongoCartStore struct {
	Collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoCartStore creates a cart store over the carts collection of db
func NewMongoCartStore(db *mongo.Database, timeout time.Duration) *MongoCartStore {
	return &MongoCartStore{
		Collection: db.Collection(CartsCollection),
		timeout:    timeout,
	}
}

func (s *MongoCartStore) Insert(ctx context.Context, c *models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if c.Products == nil {
		c.Products = []models.CartItem{}
	}
	result, err := s.Collection.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = id
	}
	return nil
}

func (s *MongoCartStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var cart models.Cart
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cart); err != nil {
		return models.Cart{}, notFound(err)
	}
	return cart, nil
}

func (s *MongoCartStore) FindAll(ctx context.Context) ([]models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	carts := []models.Cart{}
	if err := cursor.All(ctx, &carts); err != nil {
		return nil, err
	}
	return carts, nil
}

// IncrementItem adds one to the quantity of the productID entry, if the cart has one.
func (s *MongoCartStore) IncrementItem(ctx context.Context, cartID, productID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": cartID, "products.product": productID},
		bson.M{"$inc": bson.M{"products.$.quantity": 1}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// AppendItem pushes a quantity-one entry for productID unless the cart already has one.
func (s *MongoCartStore) AppendItem(ctx context.Context, cartID, productID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.Collection.UpdateOne(ctx,
		bson.M{"_id": cartID, "products.product": bson.M{"$ne": productID}},
		bson.M{"$push": bson.M{"products": models.CartItem{ProductID: productID, Quantity: 1}}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (s *MongoCartStore) SetItemQuantity(ctx context.Context, cartID, productID primitive.ObjectID, quantity int) (models.Cart, error) {
	return s.findAndUpdate(ctx,
		bson.M{"_id": cartID, "products.product": productID},
		bson.M{"$set": bson.M{"products.$.quantity": quantity}},
	)
}

func (s *MongoCartStore) RemoveItem(ctx context.Context, cartID, productID primitive.ObjectID) (models.Cart, error) {
	return s.findAndUpdate(ctx,
		bson.M{"_id": cartID},
		bson.M{"$pull": bson.M{"products": bson.M{"product": productID}}},
	)
}

func (s *MongoCartStore) SetItems(ctx context.Context, cartID primitive.ObjectID, items []models.CartItem) (models.Cart, error) {
	if items == nil {
		items = []models.CartItem{}
	}
	return s.findAndUpdate(ctx,
		bson.M{"_id": cartID},
		bson.M{"$set": bson.M{"products": items}},
	)
}

func (s *MongoCartStore) findAndUpdate(ctx context.Context, filter, update bson.M) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var cart models.Cart
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart); err != nil {
		return models.Cart{}, notFound(err)
	}
	return cart, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
