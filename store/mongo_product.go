package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"storefront/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductStore stores products in MongoDB
type MongoProductStore struct {
	Collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoProductStore creates a product store over the products collection of db
func NewMongoProductStore(db *mongo.Database, timeout time.Duration) *MongoProductStore {
	return &MongoProductStore{
		Collection: db.Collection(ProductsCollection),
		timeout:    timeout,
	}
}

// EnsureIndexes creates the unique index on the product code.
func (s *MongoProductStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("code_unique"),
	})
	if err != nil {
		return fmt.Errorf("create code index: %w", err)
	}
	return nil
}

func (s *MongoProductStore) Insert(ctx context.Context, p *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.Collection.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (s *MongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var product models.Product
	if err := s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return models.Product{}, notFound(err)
	}
	return product, nil
}

// FindRefs resolves product ids to their {id, title, price} projection.
// Ids without a matching product are absent from the result.
func (s *MongoProductStore) FindRefs(ctx context.Context, ids []primitive.ObjectID) ([]models.ProductRef, error) {
	refs := []models.ProductRef{}
	if len(ids) == 0 {
		return refs, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"_id": 1, "title": 1, "price": 1})
	cursor, err := s.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

func (s *MongoProductStore) Find(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find()
	if q.Sort != SortNone {
		opts.SetSort(bson.D{{Key: "price", Value: int(q.Sort)}})
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := s.Collection.Find(ctx, productFilter(q.Search), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) Count(ctx context.Context, q ProductQuery) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.Collection.CountDocuments(ctx, productFilter(q.Search))
}

func (s *MongoProductStore) UpdateByID(ctx context.Context, id primitive.ObjectID, patch models.ProductPatch) (models.Product, error) {
	set := productSet(patch)
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var product models.Product
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return models.Product{}, ErrNotFound
		case mongo.IsDuplicateKeyError(err):
			return models.Product{}, ErrDuplicateKey
		}
		return models.Product{}, err
	}
	return product, nil
}

func (s *MongoProductStore) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func productFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	category := bson.M{"category": bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}}
	if matchesAvailable(search) {
		return bson.M{"$or": bson.A{category, bson.M{"status": true}}}
	}
	return category
}

func productSet(patch models.ProductPatch) bson.M {
	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Img != nil {
		set["img"] = *patch.Img
	}
	if patch.Code != nil {
		set["code"] = *patch.Code
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Thumbnails != nil {
		thumbnails := *patch.Thumbnails
		if thumbnails == nil {
			thumbnails = []string{}
		}
		set["thumbnails"] = thumbnails
	}
	return set
}
