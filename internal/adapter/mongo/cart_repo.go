package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagewise/bookstore/cart-service/internal/app/config"
	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
	"github.com/pagewise/bookstore/cart-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartCollectionName = "carts"

type cartDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Items     []entity.CartItem  `bson:"items"`
	Active    bool               `bson:"active"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
	Version   int                `bson:"version"`
}

func toCartDocument(c *entity.Cart) (*cartDocument, error) {
	doc := &cartDocument{
		UserID:    c.UserID,
		Items:     c.Items,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
	if c.ID != "" {
		objID, err := primitive.ObjectIDFromHex(c.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid cart ID format '%s': %w", c.ID, err)
		}
		doc.ID = objID
	}
	return doc, nil
}

func toDomainCart(d *cartDocument) *entity.Cart {
	items := d.Items
	if items == nil {
		items = make([]entity.CartItem, 0)
	}
	return &entity.Cart{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Items:     items,
		Active:    d.Active,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		Version:   d.Version,
	}
}

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.CartRepository {
	collection := client.Database(cfg.Database).Collection(cartCollectionName)
	return &cartRepository{collection: collection}
}

// EnsureIndexes creates the partial unique index backing the one-active-cart
// invariant. The filter restricts uniqueness to active documents, so any
// number of deactivated carts is kept per user as purchase history.
func EnsureIndexes(ctx context.Context, client *mongo.Client, cfg config.MongoDBConfig) error {
	collection := client.Database(cfg.Database).Collection(cartCollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().
			SetName("one_active_cart_per_user").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"active": true}),
	})
	if err != nil {
		return fmt.Errorf("failed to create cart indexes: %w", err)
	}
	return nil
}

// translateErr maps driver failures onto the repository error taxonomy.
// Timeouts must never masquerade as a missing cart.
func translateErr(err error, op string) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsTimeout(err), mongo.IsNetworkError(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %v: %w", op, err, repository.ErrUnavailable)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, repository.ErrQueryFailed)
	}
}

func (r *cartRepository) GetActiveByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "active": true}).Decode(&doc)
	if err != nil {
		return nil, translateErr(err, "get active cart")
	}
	return toDomainCart(&doc), nil
}

func (r *cartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	doc, err := toCartDocument(cart)
	if err != nil {
		return err
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateActiveCart
		}
		return translateErr(err, "create cart")
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	cart.ID = objectID.Hex()
	return nil
}

func (r *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	objID, err := primitive.ObjectIDFromHex(cart.ID)
	if err != nil {
		return fmt.Errorf("invalid cart ID format for save: %w", repository.ErrNotFound)
	}

	filter := bson.M{
		"_id":     objID,
		"active":  true,
		"version": cart.Version,
	}
	update := bson.M{
		"$set": bson.M{
			"items":      cart.Items,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateErr(err, "save cart")
	}

	if result.MatchedCount == 0 {
		return r.diagnoseMiss(ctx, objID, cart.Version)
	}

	cart.Version++
	return nil
}

func (r *cartRepository) Deactivate(ctx context.Context, cart *entity.Cart) error {
	objID, err := primitive.ObjectIDFromHex(cart.ID)
	if err != nil {
		return fmt.Errorf("invalid cart ID format for deactivate: %w", repository.ErrNotFound)
	}

	filter := bson.M{
		"_id":     objID,
		"active":  true,
		"version": cart.Version,
	}
	update := bson.M{
		"$set": bson.M{
			"active":     false,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translateErr(err, "deactivate cart")
	}

	if result.MatchedCount == 0 {
		return r.diagnoseMiss(ctx, objID, cart.Version)
	}

	cart.Active = false
	cart.Version++
	return nil
}

// diagnoseMiss distinguishes a vanished cart from a lost optimistic race: a
// document that still exists but did not match the filter means another
// writer advanced the version or deactivated the cart.
func (r *cartRepository) diagnoseMiss(ctx context.Context, objID primitive.ObjectID, version int) error {
	var existing cartDocument
	errFind := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing)
	if errors.Is(errFind, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if errFind != nil {
		return translateErr(errFind, "diagnose write miss")
	}
	if existing.Version != version || !existing.Active {
		return repository.ErrConflict
	}
	return repository.ErrQueryFailed
}

func (r *cartRepository) GetByID(ctx context.Context, cartID string) (*entity.Cart, error) {
	objID, err := primitive.ObjectIDFromHex(cartID)
	if err != nil {
		return nil, fmt.Errorf("invalid cart ID format: %w", repository.ErrNotFound)
	}

	var doc cartDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		return nil, translateErr(err, "get cart by ID")
	}
	return toDomainCart(&doc), nil
}

func (r *cartRepository) ListByUserID(ctx context.Context, userID string) ([]entity.Cart, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, translateErr(err, "list carts")
	}
	defer cursor.Close(ctx)

	var docs []cartDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateErr(err, "decode listed carts")
	}

	carts := make([]entity.Cart, 0, len(docs))
	for i := range docs {
		carts = append(carts, *toDomainCart(&docs[i]))
	}
	return carts, nil
}
