package mongo

import (
	"context"

	"github.com/pagewise/bookstore/cart-service/internal/app/config"
	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
	"github.com/pagewise/bookstore/cart-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const bookCollectionName = "books"

// catalogRepository is a read-only adapter over the catalog's books
// collection. The cart service never writes here; the catalog service owns
// price, discount and stock.
type catalogRepository struct {
	collection *mongo.Collection
}

func NewProductCatalog(client *mongo.Client, cfg config.MongoDBConfig) repository.ProductCatalog {
	collection := client.Database(cfg.Database).Collection(bookCollectionName)
	return &catalogRepository{collection: collection}
}

type bookDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Title         string             `bson:"title"`
	Price         float64            `bson:"price"`
	DiscountPrice *float64           `bson:"discount_price,omitempty"`
	Stock         int                `bson:"stock"`
}

func (r *catalogRepository) GetByID(ctx context.Context, productID string) (*entity.Product, error) {
	objID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	var doc bookDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		return nil, translateErr(err, "get product")
	}

	return &entity.Product{
		ID:            doc.ID.Hex(),
		Title:         doc.Title,
		Price:         doc.Price,
		DiscountPrice: doc.DiscountPrice,
		Stock:         doc.Stock,
	}, nil
}
