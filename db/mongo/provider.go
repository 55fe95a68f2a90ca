package mongo

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/librediet/librediet-api/db"
	"github.com/librediet/librediet-api/env"
	"github.com/librediet/librediet-api/types"
)

const (
	duplicateError = 11000
)

// Provider implements the db.Provider interface against MongoDB,
// storing the food item cache and the meal log
type Provider struct {
	connectionUri string
	databaseName  string
	client        *mongo.Client
}

// NewProvider creates a new provider and loads values in from the environment
func NewProvider() (*Provider, error) {
	dbHost, err := env.GetEnv("database host name", "MONGO_DB_HOST")
	if err != nil {
		return nil, err
	}

	dbPwd, err := env.GetEnv("database password", "MONGO_DB_PWD")
	if err != nil {
		return nil, err
	}

	dbCluster, err := env.GetEnv("database cluster name ", "MONGO_DB_CLUSTER")
	if err != nil {
		return nil, err
	}

	dbName, err := env.GetEnv("database name ", "MONGO_DB_NAME")
	if err != nil {
		return nil, err
	}

	connectionUri := fmt.Sprintf("mongodb+srv://%s:%s@%s.mongodb.net/%s?retryWrites=true&w=majority",
		dbHost, dbPwd, dbCluster, dbName)
	return &Provider{
		connectionUri: connectionUri,
		databaseName:  dbName,
		client:        nil,
	}, nil
}

// Connect connects to the database and prepares the collections
func (p *Provider) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(p.connectionUri))
	if err != nil {
		return err
	}

	// Ping the primary
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return err
	}

	p.client = client

	// Initialize any collections/indices
	err = p.initialize(ctx)
	if err != nil {
		return err
	}

	return nil
}

// Disconnect tears down the connection to the database
func (p *Provider) Disconnect(ctx context.Context) error {
	err := p.client.Disconnect(ctx)
	if err != nil {
		return err
	}

	return nil
}

// Create anything needed for the database,
// like indices
func (p *Provider) initialize(ctx context.Context) error {
	log.Println("initializing the MongoDB database")

	_, err := p.foodItems().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// Barcodes are optional, so the index is sparse instead of unique
	_, err = p.foodItems().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"barcode": 1},
		Options: options.Index().SetSparse(true),
	})
	if err != nil {
		return err
	}

	_, err = p.meals().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// Range queries and deletes scan on the meal timestamp
	_, err = p.meals().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"timestamp": -1},
	})
	if err != nil {
		return err
	}

	_, err = p.mealTemplates().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	return nil
}

func (p *Provider) foodItems() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("foodItems")
}

func (p *Provider) meals() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("meals")
}

func (p *Provider) mealTemplates() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("mealTemplates")
}

func (p *Provider) nutritionGoals() *mongo.Collection {
	return p.client.Database(p.databaseName).Collection("nutritionGoals")
}

// GetFoodItem gets a single food item by its ID
func (p *Provider) GetFoodItem(ctx context.Context, id string) (*types.FoodItem, error) {
	collection := p.foodItems()
	result := collection.FindOne(ctx, bson.D{{Key: "id", Value: id}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(id)
	}

	var item types.FoodItem
	err := result.Decode(&item)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// GetFoodItemByBarcode gets a single food item by its barcode
func (p *Provider) GetFoodItemByBarcode(ctx context.Context, barcode string) (*types.FoodItem, error) {
	collection := p.foodItems()
	result := collection.FindOne(ctx, bson.D{{Key: "barcode", Value: barcode}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(barcode)
	}

	var item types.FoodItem
	err := result.Decode(&item)
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// SearchFoodItems gets all food items whose name or brand contains the query
// (case-insensitive), capped at the given limit
func (p *Provider) SearchFoodItems(ctx context.Context, query string, limit int) ([]types.FoodItem, error) {
	collection := p.foodItems()

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "name", Value: pattern}},
		bson.D{{Key: "brand", Value: pattern}},
	}}}

	options := options.Find()
	options.SetSort(bson.D{{Key: "name", Value: 1}})
	if limit > 0 {
		options.SetLimit(int64(limit))
	}
	cursor, err := collection.Find(ctx, filter, options)
	if err != nil {
		return nil, err
	}

	var items []types.FoodItem
	err = cursor.All(ctx, &items)
	if err != nil {
		return nil, err
	}

	// Return non-nil slice so JSON serialization is nice
	if items == nil {
		return []types.FoodItem{}, nil
	}

	return items, nil
}

// GetAllFoodItems gets all food items in the cache
func (p *Provider) GetAllFoodItems(ctx context.Context) ([]types.FoodItem, error) {
	collection := p.foodItems()

	options := options.Find()
	options.SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := collection.Find(ctx, bson.D{}, options)
	if err != nil {
		return nil, err
	}

	var items []types.FoodItem
	err = cursor.All(ctx, &items)
	if err != nil {
		return nil, err
	}

	// Return non-nil slice so JSON serialization is nice
	if items == nil {
		return []types.FoodItem{}, nil
	}

	return items, nil
}

// UpsertFoodItem inserts or replaces a food item keyed on its identity:
// the barcode when present, otherwise the case-insensitive name.
// Conflicting concurrent writers resolve last-write-wins.
func (p *Provider) UpsertFoodItem(ctx context.Context, item types.FoodItem) error {
	collection := p.foodItems()

	var filter bson.D
	if item.Barcode != "" {
		filter = bson.D{{Key: "barcode", Value: item.Barcode}}
	} else {
		pattern := primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(item.Name) + "$",
			Options: "i",
		}
		filter = bson.D{{Key: "name", Value: pattern}}
	}

	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	options := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, filter, item, options)
	if err != nil {
		return err
	}

	return nil
}

// UpdateFoodItem patches a food item in the database
func (p *Provider) UpdateFoodItem(ctx context.Context, id string, update map[string]interface{}) (*types.FoodItem, error) {
	// Construct the patch query from the map
	updateDocument := bson.D{}
	for key, value := range update {
		updateDocument = append(updateDocument, bson.E{Key: key, Value: value})
	}
	updateDocument = append(updateDocument, bson.E{Key: "updated_at", Value: time.Now()})

	collection := p.foodItems()
	filter := bson.D{{Key: "id", Value: id}}
	updateQuery := bson.D{{Key: "$set", Value: updateDocument}}
	options := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updatedItem types.FoodItem
	err := collection.FindOneAndUpdate(ctx, filter, updateQuery, options).Decode(&updatedItem)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, db.NewNotFoundError(id)
		}

		return nil, err
	}

	return &updatedItem, nil
}

// DeleteCustomFoodItems removes every user-authored food item,
// returning the number of items removed
func (p *Provider) DeleteCustomFoodItems(ctx context.Context) (int64, error) {
	collection := p.foodItems()
	result, err := collection.DeleteMany(ctx, bson.D{{Key: "is_custom", Value: true}})
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

// GetMeal gets a single meal by its ID
func (p *Provider) GetMeal(ctx context.Context, id string) (*types.Meal, error) {
	collection := p.meals()
	result := collection.FindOne(ctx, bson.D{{Key: "id", Value: id}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(id)
	}

	var meal types.Meal
	err := result.Decode(&meal)
	if err != nil {
		return nil, err
	}

	return &meal, nil
}

// GetMealsInRange gets all meals with start <= timestamp < end,
// most recent first
func (p *Provider) GetMealsInRange(ctx context.Context, start time.Time, end time.Time) ([]types.Meal, error) {
	collection := p.meals()

	filter := bson.D{{Key: "timestamp", Value: bson.D{
		{Key: "$gte", Value: start},
		{Key: "$lt", Value: end},
	}}}

	options := options.Find()
	options.SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := collection.Find(ctx, filter, options)
	if err != nil {
		return nil, err
	}

	var meals []types.Meal
	err = cursor.All(ctx, &meals)
	if err != nil {
		return nil, err
	}

	// Return non-nil slice so JSON serialization is nice
	if meals == nil {
		return []types.Meal{}, nil
	}

	return meals, nil
}

// CreateMeal creates a new meal in the database
func (p *Provider) CreateMeal(ctx context.Context, meal types.Meal) error {
	collection := p.meals()
	_, err := collection.InsertOne(ctx, meal)
	if err != nil {
		// Handle known cases (such as when the meal was duplicate)
		if writeException, ok := err.(mongo.WriteException); ok && isDuplicate(writeException) {
			return db.NewDuplicateIDError(meal.ID)
		}

		return err
	}

	return nil
}

// UpdateMeal patches a meal in the database
func (p *Provider) UpdateMeal(ctx context.Context, id string, update map[string]interface{}) (*types.Meal, error) {
	// Construct the patch query from the map
	updateDocument := bson.D{}
	for key, value := range update {
		updateDocument = append(updateDocument, bson.E{Key: key, Value: value})
	}

	collection := p.meals()
	filter := bson.D{{Key: "id", Value: id}}
	updateQuery := bson.D{{Key: "$set", Value: updateDocument}}
	options := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updatedMeal types.Meal
	err := collection.FindOneAndUpdate(ctx, filter, updateQuery, options).Decode(&updatedMeal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, db.NewNotFoundError(id)
		}

		return nil, err
	}

	return &updatedMeal, nil
}

// DeleteMeal deletes a meal in the database
func (p *Provider) DeleteMeal(ctx context.Context, id string) error {
	collection := p.meals()
	result, err := collection.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return db.NewNotFoundError(id)
	}

	return nil
}

// DeleteMealsInRange deletes all meals with start <= timestamp < end,
// returning the number of meals removed
func (p *Provider) DeleteMealsInRange(ctx context.Context, start time.Time, end time.Time) (int64, error) {
	collection := p.meals()

	filter := bson.D{{Key: "timestamp", Value: bson.D{
		{Key: "$gte", Value: start},
		{Key: "$lt", Value: end},
	}}}

	result, err := collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}

	return result.DeletedCount, nil
}

// GetMealTemplate gets a single meal template by its ID
func (p *Provider) GetMealTemplate(ctx context.Context, id string) (*types.MealTemplate, error) {
	collection := p.mealTemplates()
	result := collection.FindOne(ctx, bson.D{{Key: "id", Value: id}})
	if result.Err() == mongo.ErrNoDocuments {
		return nil, db.NewNotFoundError(id)
	}

	var template types.MealTemplate
	err := result.Decode(&template)
	if err != nil {
		return nil, err
	}

	return &template, nil
}

// GetAllMealTemplates gets all meal templates,
// most used first and most recently used among ties
func (p *Provider) GetAllMealTemplates(ctx context.Context) ([]types.MealTemplate, error) {
	collection := p.mealTemplates()

	options := options.Find()
	options.SetSort(bson.D{{Key: "usage_count", Value: -1}, {Key: "last_used_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.D{}, options)
	if err != nil {
		return nil, err
	}

	var templates []types.MealTemplate
	err = cursor.All(ctx, &templates)
	if err != nil {
		return nil, err
	}

	// Return non-nil slice so JSON serialization is nice
	if templates == nil {
		return []types.MealTemplate{}, nil
	}

	return templates, nil
}

// SearchMealTemplates gets all meal templates whose name contains the
// query (case-insensitive), most used first, capped at the given limit
func (p *Provider) SearchMealTemplates(ctx context.Context, query string, limit int) ([]types.MealTemplate, error) {
	collection := p.mealTemplates()

	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.D{{Key: "name", Value: pattern}}

	options := options.Find()
	options.SetSort(bson.D{{Key: "usage_count", Value: -1}})
	if limit > 0 {
		options.SetLimit(int64(limit))
	}
	cursor, err := collection.Find(ctx, filter, options)
	if err != nil {
		return nil, err
	}

	var templates []types.MealTemplate
	err = cursor.All(ctx, &templates)
	if err != nil {
		return nil, err
	}

	// Return non-nil slice so JSON serialization is nice
	if templates == nil {
		return []types.MealTemplate{}, nil
	}

	return templates, nil
}

// CreateMealTemplate creates a new meal template in the database
func (p *Provider) CreateMealTemplate(ctx context.Context, template types.MealTemplate) error {
	collection := p.mealTemplates()
	_, err := collection.InsertOne(ctx, template)
	if err != nil {
		// Handle known cases (such as when the template was duplicate)
		if writeException, ok := err.(mongo.WriteException); ok && isDuplicate(writeException) {
			return db.NewDuplicateIDError(template.ID)
		}

		return err
	}

	return nil
}

// UpdateMealTemplate patches a meal template in the database
func (p *Provider) UpdateMealTemplate(ctx context.Context, id string, update map[string]interface{}) (*types.MealTemplate, error) {
	// Construct the patch query from the map
	updateDocument := bson.D{}
	for key, value := range update {
		updateDocument = append(updateDocument, bson.E{Key: key, Value: value})
	}

	collection := p.mealTemplates()
	filter := bson.D{{Key: "id", Value: id}}
	updateQuery := bson.D{{Key: "$set", Value: updateDocument}}
	options := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updatedTemplate types.MealTemplate
	err := collection.FindOneAndUpdate(ctx, filter, updateQuery, options).Decode(&updatedTemplate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, db.NewNotFoundError(id)
		}

		return nil, err
	}

	return &updatedTemplate, nil
}

// RecordMealTemplateUse increments the template's usage counter and
// stamps the last-used time, returning the updated template
func (p *Provider) RecordMealTemplateUse(ctx context.Context, id string) (*types.MealTemplate, error) {
	collection := p.mealTemplates()
	filter := bson.D{{Key: "id", Value: id}}
	updateQuery := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "usage_count", Value: 1}}},
		{Key: "$set", Value: bson.D{{Key: "last_used_at", Value: time.Now()}}},
	}
	options := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updatedTemplate types.MealTemplate
	err := collection.FindOneAndUpdate(ctx, filter, updateQuery, options).Decode(&updatedTemplate)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, db.NewNotFoundError(id)
		}

		return nil, err
	}

	return &updatedTemplate, nil
}

// DeleteMealTemplate deletes a meal template in the database
func (p *Provider) DeleteMealTemplate(ctx context.Context, id string) error {
	collection := p.mealTemplates()
	result, err := collection.DeleteOne(ctx, bson.D{{Key: "id", Value: id}})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return db.NewNotFoundError(id)
	}

	return nil
}

// The single nutrition goals record is keyed by a fixed ID
const nutritionGoalsID = "goals"

// GetNutritionGoals gets the daily nutrition goals,
// falling back to the defaults when none were ever saved
func (p *Provider) GetNutritionGoals(ctx context.Context) (types.NutritionGoals, error) {
	collection := p.nutritionGoals()
	result := collection.FindOne(ctx, bson.D{{Key: "id", Value: nutritionGoalsID}})
	if result.Err() == mongo.ErrNoDocuments {
		return types.DefaultNutritionGoals(), nil
	}

	var goals types.NutritionGoals
	err := result.Decode(&goals)
	if err != nil {
		return types.NutritionGoals{}, err
	}

	return goals, nil
}

// SaveNutritionGoals inserts or replaces the daily nutrition goals
func (p *Provider) SaveNutritionGoals(ctx context.Context, goals types.NutritionGoals) error {
	collection := p.nutritionGoals()

	document := struct {
		ID                   string `bson:"id"`
		types.NutritionGoals `bson:",inline"`
	}{
		ID:             nutritionGoalsID,
		NutritionGoals: goals,
	}

	options := options.Replace().SetUpsert(true)
	_, err := collection.ReplaceOne(ctx, bson.D{{Key: "id", Value: nutritionGoalsID}}, document, options)
	if err != nil {
		return err
	}

	return nil
}

// Detects if the given write exception is caused by (in part)
// by a duplicate key error
func isDuplicate(writeException mongo.WriteException) bool {
	for _, writeError := range writeException.WriteErrors {
		if writeError.Code == duplicateError {
			return true
		}
	}

	return false
}
