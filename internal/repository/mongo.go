package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aryan0dhankhar/tasktracker/internal/domain"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

// MongoUserRepository implements domain.UserRepository on a MongoDB collection
type MongoUserRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoUserRepository binds the users collection of db
func NewMongoUserRepository(db *mongo.Database, logger *slog.Logger) *MongoUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoUserRepository{coll: db.Collection(usersCollection), logger: logger}
}

// EnsureIndexes creates the unique username and email indexes
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create inserts a user; a duplicate key on either unique index is domain.ErrUserExists
func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		r.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a user by its hex ObjectID
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

// GetByEmail retrieves a user by email
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// GetByUsername retrieves a user by username
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return doc.toDomain(), nil
}

type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    string             `bson:"userId"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	Priority  string             `bson:"priority"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *taskDocument) toDomain() *domain.Task {
	return &domain.Task{
		ID:        d.ID.Hex(),
		OwnerID:   d.UserID,
		Text:      d.Text,
		Completed: d.Completed,
		Priority:  domain.ParsePriority(d.Priority),
		Status:    domain.ParseStatus(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

// MongoTaskRepository implements domain.TaskRepository on a MongoDB collection.
// Every filter includes userId.
type MongoTaskRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoTaskRepository binds the tasks collection of db
func NewMongoTaskRepository(db *mongo.Database, logger *slog.Logger) *MongoTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoTaskRepository{coll: db.Collection(tasksCollection), logger: logger}
}

// EnsureIndexes creates the owner lookup index
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task index: %w", err)
	}
	return nil
}

// ListByOwner returns the owner's tasks ordered by _id, which follows insertion order
func (r *MongoTaskRepository) ListByOwner(ctx context.Context, ownerID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := bson.D{{Key: "userId", Value: ownerID}}
	switch filter {
	case domain.FilterActive:
		query = append(query, bson.E{Key: "completed", Value: false})
	case domain.FilterCompleted:
		query = append(query, bson.E{Key: "completed", Value: true})
	}

	cur, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		r.logger.Error("failed to list tasks",
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := []*domain.Task{}
	for cur.Next(ctx) {
		var doc taskDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Create inserts a task, assigning its id
func (r *MongoTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		UserID:    task.OwnerID,
		Text:      task.Text,
		Completed: task.Completed,
		Priority:  string(task.Priority),
		Status:    string(task.Status),
		CreatedAt: task.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		r.logger.Error("failed to create task",
			slog.String("user_id", task.OwnerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create task: %w", err)
	}
	task.ID = doc.ID.Hex()
	return nil
}

// GetOwned retrieves one of the owner's tasks
func (r *MongoTaskRepository) GetOwned(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	var doc taskDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdateOwned sets the present fields atomically and returns the updated document
func (r *MongoTaskRepository) UpdateOwned(ctx context.Context, ownerID, taskID string, changes domain.TaskChanges) (*domain.Task, error) {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if changes.Empty() {
		return r.GetOwned(ctx, ownerID, taskID)
	}

	set := bson.D{}
	if changes.Text != nil {
		set = append(set, bson.E{Key: "text", Value: *changes.Text})
	}
	if changes.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *changes.Completed})
	}
	if changes.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*changes.Priority)})
	}
	if changes.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*changes.Status)})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		r.logger.Error("failed to update task",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return doc.toDomain(), nil
}

// DeleteOwned removes one of the owner's tasks
func (r *MongoTaskRepository) DeleteOwned(ctx context.Context, ownerID, taskID string) error {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return domain.ErrTaskNotFound
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// DeleteCompleted removes the owner's completed tasks
func (r *MongoTaskRepository) DeleteCompleted(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{
		{Key: "userId", Value: ownerID},
		{Key: "completed", Value: true},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	return res.DeletedCount, nil
}

func ownedFilter(ownerID, taskID string) (bson.D, bool) {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: ownerID}}, true
}
