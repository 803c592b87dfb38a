package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "motoagenda/internal/appointments/errors"
	"motoagenda/pkg/config"
	"motoagenda/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CountersCollectionName = "counters"
	LocksCollectionName    = "agendamento_locks"

	// lockTTLMargin keeps a lock alive past the write timeout that bounds its
	// holder, so only a dead holder's lock can ever be broken.
	lockTTLMargin    = 5 * time.Second
	lockRetryDelay   = 25 * time.Millisecond
	lockMaxAttempts  = 80
	dateLockIDPrefix = "agendamento_lock_"
)

type dateLockDocument struct {
	ID        string    `bson:"_id"`
	Owner     string    `bson:"owner"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// heldDateLock identifies one acquisition. Release only removes the lock while
// the same owner still holds it.
type heldDateLock struct {
	id    string
	owner string
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	client     *mongo.Client
	collection *mongo.Collection
	counters   *mongo.Collection
	locks      *mongo.Collection

	lockTTL         time.Duration
	lockRetryDelay  time.Duration
	lockMaxAttempts int
}

// NewMongoAppointmentRepository expects the collections and indexes created
// by the migrations package.
func NewMongoAppointmentRepository(client *mongo.Client, cfg *config.Config) AppointmentRepository {
	db := client.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		client:     client,
		collection: db.Collection(CollectionName),
		counters:   db.Collection(CountersCollectionName),
		locks:      db.Collection(LocksCollectionName),

		lockTTL:         cfg.WriteTimeout + lockTTLMargin,
		lockRetryDelay:  lockRetryDelay,
		lockMaxAttempts: lockMaxAttempts,
	}
}

func (r *mongoAppointmentRepository) CreateWithinCapacity(ctx context.Context, appt *model.Appointment, capacity int) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock, err := r.acquireDateLock(ctx, appt.Date)
	if err != nil {
		return err
	}
	defer func() {
		// The request context may already be done; release on a fresh one.
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), time.Second)
		defer releaseCancel()
		if releaseErr := r.releaseDateLock(releaseCtx, lock); releaseErr != nil {
			r.cfg.Log.Warn("Failed to release appointment date lock", "lock_id", lock.id, "error", releaseErr)
		}
	}()

	count, err := r.collection.CountDocuments(ctx, bson.M{"data": appt.Date})
	if err != nil {
		return fmt.Errorf("%w: failed to count appointments: %w", appointmentserrors.ErrStorageRead, err)
	}
	if count >= int64(capacity) {
		return appointmentserrors.ErrCapacityExceeded
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return err
	}
	appt.ID = id

	if _, err := r.collection.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("%w: failed to create appointment: %w", appointmentserrors.ErrStorageWrite, err)
	}
	return nil
}

// nextID draws from a per-collection sequence. Ids consumed by a failed insert
// are skipped, never reused.
func (r *mongoAppointmentRepository) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": CollectionName},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to allocate appointment id: %w", appointmentserrors.ErrStorageWrite, err)
	}
	return counter.Seq, nil
}

func (r *mongoAppointmentRepository) acquireDateLock(ctx context.Context, date string) (heldDateLock, error) {
	lock := heldDateLock{
		id:    dateLockIDPrefix + date,
		owner: uuid.NewString(),
	}

	for attempt := 0; attempt < r.lockMaxAttempts; attempt++ {
		now := time.Now().UTC()
		_, err := r.locks.InsertOne(ctx, dateLockDocument{
			ID:        lock.id,
			Owner:     lock.owner,
			ExpiresAt: now.Add(r.lockTTL),
			CreatedAt: now,
		})
		if err == nil {
			return lock, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return heldDateLock{}, fmt.Errorf("%w: failed to acquire date lock: %w", appointmentserrors.ErrStorageWrite, err)
		}

		// Break a lock whose holder died without releasing it.
		if _, err := r.locks.DeleteOne(ctx, bson.M{"_id": lock.id, "expires_at": bson.M{"$lt": now}}); err != nil {
			return heldDateLock{}, fmt.Errorf("%w: failed to clear expired date lock: %w", appointmentserrors.ErrStorageWrite, err)
		}

		select {
		case <-ctx.Done():
			return heldDateLock{}, fmt.Errorf("%w: %w", appointmentserrors.ErrDateLocked, ctx.Err())
		case <-time.After(r.lockRetryDelay):
		}
	}

	return heldDateLock{}, appointmentserrors.ErrDateLocked
}

func (r *mongoAppointmentRepository) releaseDateLock(ctx context.Context, lock heldDateLock) error {
	_, err := r.locks.DeleteOne(ctx, bson.M{"_id": lock.id, "owner": lock.owner})
	return err
}

func (r *mongoAppointmentRepository) CountByDate(ctx context.Context, date string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"data": date})
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count appointments: %w", appointmentserrors.ErrStorageRead, err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) FindFullDates(ctx context.Context, capacity int) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$data"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "count", Value: bson.D{{Key: "$gte", Value: capacity}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to aggregate full dates: %w", appointmentserrors.ErrStorageRead, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Date string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: failed to decode full dates: %w", appointmentserrors.ErrStorageRead, err)
	}

	dates := make([]string, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, row.Date)
	}
	return dates, nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id int64) (*model.Appointment, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var appt model.Appointment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("%w: failed to find appointment: %w", appointmentserrors.ErrStorageRead, err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}
