package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool the storage relies on; tests
// substitute a pgxmock pool through newPgxPool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type mealRepository struct {
	storage *Storage
}

type reviewRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type paymentRepository struct {
	storage *Storage
}

type roleRequestRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Meals() repository.MealRepository {
	return &mealRepository{storage: s}
}

func (s *Storage) Reviews() repository.ReviewRepository {
	return &reviewRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Payments() repository.PaymentRepository {
	return &paymentRepository{storage: s}
}

func (s *Storage) RoleRequests() repository.RoleRequestRepository {
	return &roleRequestRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            role TEXT NOT NULL DEFAULT 'user',
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS meals (
            id SERIAL PRIMARY KEY,
            chef_id BIGINT NOT NULL REFERENCES users(id),
            name TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            price DOUBLE PRECISION NOT NULL,
            image_url TEXT NOT NULL DEFAULT '',
            review_count BIGINT NOT NULL DEFAULT 0 CHECK (review_count >= 0),
            review_sum DOUBLE PRECISION NOT NULL DEFAULT 0,
            rating DOUBLE PRECISION NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS reviews (
            id SERIAL PRIMARY KEY,
            meal_id BIGINT NOT NULL REFERENCES meals(id),
            user_id BIGINT NOT NULL REFERENCES users(id),
            user_email TEXT NOT NULL,
            rating INT NOT NULL,
            body TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id SERIAL PRIMARY KEY,
            reference TEXT UNIQUE NOT NULL,
            buyer_id BIGINT NOT NULL REFERENCES users(id),
            buyer_email TEXT NOT NULL,
            chef_id BIGINT NOT NULL REFERENCES users(id),
            meal_id BIGINT NOT NULL REFERENCES meals(id),
            meal_name TEXT NOT NULL,
            quantity INT NOT NULL,
            unit_price DOUBLE PRECISION NOT NULL,
            order_status TEXT NOT NULL,
            payment_status TEXT NOT NULL DEFAULT 'unpaid',
            checkout_session_id TEXT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id SERIAL PRIMARY KEY,
            transaction_id TEXT UNIQUE NOT NULL,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            buyer_email TEXT NOT NULL,
            meal_name TEXT NOT NULL,
            amount_minor BIGINT NOT NULL,
            paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS role_requests (
            id SERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            requested_role TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            decided_at TIMESTAMPTZ
        )`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_meal ON reviews(meal_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_chef ON orders(chef_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_unsettled ON orders(updated_at)
            WHERE payment_status = 'unpaid' AND checkout_session_id IS NOT NULL`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, email, name, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (email, name, role, password_hash) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, email, name, model.RoleUser, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Email = email
	u.Name = name
	u.Role = model.RoleUser
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, email, name, role, password_hash, created_at FROM users WHERE email=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, email, name, role, password_hash, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	const query = `UPDATE users SET role=$2 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- MealRepository implementation ---

func (r *mealRepository) Create(ctx context.Context, meal *model.Meal) (*model.Meal, error) {
	const query = `INSERT INTO meals (chef_id, name, description, price, image_url)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id, created_at`
	created := *meal
	err := r.storage.pool.QueryRow(ctx, query, meal.ChefID, meal.Name, meal.Description, meal.Price, meal.ImageURL).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &created, nil
}

const mealColumns = `id, chef_id, name, description, price, image_url, review_count, review_sum, rating, created_at`

func scanMeal(row pgx.Row, m *model.Meal) error {
	return row.Scan(&m.ID, &m.ChefID, &m.Name, &m.Description, &m.Price, &m.ImageURL,
		&m.ReviewCount, &m.ReviewSum, &m.Rating, &m.CreatedAt)
}

func (r *mealRepository) GetByID(ctx context.Context, id int64) (*model.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id=$1`
	var m model.Meal
	if err := scanMeal(r.storage.pool.QueryRow(ctx, query, id), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *mealRepository) List(ctx context.Context) ([]model.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Meal
	for rows.Next() {
		var m model.Meal
		if err := rows.Scan(&m.ID, &m.ChefID, &m.Name, &m.Description, &m.Price, &m.ImageURL,
			&m.ReviewCount, &m.ReviewSum, &m.Rating, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *mealRepository) Update(ctx context.Context, id int64, patch repository.MealPatch) error {
	const query = `UPDATE meals SET
                       name = COALESCE($2, name),
                       description = COALESCE($3, description),
                       price = COALESCE($4, price),
                       image_url = COALESCE($5, image_url)
                   WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, patch.Name, patch.Description, patch.Price, patch.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *mealRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM meals WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- ReviewRepository implementation ---

// reviewDeltaQuery adjusts the meal aggregate in a single statement so
// concurrent reviews on the same meal never lose an update. The count
// is floored at zero and the derived rating collapses to zero with it.
const reviewDeltaQuery = `UPDATE meals SET
        review_count = GREATEST(review_count + $2, 0),
        review_sum = review_sum + $3,
        rating = CASE WHEN review_count + $2 <= 0 THEN 0
                      ELSE (review_sum + $3) / (review_count + $2) END
    WHERE id=$1`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func applyReviewDelta(ctx context.Context, q execer, mealID, countDelta int64, sumDelta float64) error {
	tag, err := q.Exec(ctx, reviewDeltaQuery, mealID, countDelta, sumDelta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) (*model.Review, error) {
	created := *review
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertReview = `INSERT INTO reviews (meal_id, user_id, user_email, rating, body)
                              VALUES ($1, $2, $3, $4, $5)
                              RETURNING id, created_at`
		err := tx.QueryRow(ctx, insertReview, review.MealID, review.UserID, review.UserEmail, review.Rating, review.Body).
			Scan(&created.ID, &created.CreatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		return applyReviewDelta(ctx, tx, review.MealID, 1, float64(review.Rating))
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	const query = `SELECT id, meal_id, user_id, user_email, rating, body, created_at FROM reviews WHERE id=$1`
	var rv model.Review
	err := r.storage.pool.QueryRow(ctx, query, id).
		Scan(&rv.ID, &rv.MealID, &rv.UserID, &rv.UserEmail, &rv.Rating, &rv.Body, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) ListByMeal(ctx context.Context, mealID int64) ([]model.Review, error) {
	const query = `SELECT id, meal_id, user_id, user_email, rating, body, created_at
                   FROM reviews WHERE meal_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, mealID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.MealID, &rv.UserID, &rv.UserEmail, &rv.Rating, &rv.Body, &rv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites review fields and, when the rating value changes,
// retracts the old contribution and applies the new one as a single
// delta inside the same transaction. The row lock serializes competing
// edits of the same review.
func (r *reviewRepository) Update(ctx context.Context, id int64, patch repository.ReviewPatch) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const lockReview = `SELECT meal_id, rating, body FROM reviews WHERE id=$1 FOR UPDATE`
		var (
			mealID    int64
			oldRating int
			body      string
		)
		if err := tx.QueryRow(ctx, lockReview, id).Scan(&mealID, &oldRating, &body); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		newRating := oldRating
		if patch.Rating != nil {
			newRating = *patch.Rating
		}
		if patch.Body != nil {
			body = *patch.Body
		}

		const updateReview = `UPDATE reviews SET rating=$2, body=$3 WHERE id=$1`
		if _, err := tx.Exec(ctx, updateReview, id, newRating, body); err != nil {
			return err
		}

		if newRating != oldRating {
			return applyReviewDelta(ctx, tx, mealID, 0, float64(newRating-oldRating))
		}
		return nil
	})
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const deleteReview = `DELETE FROM reviews WHERE id=$1 RETURNING meal_id, rating`
		var (
			mealID int64
			rating int
		)
		if err := tx.QueryRow(ctx, deleteReview, id).Scan(&mealID, &rating); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		return applyReviewDelta(ctx, tx, mealID, -1, -float64(rating))
	})
}

// --- OrderRepository implementation ---

const orderColumns = `id, reference, buyer_id, buyer_email, chef_id, meal_id, meal_name, quantity, unit_price,
        order_status, payment_status, COALESCE(checkout_session_id, ''), created_at, updated_at`

func scanOrderRow(row pgx.Row, o *model.Order) error {
	return row.Scan(&o.ID, &o.Reference, &o.BuyerID, &o.BuyerEmail, &o.ChefID, &o.MealID, &o.MealName,
		&o.Quantity, &o.UnitPrice, &o.Status, &o.PaymentStatus, &o.CheckoutSessionID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const query = `INSERT INTO orders (reference, buyer_id, buyer_email, chef_id, meal_id, meal_name,
                                       quantity, unit_price, order_status, payment_status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING id, created_at, updated_at`
	created := *order
	err := r.storage.pool.QueryRow(ctx, query,
		order.Reference, order.BuyerID, order.BuyerEmail, order.ChefID, order.MealID, order.MealName,
		order.Quantity, order.UnitPrice, model.OrderStatusPlaced, model.PaymentStatusUnpaid).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	created.Status = model.OrderStatusPlaced
	created.PaymentStatus = model.PaymentStatusUnpaid
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	var o model.Order
	if err := scanOrderRow(r.storage.pool.QueryRow(ctx, query, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) listBy(ctx context.Context, column string, id int64) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + column + `=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.BuyerID, &o.BuyerEmail, &o.ChefID, &o.MealID, &o.MealName,
			&o.Quantity, &o.UnitPrice, &o.Status, &o.PaymentStatus, &o.CheckoutSessionID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return r.listBy(ctx, "buyer_id", buyerID)
}

func (r *orderRepository) ListByChef(ctx context.Context, chefID int64) ([]model.Order, error) {
	return r.listBy(ctx, "chef_id", chefID)
}

func (r *orderRepository) UpdateStatusGuard(ctx context.Context, id int64, from, to model.OrderStatus) error {
	const query = `UPDATE orders SET order_status=$3, updated_at=NOW() WHERE id=$1 AND order_status=$2`
	tag, err := r.storage.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

func (r *orderRepository) SetCheckoutSession(ctx context.Context, id int64, sessionID string) error {
	const query = `UPDATE orders SET checkout_session_id=$2, updated_at=NOW()
                   WHERE id=$1 AND payment_status=$3`
	tag, err := r.storage.pool.Exec(ctx, query, id, sessionID, model.PaymentStatusUnpaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domainErrors.ErrOrderAlreadyPaid
	}
	return nil
}

func (r *orderRepository) SelectBatchForSettlement(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE payment_status=$1 AND checkout_session_id IS NOT NULL
              ORDER BY updated_at
              LIMIT $2`
	rows, err := r.storage.pool.Query(ctx, query, model.PaymentStatusUnpaid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.BuyerID, &o.BuyerEmail, &o.ChefID, &o.MealID, &o.MealName,
			&o.Quantity, &o.UnitPrice, &o.Status, &o.PaymentStatus, &o.CheckoutSessionID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- PaymentRepository implementation ---

// Settle records the payment and flips the order's payment status in
// one transaction. The unique constraint on transaction_id makes the
// insert the idempotency gate; the ON CONFLICT path reuses the
// existing record and still heals the order flag, so a crash between
// earlier attempts can never leave the two out of sync.
func (r *paymentRepository) Settle(ctx context.Context, sessionID, transactionID string, amountMinor int64) (*model.PaymentRecord, bool, error) {
	var (
		rec     model.PaymentRecord
		created bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const lockOrder = `SELECT id, buyer_email, meal_name FROM orders WHERE checkout_session_id=$1 FOR UPDATE`
		var (
			orderID    int64
			buyerEmail string
			mealName   string
		)
		if err := tx.QueryRow(ctx, lockOrder, sessionID).Scan(&orderID, &buyerEmail, &mealName); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		const insertPayment = `INSERT INTO payments (transaction_id, order_id, buyer_email, meal_name, amount_minor)
                               VALUES ($1, $2, $3, $4, $5)
                               ON CONFLICT (transaction_id) DO NOTHING
                               RETURNING id, paid_at`
		err := tx.QueryRow(ctx, insertPayment, transactionID, orderID, buyerEmail, mealName, amountMinor).
			Scan(&rec.ID, &rec.PaidAt)
		switch {
		case err == nil:
			created = true
			rec.TransactionID = transactionID
			rec.OrderID = orderID
			rec.BuyerEmail = buyerEmail
			rec.MealName = mealName
			rec.AmountMinor = amountMinor
		case errors.Is(err, pgx.ErrNoRows):
			// Idempotent replay: the record exists from an earlier attempt.
			const selectPayment = `SELECT id, transaction_id, order_id, buyer_email, meal_name, amount_minor, paid_at
                                   FROM payments WHERE transaction_id=$1`
			if err := tx.QueryRow(ctx, selectPayment, transactionID).
				Scan(&rec.ID, &rec.TransactionID, &rec.OrderID, &rec.BuyerEmail, &rec.MealName, &rec.AmountMinor, &rec.PaidAt); err != nil {
				return err
			}
		default:
			return err
		}

		const markPaid = `UPDATE orders SET payment_status=$2, updated_at=NOW()
                          WHERE id=$1 AND payment_status=$3`
		if _, err := tx.Exec(ctx, markPaid, orderID, model.PaymentStatusPaid, model.PaymentStatusUnpaid); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &rec, created, nil
}

func (r *paymentRepository) ListByBuyer(ctx context.Context, buyerEmail string) ([]model.PaymentRecord, error) {
	const query = `SELECT id, transaction_id, order_id, buyer_email, meal_name, amount_minor, paid_at
                   FROM payments WHERE buyer_email=$1 ORDER BY paid_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, buyerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PaymentRecord
	for rows.Next() {
		var p model.PaymentRecord
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.OrderID, &p.BuyerEmail, &p.MealName, &p.AmountMinor, &p.PaidAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// --- RoleRequestRepository implementation ---

func (r *roleRequestRepository) Create(ctx context.Context, userID int64, role model.Role) (*model.RoleRequest, error) {
	const query = `INSERT INTO role_requests (user_id, requested_role) VALUES ($1, $2) RETURNING id, created_at`
	req := model.RoleRequest{UserID: userID, RequestedRole: role, Status: model.RoleRequestPending}
	err := r.storage.pool.QueryRow(ctx, query, userID, role).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *roleRequestRepository) ListPending(ctx context.Context) ([]model.RoleRequest, error) {
	const query = `SELECT id, user_id, requested_role, status, created_at, decided_at
                   FROM role_requests WHERE status=$1 ORDER BY created_at`
	rows, err := r.storage.pool.Query(ctx, query, model.RoleRequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.RoleRequest
	for rows.Next() {
		var req model.RoleRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.RequestedRole, &req.Status, &req.CreatedAt, &req.DecidedAt); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *roleRequestRepository) Decide(ctx context.Context, id int64, approve bool) (*model.RoleRequest, error) {
	status := model.RoleRequestRejected
	if approve {
		status = model.RoleRequestApproved
	}

	var req model.RoleRequest
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const decide = `UPDATE role_requests SET status=$2, decided_at=NOW()
                        WHERE id=$1 AND status=$3
                        RETURNING id, user_id, requested_role, status, created_at, decided_at`
		err := tx.QueryRow(ctx, decide, id, status, model.RoleRequestPending).
			Scan(&req.ID, &req.UserID, &req.RequestedRole, &req.Status, &req.CreatedAt, &req.DecidedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				const exists = `SELECT 1 FROM role_requests WHERE id=$1`
				var one int
				if scanErr := tx.QueryRow(ctx, exists, id).Scan(&one); scanErr != nil {
					if errors.Is(scanErr, pgx.ErrNoRows) {
						return domainErrors.ErrNotFound
					}
					return scanErr
				}
				return domainErrors.ErrInvalidTransition
			}
			return err
		}

		if approve {
			const promote = `UPDATE users SET role=$2 WHERE id=$1`
			if _, err := tx.Exec(ctx, promote, req.UserID, req.RequestedRole); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
