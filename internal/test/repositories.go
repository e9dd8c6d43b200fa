package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, email, name, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[email]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Email: email, Name: name, Role: model.RoleUser, PasswordHash: passwordHash}
	s.Next++
	s.Users[email] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[email]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// UpdateRole changes the stored role for a user.
func (s *UserRepositoryStub) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	if s.Err != nil {
		return s.Err
	}
	user, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	user.Role = role
	return nil
}

// MealRepositoryStub stores meals in-memory and applies aggregate
// updates the way the database would.
type MealRepositoryStub struct {
	CreateFn func(context.Context, *model.Meal) (*model.Meal, error)
	GetFn    func(context.Context, int64) (*model.Meal, error)
	ListFn   func(context.Context) ([]model.Meal, error)
	UpdateFn func(context.Context, int64, repository.MealPatch) error
	DeleteFn func(context.Context, int64) error

	mu    sync.Mutex
	Meals map[int64]*model.Meal
	Next  int64
}

// NewMealRepositoryStub constructs stub repository with initialized map.
func NewMealRepositoryStub() *MealRepositoryStub {
	return &MealRepositoryStub{Meals: make(map[int64]*model.Meal), Next: 1}
}

// Seed stores a meal under its identifier.
func (s *MealRepositoryStub) Seed(meal *model.Meal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Meals == nil {
		s.Meals = make(map[int64]*model.Meal)
	}
	s.Meals[meal.ID] = meal
	if meal.ID >= s.Next {
		s.Next = meal.ID + 1
	}
}

// Create stores a new meal or delegates to the override.
func (s *MealRepositoryStub) Create(ctx context.Context, meal *model.Meal) (*model.Meal, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, meal)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Meals == nil {
		s.Meals = make(map[int64]*model.Meal)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *meal
	stored.ID = s.Next
	stored.CreatedAt = time.Now()
	s.Next++
	s.Meals[stored.ID] = &stored
	return &stored, nil
}

// GetByID returns a copy of the stored meal or not found.
func (s *MealRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Meal, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	meal, ok := s.Meals[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copy := *meal
	return &copy, nil
}

// List returns every stored meal.
func (s *MealRepositoryStub) List(ctx context.Context) ([]model.Meal, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	meals := make([]model.Meal, 0, len(s.Meals))
	for _, m := range s.Meals {
		meals = append(meals, *m)
	}
	return meals, nil
}

// Update applies patch fields to the stored meal.
func (s *MealRepositoryStub) Update(ctx context.Context, id int64, patch repository.MealPatch) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, patch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	meal, ok := s.Meals[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if patch.Name != nil {
		meal.Name = *patch.Name
	}
	if patch.Description != nil {
		meal.Description = *patch.Description
	}
	if patch.Price != nil {
		meal.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		meal.ImageURL = *patch.ImageURL
	}
	return nil
}

// Delete removes a stored meal.
func (s *MealRepositoryStub) Delete(ctx context.Context, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Meals[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Meals, id)
	return nil
}

// applyDelta adjusts meal aggregates under the lock, mirroring the
// single-statement update the real storage issues.
func (s *MealRepositoryStub) applyDelta(mealID int64, countDelta int64, sumDelta float64) error {
	meal, ok := s.Meals[mealID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	meal.ReviewCount += countDelta
	if meal.ReviewCount < 0 {
		meal.ReviewCount = 0
	}
	meal.ReviewSum += sumDelta
	if meal.ReviewCount == 0 {
		meal.ReviewSum = 0
		meal.Rating = 0
		return nil
	}
	meal.Rating = meal.ReviewSum / float64(meal.ReviewCount)
	return nil
}

// ReviewRepositoryStub stores reviews in-memory while keeping the
// linked meal's aggregates consistent, as the real repository does in
// one transaction.
type ReviewRepositoryStub struct {
	CreateFn func(context.Context, *model.Review) (*model.Review, error)
	GetFn    func(context.Context, int64) (*model.Review, error)
	ListFn   func(context.Context, int64) ([]model.Review, error)
	UpdateFn func(context.Context, int64, repository.ReviewPatch) error
	DeleteFn func(context.Context, int64) error

	MealsRef *MealRepositoryStub
	Reviews  map[int64]*model.Review
	Next     int64
}

// NewReviewRepositoryStub constructs stub repository bound to a meal stub.
func NewReviewRepositoryStub(meals *MealRepositoryStub) *ReviewRepositoryStub {
	return &ReviewRepositoryStub{MealsRef: meals, Reviews: make(map[int64]*model.Review), Next: 1}
}

// Create stores the review and applies the aggregate delta atomically.
func (s *ReviewRepositoryStub) Create(ctx context.Context, review *model.Review) (*model.Review, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, review)
	}
	s.MealsRef.mu.Lock()
	defer s.MealsRef.mu.Unlock()
	if _, ok := s.MealsRef.Meals[review.MealID]; !ok {
		return nil, domainErrors.ErrNotFound
	}
	if s.Reviews == nil {
		s.Reviews = make(map[int64]*model.Review)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *review
	stored.ID = s.Next
	stored.CreatedAt = time.Now()
	s.Next++
	s.Reviews[stored.ID] = &stored
	if err := s.MealsRef.applyDelta(stored.MealID, 1, float64(stored.Rating)); err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByID returns a copy of the stored review or not found.
func (s *ReviewRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	s.MealsRef.mu.Lock()
	defer s.MealsRef.mu.Unlock()
	review, ok := s.Reviews[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copy := *review
	return &copy, nil
}

// ListByMeal returns reviews attached to the meal.
func (s *ReviewRepositoryStub) ListByMeal(ctx context.Context, mealID int64) ([]model.Review, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, mealID)
	}
	s.MealsRef.mu.Lock()
	defer s.MealsRef.mu.Unlock()
	var reviews []model.Review
	for _, r := range s.Reviews {
		if r.MealID == mealID {
			reviews = append(reviews, *r)
		}
	}
	return reviews, nil
}

// Update patches the review and shifts the aggregate by the rating change.
func (s *ReviewRepositoryStub) Update(ctx context.Context, id int64, patch repository.ReviewPatch) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, patch)
	}
	s.MealsRef.mu.Lock()
	defer s.MealsRef.mu.Unlock()
	review, ok := s.Reviews[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if patch.Rating != nil && *patch.Rating != review.Rating {
		delta := float64(*patch.Rating - review.Rating)
		if err := s.MealsRef.applyDelta(review.MealID, 0, delta); err != nil {
			return err
		}
		review.Rating = *patch.Rating
	}
	if patch.Body != nil {
		review.Body = *patch.Body
	}
	return nil
}

// Delete removes the review and retracts its rating contribution.
func (s *ReviewRepositoryStub) Delete(ctx context.Context, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	s.MealsRef.mu.Lock()
	defer s.MealsRef.mu.Unlock()
	review, ok := s.Reviews[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if err := s.MealsRef.applyDelta(review.MealID, -1, -float64(review.Rating)); err != nil {
		return err
	}
	delete(s.Reviews, id)
	return nil
}

// OrderRepositoryStub allows tests to customize behaviour.
type OrderRepositoryStub struct {
	CreateFn             func(context.Context, *model.Order) (*model.Order, error)
	GetByIDFn            func(context.Context, int64) (*model.Order, error)
	ListByBuyerFn        func(context.Context, int64) ([]model.Order, error)
	ListByChefFn         func(context.Context, int64) ([]model.Order, error)
	UpdateStatusGuardFn  func(context.Context, int64, model.OrderStatus, model.OrderStatus) error
	SetCheckoutSessionFn func(context.Context, int64, string) error
	SelectBatchFn        func(context.Context, int) ([]model.Order, error)

	mu         sync.Mutex
	Orders     map[int64]*model.Order
	Next       int64
	Guards     []OrderGuardCall
	Sessions   []OrderSessionCall
	Settleable []model.Order
}

// OrderGuardCall stores information about UpdateStatusGuard invocations.
type OrderGuardCall struct {
	OrderID int64
	From    model.OrderStatus
	To      model.OrderStatus
}

// OrderSessionCall stores information about SetCheckoutSession invocations.
type OrderSessionCall struct {
	OrderID   int64
	SessionID string
}

// NewOrderRepositoryStub constructs stub repository with initialized map.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order), Next: 1}
}

// Seed stores an order under its identifier.
func (s *OrderRepositoryStub) Seed(order *model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[int64]*model.Order)
	}
	s.Orders[order.ID] = order
	if order.ID >= s.Next {
		s.Next = order.ID + 1
	}
}

// Create stores a new order or delegates to the override.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[int64]*model.Order)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	stored := *order
	stored.ID = s.Next
	if stored.Status == "" {
		stored.Status = model.OrderStatusPlaced
	}
	if stored.PaymentStatus == "" {
		stored.PaymentStatus = model.PaymentStatusUnpaid
	}
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.Next++
	s.Orders[stored.ID] = &stored
	return &stored, nil
}

// GetByID returns a copy of the stored order or not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	copy := *order
	return &copy, nil
}

// ListByBuyer returns stored orders placed by the buyer.
func (s *OrderRepositoryStub) ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	if s.ListByBuyerFn != nil {
		return s.ListByBuyerFn(ctx, buyerID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, o := range s.Orders {
		if o.BuyerID == buyerID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

// ListByChef returns stored orders addressed to the chef.
func (s *OrderRepositoryStub) ListByChef(ctx context.Context, chefID int64) ([]model.Order, error) {
	if s.ListByChefFn != nil {
		return s.ListByChefFn(ctx, chefID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var orders []model.Order
	for _, o := range s.Orders {
		if o.ChefID == chefID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

// UpdateStatusGuard applies the conditional transition against stored state.
func (s *OrderRepositoryStub) UpdateStatusGuard(ctx context.Context, id int64, from, to model.OrderStatus) error {
	if s.UpdateStatusGuardFn != nil {
		return s.UpdateStatusGuardFn(ctx, id, from, to)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Guards = append(s.Guards, OrderGuardCall{OrderID: id, From: from, To: to})
	order, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.Status != from {
		return domainErrors.ErrInvalidTransition
	}
	order.Status = to
	return nil
}

// SetCheckoutSession records the session on the stored order.
func (s *OrderRepositoryStub) SetCheckoutSession(ctx context.Context, id int64, sessionID string) error {
	if s.SetCheckoutSessionFn != nil {
		return s.SetCheckoutSessionFn(ctx, id, sessionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sessions = append(s.Sessions, OrderSessionCall{OrderID: id, SessionID: sessionID})
	order, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return domainErrors.ErrOrderAlreadyPaid
	}
	order.CheckoutSessionID = sessionID
	return nil
}

// SelectBatchForSettlement returns the configured unsettled orders.
func (s *OrderRepositoryStub) SelectBatchForSettlement(ctx context.Context, limit int) ([]model.Order, error) {
	if s.SelectBatchFn != nil {
		return s.SelectBatchFn(ctx, limit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit < len(s.Settleable) {
		return s.Settleable[:limit], nil
	}
	return s.Settleable, nil
}

// PaymentRepositoryStub simulates idempotent settlement for tests.
type PaymentRepositoryStub struct {
	SettleFn func(context.Context, string, string, int64) (*model.PaymentRecord, bool, error)
	ListFn   func(context.Context, string) ([]model.PaymentRecord, error)

	OrdersRef *OrderRepositoryStub

	mu            sync.Mutex
	ByTransaction map[string]*model.PaymentRecord
	Next          int64
	SettleCalls   int
}

// NewPaymentRepositoryStub constructs stub repository bound to an order stub.
func NewPaymentRepositoryStub(orders *OrderRepositoryStub) *PaymentRepositoryStub {
	return &PaymentRepositoryStub{OrdersRef: orders, ByTransaction: make(map[string]*model.PaymentRecord), Next: 1}
}

// Settle records the payment once per transaction id and marks the
// owning order paid, mirroring the real repository's transaction.
func (s *PaymentRepositoryStub) Settle(ctx context.Context, sessionID, transactionID string, amountMinor int64) (*model.PaymentRecord, bool, error) {
	if s.SettleFn != nil {
		return s.SettleFn(ctx, sessionID, transactionID, amountMinor)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SettleCalls++
	if s.ByTransaction == nil {
		s.ByTransaction = make(map[string]*model.PaymentRecord)
	}
	var order *model.Order
	if s.OrdersRef != nil {
		s.OrdersRef.mu.Lock()
		for _, o := range s.OrdersRef.Orders {
			if o.CheckoutSessionID == sessionID {
				order = o
				break
			}
		}
		s.OrdersRef.mu.Unlock()
	}
	if order == nil {
		return nil, false, domainErrors.ErrNotFound
	}
	if rec, ok := s.ByTransaction[transactionID]; ok {
		copy := *rec
		if order.PaymentStatus == model.PaymentStatusUnpaid {
			order.PaymentStatus = model.PaymentStatusPaid
		}
		return &copy, false, nil
	}
	if s.Next == 0 {
		s.Next = 1
	}
	rec := &model.PaymentRecord{
		ID:            s.Next,
		TransactionID: transactionID,
		OrderID:       order.ID,
		BuyerEmail:    order.BuyerEmail,
		MealName:      order.MealName,
		AmountMinor:   amountMinor,
		PaidAt:        time.Now(),
	}
	s.Next++
	s.ByTransaction[transactionID] = rec
	order.PaymentStatus = model.PaymentStatusPaid
	copy := *rec
	return &copy, true, nil
}

// ListByBuyer returns records settled for the given buyer.
func (s *PaymentRepositoryStub) ListByBuyer(ctx context.Context, buyerEmail string) ([]model.PaymentRecord, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, buyerEmail)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []model.PaymentRecord
	for _, r := range s.ByTransaction {
		if r.BuyerEmail == buyerEmail {
			records = append(records, *r)
		}
	}
	return records, nil
}

// RoleRequestRepositoryStub stores promotion requests for tests.
type RoleRequestRepositoryStub struct {
	CreateFn func(context.Context, int64, model.Role) (*model.RoleRequest, error)
	ListFn   func(context.Context) ([]model.RoleRequest, error)
	DecideFn func(context.Context, int64, bool) (*model.RoleRequest, error)

	UsersRef *UserRepositoryStub
	Requests map[int64]*model.RoleRequest
	Next     int64
}

// NewRoleRequestRepositoryStub constructs stub repository bound to a user stub.
func NewRoleRequestRepositoryStub(users *UserRepositoryStub) *RoleRequestRepositoryStub {
	return &RoleRequestRepositoryStub{UsersRef: users, Requests: make(map[int64]*model.RoleRequest), Next: 1}
}

// Create stores a pending request.
func (s *RoleRequestRepositoryStub) Create(ctx context.Context, userID int64, role model.Role) (*model.RoleRequest, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, role)
	}
	if s.Requests == nil {
		s.Requests = make(map[int64]*model.RoleRequest)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	req := &model.RoleRequest{ID: s.Next, UserID: userID, RequestedRole: role, Status: model.RoleRequestPending, CreatedAt: time.Now()}
	s.Next++
	s.Requests[req.ID] = req
	return req, nil
}

// ListPending returns requests still awaiting a decision.
func (s *RoleRequestRepositoryStub) ListPending(ctx context.Context) ([]model.RoleRequest, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx)
	}
	var pending []model.RoleRequest
	for _, r := range s.Requests {
		if r.Status == model.RoleRequestPending {
			pending = append(pending, *r)
		}
	}
	return pending, nil
}

// Decide resolves a pending request and promotes the user on approval.
func (s *RoleRequestRepositoryStub) Decide(ctx context.Context, id int64, approve bool) (*model.RoleRequest, error) {
	if s.DecideFn != nil {
		return s.DecideFn(ctx, id, approve)
	}
	req, ok := s.Requests[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if req.Status != model.RoleRequestPending {
		return nil, domainErrors.ErrInvalidTransition
	}
	now := time.Now()
	req.DecidedAt = &now
	if approve {
		req.Status = model.RoleRequestApproved
		if s.UsersRef != nil {
			if user, ok := s.UsersRef.ByID[req.UserID]; ok {
				user.Role = req.RequestedRole
			}
		}
	} else {
		req.Status = model.RoleRequestRejected
	}
	copy := *req
	return &copy, nil
}
