package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Meals() MealRepository
	Reviews() ReviewRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	RoleRequests() RoleRequestRepository
}
