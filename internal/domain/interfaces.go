package domain

import (
	"context"
	"time"

	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
	SearchAvailableItems(ctx context.Context, text string) ([]*models.Item, error)
	PatchItem(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.BookingStatus) error
	GetBookingsByBooker(ctx context.Context, bookerID int64) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	GetBookingsByBookerAndItem(ctx context.Context, bookerID, itemID int64) ([]*models.Booking, error)
	GetActiveBookingsForItems(ctx context.Context, itemIDs []int64) ([]*models.Booking, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsForItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	CreateItemRequest(ctx context.Context, request *models.ItemRequest) error
	GetItemRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetItemRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetAllItemRequests(ctx context.Context) ([]*models.ItemRequest, error)
}

// Repository is the whole entity store as seen by the services.
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository
}

type RateLimitRepository interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Clock supplies "now" to the time-dependent rules.
type Clock func() time.Time

type BookingService interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	ChangeStatus(ctx context.Context, bookingID, actingUserID int64, approve bool) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID, requesterID int64) (*models.Booking, error)
	ListByBooker(ctx context.Context, bookerID int64, state models.BookingState) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state models.BookingState) ([]*models.Booking, error)
}

type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, ownerID, itemID int64) error
	GetByID(ctx context.Context, itemID, userID int64) (*models.ItemView, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.ItemView, error)
	Search(ctx context.Context, text string) ([]*models.Item, error)
}

type CommentService interface {
	SaveComment(ctx context.Context, text string, itemID, authorID int64) (*models.Comment, error)
}

type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetAll(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type RequestService interface {
	Create(ctx context.Context, requestorID int64, description string) (*models.ItemRequest, error)
	GetByID(ctx context.Context, requestID, userID int64) (*models.ItemRequestView, error)
	ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	ListAll(ctx context.Context) ([]*models.ItemRequest, error)
}

// TelegramSender is the subset of *tgbotapi.BotAPI used for chat notifications.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
