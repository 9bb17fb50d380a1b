package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"boba-kart/internal/model"
	"boba-kart/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	orders *MockOrderRepository
	users  *MockUserRepository
	prices *MockPriceCalculator
	svc    *orderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders: new(MockOrderRepository),
		users:  new(MockUserRepository),
		prices: new(MockPriceCalculator),
	}
	f.svc = NewOrderService(f.orders, f.users, f.prices, pricing.DefaultRewards(), zerolog.Nop()).(*orderService)
	f.svc.now = fixedClock
	return f
}

func (f *orderFixture) assertExpectations(t *testing.T) {
	f.orders.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.prices.AssertExpectations(t)
}

func TestOrderService_Create_Success(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	drinkA, drinkB := model.NewID(), model.NewID()

	req := &model.OrderRequest{
		CustomerEmail: "guest@example.com",
		DrinkIDs:      []string{drinkA, "bogus", drinkB},
	}

	f.prices.On("Total", ctx, []string{drinkA, drinkB}, []string{}).
		Return(decimal.RequireFromString("13.50"), nil)
	f.users.On("GetByEmail", ctx, "guest@example.com").Return(nil, nil)

	mockTx := new(MockTx)
	f.orders.On("BeginTx", ctx).Return(mockTx, nil)
	f.orders.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := f.svc.Create(ctx, req)

	require.NoError(t, err)
	assert.True(t, model.IsValidID(order.ID))
	assert.Equal(t, "13.50", order.Total.StringFixed(2))
	assert.Equal(t, model.StatusNew, order.Status)
	assert.Equal(t, fixedNow, order.CreatedUTC)
	assert.Equal(t, []string{drinkA, drinkB}, order.DrinkIDs)
	assert.Zero(t, order.PointsEarned)
	f.assertExpectations(t)
	mockTx.AssertExpectations(t)
	f.users.AssertNotCalled(t, "AdjustPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_EarnsPointsForAccount(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	drink := model.NewID()
	user := &model.User{ID: model.NewID(), Email: "ada@example.com", RewardPoints: 10}

	f.prices.On("Total", ctx, []string{drink}, []string{}).Return(decimal.RequireFromString("12.99"), nil)
	f.users.On("GetByEmail", ctx, "ada@example.com").Return(user, nil)

	mockTx := new(MockTx)
	f.orders.On("BeginTx", ctx).Return(mockTx, nil)
	f.orders.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	f.users.On("AdjustPoints", ctx, mockTx, user.ID, 12).Return(22, nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := f.svc.Create(ctx, &model.OrderRequest{CustomerEmail: "ada@example.com", DrinkIDs: []string{drink}})

	require.NoError(t, err)
	assert.Equal(t, 12, order.PointsEarned)
	f.assertExpectations(t)
}

func TestOrderService_Create_RedeemsPoints(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	drink := model.NewID()
	user := &model.User{ID: model.NewID(), Email: "ada@example.com", RewardPoints: 150}

	f.prices.On("Total", ctx, []string{drink}, []string{}).Return(decimal.RequireFromString("20.00"), nil)
	f.users.On("GetByEmail", ctx, "ada@example.com").Return(user, nil)

	mockTx := new(MockTx)
	f.orders.On("BeginTx", ctx).Return(mockTx, nil)
	f.orders.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	// 100 redeemed for $5, 15 earned on the $15 total.
	f.users.On("AdjustPoints", ctx, mockTx, user.ID, 15-100).Return(65, nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := f.svc.Create(ctx, &model.OrderRequest{
		CustomerEmail: "ada@example.com",
		DrinkIDs:      []string{drink},
		RedeemPoints:  250,
		RequestedBy:   "ADA@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, 100, order.PointsRedeemed)
	assert.Equal(t, "5.00", order.Discount.StringFixed(2))
	assert.Equal(t, "20.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", order.Total.StringFixed(2))
	assert.Equal(t, 15, order.PointsEarned)
	f.assertExpectations(t)
}

func TestOrderService_Create_RedemptionCappedBySubtotal(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	drink := model.NewID()
	user := &model.User{ID: model.NewID(), Email: "ada@example.com", RewardPoints: 1000}

	f.prices.On("Total", ctx, []string{drink}, []string{}).Return(decimal.RequireFromString("7.50"), nil)
	f.users.On("GetByEmail", ctx, "ada@example.com").Return(user, nil)

	mockTx := new(MockTx)
	f.orders.On("BeginTx", ctx).Return(mockTx, nil)
	f.orders.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	f.users.On("AdjustPoints", ctx, mockTx, user.ID, 2-100).Return(902, nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := f.svc.Create(ctx, &model.OrderRequest{
		CustomerEmail: "ada@example.com",
		DrinkIDs:      []string{drink},
		RedeemPoints:  500,
		RequestedBy:   "ada@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, 100, order.PointsRedeemed)
	assert.Equal(t, "2.50", order.Total.StringFixed(2))
}

func TestOrderService_Create_RedemptionRequiresOwner(t *testing.T) {
	ctx := context.Background()
	drink := model.NewID()
	user := &model.User{ID: model.NewID(), Email: "ada@example.com", RewardPoints: 500}

	tests := []struct {
		name        string
		requestedBy string
		wantErr     error
	}{
		{name: "Anonymous caller", requestedBy: "", wantErr: model.ErrUnauthenticated},
		{name: "Different caller", requestedBy: "eve@example.com", wantErr: model.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.prices.On("Total", ctx, []string{drink}, []string{}).Return(decimal.NewFromInt(10), nil)
			f.users.On("GetByEmail", ctx, "ada@example.com").Return(user, nil)

			_, err := f.svc.Create(ctx, &model.OrderRequest{
				CustomerEmail: "ada@example.com",
				DrinkIDs:      []string{drink},
				RedeemPoints:  100,
				RequestedBy:   tt.requestedBy,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			f.orders.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestOrderService_Create_MissingEmail(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.Create(context.Background(), &model.OrderRequest{DrinkIDs: []string{model.NewID()}})

	de, ok := model.AsDomainError(err)
	require.True(t, ok)
	assert.Contains(t, de.Fields, "customerEmail")
	f.prices.AssertNotCalled(t, "Total", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_PricingError(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	drink := model.NewID()

	f.prices.On("Total", ctx, []string{drink}, []string{}).Return(decimal.Zero, errors.New("connection reset"))

	_, err := f.svc.Create(ctx, &model.OrderRequest{CustomerEmail: "a@b.c", DrinkIDs: []string{drink}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to price order")
}

func TestOrderService_Create_RollbackOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	drink := model.NewID()

	f.prices.On("Total", ctx, []string{drink}, []string{}).Return(decimal.NewFromInt(6), nil)
	f.users.On("GetByEmail", ctx, "a@b.c").Return(nil, nil)

	mockTx := new(MockTx)
	f.orders.On("BeginTx", ctx).Return(mockTx, nil)
	f.orders.On("CreateOrder", ctx, mockTx, mock.Anything).Return(errors.New("insert failed"))
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := f.svc.Create(ctx, &model.OrderRequest{CustomerEmail: "a@b.c", DrinkIDs: []string{drink}})

	require.Error(t, err)
	mockTx.AssertCalled(t, "Rollback", ctx)
	mockTx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestOrderService_Create_RollbackOnPointsFailure(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	drink := model.NewID()
	user := &model.User{ID: model.NewID(), Email: "a@b.c"}

	f.prices.On("Total", ctx, []string{drink}, []string{}).Return(decimal.NewFromInt(6), nil)
	f.users.On("GetByEmail", ctx, "a@b.c").Return(user, nil)

	mockTx := new(MockTx)
	f.orders.On("BeginTx", ctx).Return(mockTx, nil)
	f.orders.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	f.users.On("AdjustPoints", ctx, mockTx, user.ID, 6).Return(0, errors.New("deadlock"))
	mockTx.On("Rollback", ctx).Return(nil)

	_, err := f.svc.Create(ctx, &model.OrderRequest{CustomerEmail: "a@b.c", DrinkIDs: []string{drink}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to settle reward points")
	mockTx.AssertCalled(t, "Rollback", ctx)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	id := model.NewID()

	t.Run("Found", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", ctx, id).Return(&model.Order{ID: id, Status: model.StatusNew}, nil)

		order, err := f.svc.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, order.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", ctx, id).Return(nil, nil)

		_, err := f.svc.GetByID(ctx, id)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("Malformed id never reaches the store", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.svc.GetByID(ctx, "xyz")
		assert.ErrorIs(t, err, model.ErrInvalidID)
		f.orders.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("Passes filter through", func(t *testing.T) {
		f := newOrderFixture()
		status := model.StatusReady
		filter := model.OrderFilter{CustomerEmail: "a@b.c", Status: &status}
		f.orders.On("List", ctx, filter).Return([]model.Order{{ID: model.NewID()}}, nil)

		orders, err := f.svc.List(ctx, model.OrderFilter{CustomerEmail: " a@b.c ", Status: &status})
		require.NoError(t, err)
		assert.Len(t, orders, 1)
	})

	t.Run("Inverted date range", func(t *testing.T) {
		f := newOrderFixture()
		from := fixedNow
		to := fixedNow.Add(-time.Hour)

		_, err := f.svc.List(ctx, model.OrderFilter{From: &from, To: &to})
		assert.True(t, model.IsKind(err, model.KindValidation))
	})
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()
	id := model.NewID()
	drink := model.NewID()

	t.Run("Recomputes total and keeps discount", func(t *testing.T) {
		f := newOrderFixture()
		existing := &model.Order{
			ID:         id,
			Status:     model.StatusNew,
			Discount:   decimal.NewFromInt(5),
			CreatedUTC: fixedNow.Add(-time.Hour),
		}
		f.orders.On("GetByID", ctx, id).Return(existing, nil)
		f.prices.On("Total", ctx, []string{drink, drink}, []string{}).Return(decimal.RequireFromString("12.00"), nil)
		f.orders.On("Update", ctx, mock.MatchedBy(func(o *model.Order) bool {
			return o.Total.Equal(decimal.NewFromInt(7)) &&
				o.Status == model.StatusPreparing &&
				o.CustomerEmail == "new@example.com" &&
				o.UpdatedUTC != nil
		})).Return(true, nil)

		err := f.svc.Update(ctx, id, &model.OrderUpdateRequest{
			CustomerEmail: "new@example.com",
			DrinkIDs:      []string{drink, drink},
			Status:        "preparing",
		})
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("Total never negative", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", ctx, id).Return(&model.Order{ID: id, Status: model.StatusNew, Discount: decimal.NewFromInt(5)}, nil)
		f.prices.On("Total", ctx, []string{}, []string{}).Return(decimal.Zero, nil)
		f.orders.On("Update", ctx, mock.MatchedBy(func(o *model.Order) bool {
			return o.Total.IsZero()
		})).Return(true, nil)

		err := f.svc.Update(ctx, id, &model.OrderUpdateRequest{CustomerEmail: "a@b.c"})
		require.NoError(t, err)
	})

	t.Run("Illegal transition", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", ctx, id).Return(&model.Order{ID: id, Status: model.StatusCompleted}, nil)

		err := f.svc.Update(ctx, id, &model.OrderUpdateRequest{CustomerEmail: "a@b.c", Status: "New"})
		de, ok := model.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, model.ErrCodeInvalidTransition, de.Code)
		f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Missing order", func(t *testing.T) {
		f := newOrderFixture()
		f.orders.On("GetByID", ctx, id).Return(nil, nil)

		err := f.svc.Update(ctx, id, &model.OrderUpdateRequest{CustomerEmail: "a@b.c"})
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := model.NewID()

	tests := []struct {
		name      string
		current   model.OrderStatus
		requested string
		wantCode  string
	}{
		{name: "New to Preparing", current: model.StatusNew, requested: "Preparing"},
		{name: "Ready to Completed", current: model.StatusReady, requested: "completed"},
		{name: "Preparing to Cancelled", current: model.StatusPreparing, requested: "Cancelled"},
		{name: "Completed to New", current: model.StatusCompleted, requested: "New", wantCode: model.ErrCodeInvalidTransition},
		{name: "New to Ready", current: model.StatusNew, requested: "Ready", wantCode: model.ErrCodeInvalidTransition},
		{name: "Unknown status", current: model.StatusNew, requested: "Shipped", wantCode: model.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.orders.On("GetByID", ctx, id).Return(&model.Order{ID: id, Status: tt.current}, nil).Maybe()
			f.orders.On("UpdateStatus", ctx, id, mock.Anything, fixedNow).Return(true, nil).Maybe()

			err := f.svc.UpdateStatus(ctx, id, tt.requested)

			if tt.wantCode != "" {
				de, ok := model.AsDomainError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, de.Code)
				f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			f.orders.AssertCalled(t, "UpdateStatus", ctx, id, mock.Anything, fixedNow)
		})
	}
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	id := model.NewID()

	f := newOrderFixture()
	f.orders.On("SoftDelete", ctx, id, fixedNow).Return(true, nil).Once()
	f.orders.On("SoftDelete", ctx, id, fixedNow).Return(false, nil).Once()

	assert.NoError(t, f.svc.Delete(ctx, id))
	assert.ErrorIs(t, f.svc.Delete(ctx, id), model.ErrOrderNotFound)
}
