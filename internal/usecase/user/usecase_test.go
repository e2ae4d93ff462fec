package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "http-user-service/internal/domain/user"
	"http-user-service/pkg/errs"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	args := m.Called(ctx, query, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func setupTestUsecase(t *testing.T) (*Usecase, *MockRepository) {
	mockRepo := new(MockRepository)
	uc := New(mockRepo, zaptest.NewLogger(t))
	return uc, mockRepo
}

// ==================== CREATE USER TESTS ====================

func TestCreateUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, &domain.User{Name: "John Doe", Email: "john@example.com"}).Return(int64(1), nil)

	resp, err := uc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "John Doe",
		Email: "john@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_EmailAlreadyExists(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{ID: 3, Name: "Other John", Email: "john@example.com"}, nil)

	resp, err := uc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "John Doe",
		Email: "john@example.com",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_UniquenessCheckFails(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, errors.New("connection refused"))

	resp, err := uc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "John Doe",
		Email: "john@example.com",
	})

	assert.Nil(t, resp)
	var internal *errs.InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, "failed to validate email uniqueness", internal.Message)
}

func TestCreateUser_RepositoryError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("insert failed"))

	resp, err := uc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "John Doe",
		Email: "john@example.com",
	})

	assert.Nil(t, resp)
	assert.EqualError(t, err, "insert failed")
}

func TestCreateUser_ConcurrentSameEmail(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	// The per-email lock serializes the two creates: the first sees no
	// existing user, the second sees the one just created.
	mockRepo.On("GetByEmail", mock.Anything, "race@example.com").Return(nil, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
	mockRepo.On("GetByEmail", mock.Anything, "race@example.com").
		Return(&domain.User{ID: 1, Email: "race@example.com"}, nil).Once()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.CreateUser(context.Background(), CreateUserRequest{
				Name:  "Racer",
				Email: "race@example.com",
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrEmailTaken):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
}

// ==================== UPDATE USER TESTS ====================

func TestUpdateUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, nil)
	mockRepo.On("Update", mock.Anything, &domain.User{ID: 1, Name: "John Doe", Email: "new@example.com"}).Return(int64(1), nil)

	resp, err := uc.UpdateUser(context.Background(), UpdateUserRequest{
		ID:    1,
		Name:  "John Doe",
		Email: "new@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestUpdateUser_InvalidID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	resp, err := uc.UpdateUser(context.Background(), UpdateUserRequest{ID: 0, Name: "John"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUser_EmailTakenByOtherUser(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByEmail", mock.Anything, "taken@example.com").
		Return(&domain.User{ID: 2, Email: "taken@example.com"}, nil)

	resp, err := uc.UpdateUser(context.Background(), UpdateUserRequest{
		ID:    1,
		Email: "taken@example.com",
	})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUser_KeepingOwnEmail(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	// The email resolves to the user being updated, which is fine.
	mockRepo.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{ID: 1, Email: "john@example.com"}, nil)
	mockRepo.On("Update", mock.Anything, mock.Anything).Return(int64(1), nil)

	resp, err := uc.UpdateUser(context.Background(), UpdateUserRequest{
		ID:    1,
		Name:  "John Renamed",
		Email: "john@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestUpdateUser_EmptyEmailSkipsUniquenessCheck(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("Update", mock.Anything, &domain.User{ID: 1, Name: "John Renamed"}).Return(int64(1), nil)

	_, err := uc.UpdateUser(context.Background(), UpdateUserRequest{ID: 1, Name: "John Renamed"})

	require.NoError(t, err)
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

// ==================== DELETE USER TESTS ====================

func TestDeleteUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("Delete", mock.Anything, int64(1)).Return(int64(1), nil)

	resp, err := uc.DeleteUser(context.Background(), DeleteUserRequest{ID: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
}

func TestDeleteUser_InvalidID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	resp, err := uc.DeleteUser(context.Background(), DeleteUserRequest{ID: -1})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("Delete", mock.Anything, int64(42)).Return(int64(0), domain.ErrNotFound)

	resp, err := uc.DeleteUser(context.Background(), DeleteUserRequest{ID: 42})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== GET USER TESTS ====================

func TestGetUser_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByID", mock.Anything, int64(1)).
		Return(&domain.User{ID: 1, Name: "John Doe", Email: "john@example.com"}, nil)

	resp, err := uc.GetUser(context.Background(), GetUserRequest{ID: 1})

	require.NoError(t, err)
	assert.Equal(t, &GetUserResponse{ID: 1, Name: "John Doe", Email: "john@example.com"}, resp)
}

func TestGetUser_InvalidID(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	resp, err := uc.GetUser(context.Background(), GetUserRequest{ID: 0})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetUser_NotFound(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

	resp, err := uc.GetUser(context.Background(), GetUserRequest{ID: 99})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== LIST USERS TESTS ====================

func TestListUsers_Success(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("List", mock.Anything, "", int64(2), int64(10)).Return([]domain.User{
		{ID: 11, Name: "John Doe", Email: "john@example.com"},
		{ID: 12, Name: "Jane Smith", Email: "jane@example.com"},
	}, int64(25), nil)

	resp, err := uc.ListUsers(context.Background(), ListUsersRequest{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, "John Doe", resp.Users[0].Name)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, int64(25), resp.Pagination.Total)
	assert.Equal(t, int64(2), resp.Pagination.Page)
	assert.Equal(t, int64(3), resp.Pagination.TotalPages)
}

func TestListUsers_ClampsPageAndLimit(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("List", mock.Anything, "", int64(1), int64(10)).Return([]domain.User{}, int64(0), nil).Once()
	_, err := uc.ListUsers(context.Background(), ListUsersRequest{Page: -2, Limit: 0})
	require.NoError(t, err)

	mockRepo.On("List", mock.Anything, "", int64(1), int64(100)).Return([]domain.User{}, int64(0), nil).Once()
	_, err = uc.ListUsers(context.Background(), ListUsersRequest{Page: 1, Limit: 5000})
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestListUsers_InvalidQuery(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("List", mock.Anything, "john; DROP TABLE users", int64(1), int64(10)).
		Return(nil, int64(0), domain.ErrInvalidQuery)

	resp, err := uc.ListUsers(context.Background(), ListUsersRequest{Query: "john; DROP TABLE users"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestListUsers_RepositoryError(t *testing.T) {
	uc, mockRepo := setupTestUsecase(t)

	mockRepo.On("List", mock.Anything, "", int64(1), int64(10)).Return(nil, int64(0), errors.New("query timeout"))

	resp, err := uc.ListUsers(context.Background(), ListUsersRequest{})

	assert.Nil(t, resp)
	assert.EqualError(t, err, "query timeout")
}
