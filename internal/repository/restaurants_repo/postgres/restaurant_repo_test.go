package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAll(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM restaurants ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "cuisine_type", "rating", "delivery_time", "location"}).
			AddRow(1, "Pizza Palace", "Italian", 4.5, 30, "Downtown").
			AddRow(2, "Sushi Central", "Japanese", 4.8, 45, "Midtown"))

	restaurants, err := NewRestaurantRepository(db).ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, restaurants, 2)
	assert.Equal(t, int64(2), restaurants[1].ID)
	assert.Equal(t, "Japanese", restaurants[1].CuisineType)
	assert.Equal(t, 45, restaurants[1].DeliveryTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM restaurants").WillReturnError(errors.New("connection reset"))

	_, err = NewRestaurantRepository(db).ListAll(context.Background())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
