package query

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanRowsConvertsBytesToString(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"id", "slug", "version"}).
			AddRow([]byte("page-1"), []byte("home"), 3).
			AddRow([]byte("page-2"), []byte("about"), 1),
	)

	rows, err := db.Query("SELECT id, slug, version FROM _Page")
	require.NoError(t, err)
	defer rows.Close()

	records, err := ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "page-1", records[0]["id"])
	assert.Equal(t, "home", records[0]["slug"])
	assert.Equal(t, "about", records[1]["slug"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScanRowsEmptyResult(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rows, err := db.Query("SELECT id FROM _Page")
	require.NoError(t, err)
	defer rows.Close()

	records, err := ScanRows(rows)
	require.NoError(t, err)
	assert.Empty(t, records)
}
