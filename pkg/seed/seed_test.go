package seed

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/ctrack/pkg/db/dbtest"
	"github.com/doodlesbykumbi/ctrack/pkg/model"
	gormstore "github.com/doodlesbykumbi/ctrack/pkg/server/store/gorm"
)

const catalog = `identifier,name,control_text,discussion,related
AC-1,Policy and Procedures,"Develop, document, and disseminate an access control policy.",,"IA-1, PM-9"
AC-2,Account Management,Define and document the types of accounts allowed.,Examples of system account types include individual and shared.,
AU-2,Event Logging,Identify the types of events that the system is capable of logging.,,AC-2
`

// MockLibraryStore implements store.LibraryStore for testing using testify/mock
type MockLibraryStore struct {
	mock.Mock
}

func (m *MockLibraryStore) Search(query string) ([]model.ControlReference, error) {
	args := m.Called(query)
	return args.Get(0).([]model.ControlReference), args.Error(1)
}

func (m *MockLibraryStore) Get(identifier string) (*model.ControlReference, error) {
	args := m.Called(identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ControlReference), args.Error(1)
}

func (m *MockLibraryStore) IsEmpty() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockLibraryStore) Insert(controls []model.ControlReference) error {
	args := m.Called(controls)
	return args.Error(0)
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunSeedsEmptyLibrary(t *testing.T) {
	library := gormstore.NewLibraryStore(dbtest.New(t))
	seeder := New(library, writeCatalog(t, catalog), nil)

	result, err := seeder.Run()
	require.NoError(t, err)
	assert.Equal(t, Result{Ran: true, Inserted: 3}, result)

	control, err := library.Get("AC-1")
	require.NoError(t, err)
	assert.Equal(t, "Develop, document, and disseminate an access control policy.", control.ControlText)
	assert.Nil(t, control.Discussion)
	require.NotNil(t, control.Related)
	assert.Equal(t, "IA-1, PM-9", *control.Related)

	control, err = library.Get("AC-2")
	require.NoError(t, err)
	require.NotNil(t, control.Discussion)
	assert.Nil(t, control.Related)
}

func TestRunIsIdempotent(t *testing.T) {
	database := dbtest.New(t)
	library := gormstore.NewLibraryStore(database)
	seeder := New(library, writeCatalog(t, catalog), nil)

	_, err := seeder.Run()
	require.NoError(t, err)

	result, err := seeder.Run()
	require.NoError(t, err)
	assert.False(t, result.Ran)
	assert.Zero(t, result.Inserted)

	var count int64
	require.NoError(t, database.Model(&model.ControlReference{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestRunPerformsNoInsertWhenPopulated(t *testing.T) {
	library := new(MockLibraryStore)
	library.On("IsEmpty").Return(false, nil)

	result, err := New(library, writeCatalog(t, catalog), nil).Run()
	require.NoError(t, err)
	assert.False(t, result.Ran)
	library.AssertNotCalled(t, "Insert", mock.Anything)
	library.AssertExpectations(t)
}

func TestRunSkipsMissingFile(t *testing.T) {
	library := new(MockLibraryStore)
	library.On("IsEmpty").Return(true, nil)

	result, err := New(library, filepath.Join(t.TempDir(), "absent.csv"), nil).Run()
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)
	library.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestRunAcceptsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	library := new(MockLibraryStore)
	library.On("IsEmpty").Return(true, nil)
	library.On("Insert", mock.Anything).Return(nil)

	result, err := New(library, path, nil).Run()
	require.NoError(t, err)
	assert.Equal(t, Result{Ran: true}, result)
}

func TestRunPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("database is locked")

	library := new(MockLibraryStore)
	library.On("IsEmpty").Return(false, boom)
	_, err := New(library, writeCatalog(t, catalog), nil).Run()
	assert.ErrorIs(t, err, boom)

	library = new(MockLibraryStore)
	library.On("IsEmpty").Return(true, nil)
	library.On("Insert", mock.Anything).Return(boom)
	_, err = New(library, writeCatalog(t, catalog), nil).Run()
	assert.ErrorIs(t, err, boom)
}

func TestParse(t *testing.T) {
	t.Run("column order and extra columns", func(t *testing.T) {
		in := "family,related,control_text,name,identifier\nAccess Control,,Text,Name,AC-3\n"
		controls, skipped, err := Parse(strings.NewReader(in))
		require.NoError(t, err)
		assert.Zero(t, skipped)
		require.Len(t, controls, 1)
		assert.Equal(t, "AC-3", controls[0].Identifier)
		assert.Equal(t, "Name", controls[0].Name)
		assert.Equal(t, "Text", controls[0].ControlText)
		assert.Nil(t, controls[0].Related)
		assert.Nil(t, controls[0].Discussion)
	})

	t.Run("byte order mark", func(t *testing.T) {
		in := "\ufeffidentifier,name,control_text\nAC-1,N,T\n"
		controls, _, err := Parse(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, controls, 1)
		assert.Equal(t, "AC-1", controls[0].Identifier)
	})

	t.Run("duplicates and blank identifiers are skipped", func(t *testing.T) {
		in := "identifier,name,control_text\nAC-1,First,T\n,Blank,T\nAC-1,Second,T\nAC-2,N,T\n"
		controls, skipped, err := Parse(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, 2, skipped)
		require.Len(t, controls, 2)
		assert.Equal(t, "First", controls[0].Name)
	})

	t.Run("missing required column", func(t *testing.T) {
		_, _, err := Parse(strings.NewReader("identifier,name\nAC-1,N\n"))
		assert.ErrorContains(t, err, "control_text")
	})

	t.Run("empty file", func(t *testing.T) {
		controls, skipped, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, controls)
		assert.Zero(t, skipped)
	})

	t.Run("short rows", func(t *testing.T) {
		controls, _, err := Parse(strings.NewReader("identifier,name,control_text,discussion\nAC-1,N\n"))
		require.NoError(t, err)
		require.Len(t, controls, 1)
		assert.Equal(t, "", controls[0].ControlText)
	})
}
