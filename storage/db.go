package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	lvlstorage "github.com/syndtr/goleveldb/leveldb/storage"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// KV is the read/write surface shared by the database and its transactions.
type KV interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
}

// Txn is an atomic unit of work. Either every write is applied by Commit or
// none are after Discard.
type Txn interface {
	KV
	Commit() error
	Discard()
}

// Database is a generic interface for a key-value store.
// This allows the ledger to use any database backend (in-memory or persistent).
type Database interface {
	KV
	// Begin opens a write transaction. Only one transaction may be open at a
	// time; Begin blocks until the previous one is committed or discarded.
	Begin() (Txn, error)
	Close() error
}

// LevelDB is a key-value store using LevelDB, either on disk or in memory.
type LevelDB struct {
	db *leveldb.DB
}

// NewLevelDB creates or opens a LevelDB database at the specified path.
func NewLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// NewMemDB opens a LevelDB instance over in-memory storage, for tests and
// throwaway ledgers.
func NewMemDB() (*LevelDB, error) {
	db, err := leveldb.Open(lvlstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// Put inserts or updates a key-value pair.
func (ldb *LevelDB) Put(key []byte, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

// Get retrieves a value for a given key.
func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return translate(ldb.db.Get(key, nil))
}

// Has reports whether key exists.
func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

// Delete removes key. Deleting a missing key is not an error.
func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}

// Begin opens a LevelDB transaction.
func (ldb *LevelDB) Begin() (Txn, error) {
	tx, err := ldb.db.OpenTransaction()
	if err != nil {
		return nil, err
	}
	return &levelTxn{tx: tx}, nil
}

// Close closes the database connection.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

type levelTxn struct {
	tx *leveldb.Transaction
}

func (t *levelTxn) Get(key []byte) ([]byte, error) {
	return translate(t.tx.Get(key, nil))
}

func (t *levelTxn) Has(key []byte) (bool, error) {
	return t.tx.Has(key, nil)
}

func (t *levelTxn) Put(key []byte, value []byte) error {
	return t.tx.Put(key, value, nil)
}

func (t *levelTxn) Delete(key []byte) error {
	return t.tx.Delete(key, nil)
}

func (t *levelTxn) Commit() error {
	return t.tx.Commit()
}

func (t *levelTxn) Discard() {
	t.tx.Discard()
}

func translate(value []byte, err error) ([]byte, error) {
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}
