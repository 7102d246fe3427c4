package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/accounts-api/internal/logging"
)

type fakeStore struct {
	users   map[int64]*User
	nextID  int64
	created *User
	updated *User
	err     error
	reads   int
	getErr  error
	onWrite func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]*User{}, nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, u *User) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	id := f.nextID
	f.nextID++
	cp := *u
	cp.ID = id
	f.users[id] = &cp
	f.created = &cp
	return id, nil
}

func (f *fakeStore) FindByIdentifier(_ context.Context, identifier string) (*User, error) {
	for _, u := range f.users {
		if u.Username == identifier || u.Email == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*User, error) {
	f.reads++
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) Update(_ context.Context, u *User) error {
	if f.onWrite != nil {
		f.onWrite()
	}
	if f.err != nil {
		return f.err
	}
	if _, ok := f.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	f.updated = &cp
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	if f.onWrite != nil {
		f.onWrite()
	}
	if _, ok := f.users[id]; !ok {
		return ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeHasher struct{ err error }

func (h fakeHasher) Hash(plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

type memoryCache struct {
	entries     map[int64]*User
	invalidated []int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[int64]*User{}}
}

func (c *memoryCache) Get(_ context.Context, id int64) (*User, error) {
	u, ok := c.entries[id]
	if !ok {
		return nil, ErrCacheMiss
	}
	return u, nil
}

func (c *memoryCache) Set(_ context.Context, u *User) error {
	c.entries[u.ID] = u
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id int64) error {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func TestServiceCreate_HashesAndNormalizes(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fakeHasher{}, nil, logging.Discard())

	in := validInput()
	in.Email = " Alice@Example.com"
	id, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, int64(1), id)
	assert.Equal(t, "hashed:wonderland", store.created.PasswordHash)
	assert.Equal(t, "alice@example.com", store.created.Email)
	assert.Equal(t, "Alice", store.created.Personal.FirstName)
}

func TestServiceCreate_ValidationSkipsStore(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fakeHasher{}, nil, logging.Discard())

	in := validInput()
	in.LastName = ""
	_, err := svc.Create(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "last_name", verr.Field)
	assert.Nil(t, store.created)
	assert.Empty(t, store.users)
}

func TestServiceCreate_PropagatesDuplicate(t *testing.T) {
	store := newFakeStore()
	store.err = ErrDuplicateUsername
	svc := NewService(store, fakeHasher{}, nil, logging.Discard())

	_, err := svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestServiceCreate_HashFailure(t *testing.T) {
	boom := errors.New("entropy exhausted")
	svc := NewService(newFakeStore(), fakeHasher{err: boom}, nil, logging.Discard())

	_, err := svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, boom)
}

func TestServiceGet_UsesCacheAndStripsHash(t *testing.T) {
	store := newFakeStore()
	cache := newMemoryCache()
	svc := NewService(store, fakeHasher{}, cache, logging.Discard())

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	u, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, 1, store.reads)

	_, err = svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads, "second read served from cache")
}

func TestServiceGet_NotFound(t *testing.T) {
	svc := NewService(newFakeStore(), fakeHasher{}, nil, logging.Discard())

	_, err := svc.Get(context.Background(), 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceUpdate_RehashesAndInvalidates(t *testing.T) {
	store := newFakeStore()
	cache := newMemoryCache()
	svc := NewService(store, fakeHasher{}, cache, logging.Discard())

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), id)
	require.NoError(t, err)

	in := validInput()
	in.Password = "new-secret-1"
	in.Address = &Address{City: "Oxford"}
	require.NoError(t, svc.Update(context.Background(), id, in))

	assert.Equal(t, "hashed:new-secret-1", store.updated.PasswordHash)
	assert.Equal(t, id, store.updated.ID)
	assert.Equal(t, []int64{id, id}, cache.invalidated)
	assert.NotContains(t, cache.entries, id)
}

func TestServiceUpdate_Missing(t *testing.T) {
	svc := NewService(newFakeStore(), fakeHasher{}, nil, logging.Discard())

	err := svc.Update(context.Background(), 9, validInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceDelete(t *testing.T) {
	store := newFakeStore()
	cache := newMemoryCache()
	svc := NewService(store, fakeHasher{}, cache, logging.Discard())

	id, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.Equal(t, []int64{id, id}, cache.invalidated)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), ErrNotFound)
}

func TestServiceWrites_DropProfileCachedDuringWrite(t *testing.T) {
	for name, write := range map[string]func(*Service, int64) error{
		"update": func(svc *Service, id int64) error {
			return svc.Update(context.Background(), id, validInput())
		},
		"delete": func(svc *Service, id int64) error {
			return svc.Delete(context.Background(), id)
		},
	} {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore()
			cache := newMemoryCache()
			svc := NewService(store, fakeHasher{}, cache, logging.Discard())

			id, err := svc.Create(context.Background(), validInput())
			require.NoError(t, err)
			stale, err := svc.Get(context.Background(), id)
			require.NoError(t, err)

			// a concurrent reader repopulates the old profile mid-write
			store.onWrite = func() { cache.entries[id] = stale }

			require.NoError(t, write(svc, id))
			assert.NotContains(t, cache.entries, id)
		})
	}
}

func TestServiceFindByIdentifier_Trims(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, fakeHasher{}, nil, logging.Discard())

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	u, err := svc.FindByIdentifier(context.Background(), " alice ")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "hashed:wonderland", u.PasswordHash)

	u, err = svc.FindByIdentifier(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}
