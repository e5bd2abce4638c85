package store

// Store is a minimal keyed store. Concrete implementations pin the value
// type they accept.
type Store interface {
	Put(key string, value interface{}) error

	Get(key string) (interface{}, error)

	List() (interface{}, error)

	Count() (int, error)
}
