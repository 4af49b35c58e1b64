//go:build debug

package channel

// New ignores size in debug builds so that slow consumers surface as
// blocked senders.
func New[T any](size int) Channel[T] {
	return NewUnbuffered[T]()
}
