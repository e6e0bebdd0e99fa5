package domain

// Envelope is the uniform result of every API call.
// Error carries the human readable message and Err the value callers may
// inspect with errors.Is / errors.As. Both are empty on success.
type Envelope[T any] struct {
	Success bool
	Data    T
	Error   string
	Err     error
}

// Ok wraps data in a successful envelope.
func Ok[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

// Fail wraps err in a failed envelope.
func Fail[T any](err error) Envelope[T] {
	if err == nil {
		err = ErrUnknown
	}

	return Envelope[T]{Err: err, Error: err.Error()}
}

// Unwrap returns the data and the error of the envelope in the usual Go order.
func (e Envelope[T]) Unwrap() (T, error) {
	if !e.Success {
		var zero T

		return zero, e.Err
	}

	return e.Data, nil
}

// MapEnvelope converts the data of a successful envelope with fn.
// A failed envelope keeps its error, a failing fn turns the envelope into a failure.
func MapEnvelope[T, U any](env Envelope[T], fn func(T) (U, error)) Envelope[U] {
	if !env.Success {
		return Envelope[U]{Err: env.Err, Error: env.Error}
	}

	data, err := fn(env.Data)
	if err != nil {
		return Fail[U](err)
	}

	return Ok(data)
}
