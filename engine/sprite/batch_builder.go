package sprite

// BatchOption is a functional option applied to a SpriteBatch or LineBatch during construction.
type BatchOption func(*batch)

// WithInitialCapacity sets how many items the batch can stage before its buffers first grow.
//
// Parameters:
//   - items: the initial capacity in items, clamped to [1, max batch size]
//
// Returns:
//   - BatchOption: a function that applies the capacity option to a batch
func WithInitialCapacity(items int) BatchOption {
	return func(b *batch) {
		b.initialCapacity = items
	}
}

// WithMaxBatchSize sets how many items are staged before the batch flushes on its own.
//
// Parameters:
//   - items: the item limit per flush, clamped to [1, MaxBatchSize]
//
// Returns:
//   - BatchOption: a function that applies the limit option to a batch
func WithMaxBatchSize(items int) BatchOption {
	return func(b *batch) {
		b.maxItems = items
	}
}

// WithLabel sets the prefix of the debug labels given to the batch buffers.
func WithLabel(label string) BatchOption {
	return func(b *batch) {
		if label != "" {
			b.label = label
		}
	}
}
