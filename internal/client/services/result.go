package services

// Result оборачивает значение домена признаком его происхождения.
// Подтвержденное значение пришло от сервера; значение из кеша может
// отставать; оптимистичное значение синтезировано локально для мутации,
// поставленной в очередь, и будет подтверждено при следующей синхронизации.
type Result[T any] struct {
	Value T
	// Optimistic - сервер еще не подтвердил это значение
	Optimistic bool
	// FromCache - значение прочитано из локального кеша, без сервера
	FromCache bool
	// PendingMutationID - ID записи очереди для оптимистичного значения
	PendingMutationID string
}

// Confirmed создает результат, подтвержденный сервером
func Confirmed[T any](value T) *Result[T] {
	return &Result[T]{Value: value}
}

// Cached создает результат, прочитанный из локального кеша
func Cached[T any](value T) *Result[T] {
	return &Result[T]{Value: value, FromCache: true}
}

// Optimistic создает локально синтезированный результат отложенной мутации
func Optimistic[T any](value T, pendingMutationID string) *Result[T] {
	return &Result[T]{Value: value, Optimistic: true, PendingMutationID: pendingMutationID}
}
