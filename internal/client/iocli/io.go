package iocli

//go:generate moq -out io_mock.go . IO

// IO абстрагирует терминал техника: вывод, ввод и скрытый ввод пароля.
// Команды CLI пишут только через этот интерфейс, что позволяет проверять
// их вывод в тестах.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}
