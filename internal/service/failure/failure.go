package failure

// Kind классифицирует причину неуспеха. Ошибки не пересекают границу компонента:
// на границе они превращаются в результат с Kind и текстом сообщения.
type Kind string

const (
	None          Kind = ""
	Configuration Kind = "configuration" // нет ключа, адреса, учётных данных, до любого I/O
	Transport     Kind = "transport"     // DNS, таймаут, обрыв соединения
	Protocol      Kind = "protocol"      // неожиданный HTTP статус или формат ответа
	IO            Kind = "io"            // ошибка записи локального файла
	Input         Kind = "input"         // пустое изображение и т.п.
	Internal      Kind = "internal"      // перехваченная паника
)
