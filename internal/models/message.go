package models

const (
	EventDataUpdate = "dataUpdate"
	EventResync     = "resync"
)

// Message: входящий кадр фида после декодирования.
type Message struct {
	Event  string
	Update Update
}
