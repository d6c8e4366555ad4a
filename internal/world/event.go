package world

// EventType identifies a kernel mutation event triggers can react to.
type EventType string

const (
	// EventCharacterEnters fires after a character moves into an area.
	EventCharacterEnters EventType = "character_enters"
	// EventCharacterSpeech fires after a character speaks aloud in an area.
	EventCharacterSpeech EventType = "character_speech"
	// EventItemPickedUp fires after a character picks up an item.
	EventItemPickedUp EventType = "item_picked_up"
	// EventItemDropped fires after a character drops an item.
	EventItemDropped EventType = "item_dropped"
)

// Event describes a committed kernel mutation. AreaID is the area the event
// fires in; CharacterID, ItemID, and Text are populated per event type.
type Event struct {
	Type        EventType
	WorldID     int64
	AreaID      int64
	CharacterID int64
	ItemID      int64
	Text        string
}
