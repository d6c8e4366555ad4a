package world

// Hand slots every character carries. Other hold locations are free-form
// labels such as pockets.
const (
	HoldRightHand = "right hand"
	HoldLeftHand  = "left hand"
)

// Properties is a free-form key to value map on an item.
type Properties map[string]any

// Item is an object in the world. Exactly one of CurrentAreaID and
// HeldByCharacterID is set; HeldLocation accompanies the holder.
type Item struct {
	ID          int64
	WorldID     int64
	Name        string
	Description string
	Properties  Properties

	CurrentAreaID     *int64
	HeldByCharacterID *int64
	HeldLocation      *string
}

// Held reports whether the item is in a character's possession.
func (i *Item) Held() bool {
	return i.HeldByCharacterID != nil
}

// PlaceInArea moves the item to an area, clearing both hold fields.
func (i *Item) PlaceInArea(areaID int64) {
	i.CurrentAreaID = &areaID
	i.HeldByCharacterID = nil
	i.HeldLocation = nil
}

// GiveTo hands the item to a character at the named hold location, clearing
// the area reference.
func (i *Item) GiveTo(characterID int64, location string) {
	i.CurrentAreaID = nil
	i.HeldByCharacterID = &characterID
	i.HeldLocation = &location
}
