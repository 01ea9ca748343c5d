package model

// Item type codes.
const (
	ItemTypeWeapon     = "WEAPON"
	ItemTypeArmor      = "ARMOR"
	ItemTypeAccessory  = "ACCESSORY"
	ItemTypeConsumable = "CONSUMABLE"
)

// ItemTypes lists the valid item type codes.
var ItemTypes = []string{ItemTypeWeapon, ItemTypeArmor, ItemTypeAccessory, ItemTypeConsumable}

// Item is shared reference data; it is not owned by any player.
type Item struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	ItemType    string `gorm:"size:20;not null" json:"item_type"`
	Description string `gorm:"type:text" json:"description"`
	Price       int    `gorm:"default:0" json:"price"`
}
