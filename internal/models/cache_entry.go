package models

// CachedItemsTable is the physical table backing the persistent cache.
const CachedItemsTable = "cached_items"

// CachedItem is a single persisted cache row. Key is unique; Value is opaque text
// whose encoding is owned by the slot that writes it.
type CachedItem struct {
	Key   string `gorm:"column:key;primaryKey;size:255" json:"key"`
	Value string `gorm:"column:value;type:text" json:"value"`
}

// TableName pins the table name so it matches existing node databases.
func (CachedItem) TableName() string {
	return CachedItemsTable
}
