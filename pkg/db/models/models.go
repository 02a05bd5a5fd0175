package models

// All lists every persisted model in dependency order, for AutoMigrate on sqlite.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	}
}
