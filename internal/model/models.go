package model

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Table{},
		&MenuItem{},
		&Base{},
		&Ingredient{},
		&CustomDish{},
		&CustomDishIngredient{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&TableHistory{},
		&WaiterRequest{},
		&Feedback{},
		&StaffScoreEvent{},
	}
}
